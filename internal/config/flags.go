package config

import (
	"flag"
	"io"
	"time"

	"github.com/vedant281104/AgriShield/internal/flagx"
)

var flagNames = []string{"-a", "-d", "-s", "-t", "-w", "-k", "-m", "-n", "-u", "-p", "-g", "-e", "-l"}

// parseFlags overlays short command-line flags.
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-d string   database DSN (sqlite://path or postgres://...)
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-w string   password digest algorithm (argon2id, sha256)
//	-k string   password pepper
//	-m string   primary model URI
//	-n string   secondary model URI
//	-u string   S3 access key
//	-p string   S3 secret key
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-l string   log level
//
// Arguments not in this list are dropped by flagx.FilterArgs so that the
// cobra CLI and the server can share one command line.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	fs.StringVar(&config.DigestAlgorithm, "w", config.DigestAlgorithm, "password digest algorithm")
	fs.StringVar(&config.PasswordPepper, "k", config.PasswordPepper, "password pepper")
	fs.StringVar(&config.PrimaryModelURI, "m", config.PrimaryModelURI, "primary model URI")
	fs.StringVar(&config.SecondaryModelURI, "n", config.SecondaryModelURI, "secondary model URI")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, flagNames)); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenValidityDuration = time.Duration(*tokenMinutes) * time.Minute
		}
	})
	return nil
}
