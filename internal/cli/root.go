package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vedant281104/AgriShield/internal/config"
	"github.com/vedant281104/AgriShield/internal/credentials"
	"github.com/vedant281104/AgriShield/internal/ensemble"
	"github.com/vedant281104/AgriShield/internal/inference"
	"github.com/vedant281104/AgriShield/internal/logging"
	"github.com/vedant281104/AgriShield/internal/server"
	"github.com/vedant281104/AgriShield/internal/storage"
)

// App carries the lazily opened dependencies shared by the commands. Only
// commands that need the database or the models pay for opening them.
type App struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	lookup func(string) (string, bool)

	flags   rootFlags
	cfg     *config.Config
	logger  logging.Logger
	syncLog func() error

	db     *storage.DB
	store  *credentials.Store
	loader *inference.Loader
	clf    *ensemble.Classifier
}

type rootFlags struct {
	configFile     string
	databaseDSN    string
	digest         string
	pepper         string
	primaryModel   string
	secondaryModel string
	logLevel       string
}

func NewApp(in io.Reader, out, errOut io.Writer, lookup func(string) (string, bool)) *App {
	return &App{in: in, out: out, errOut: errOut, lookup: lookup}
}

// Execute runs the CLI with the process arguments and environment.
func Execute(ctx context.Context) error {
	app := NewApp(os.Stdin, os.Stdout, os.Stderr, os.LookupEnv)
	root := app.RootCommand()
	root.SetArgs(os.Args[1:])
	return app.run(ctx, root)
}

func (a *App) run(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.Close())
}

func (a *App) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "agrishield",
		Short:         "Crop pest identification with local accounts",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.configFile, "config", "c", "", "config file (JSON or YAML)")
	pf.StringVar(&a.flags.databaseDSN, "db", "", "database DSN (sqlite://path or postgres://...)")
	pf.StringVar(&a.flags.digest, "digest", "", "password digest algorithm (argon2id, sha256)")
	pf.StringVar(&a.flags.pepper, "pepper", "", "password pepper")
	pf.StringVar(&a.flags.primaryModel, "primary-model", "", "primary model URI")
	pf.StringVar(&a.flags.secondaryModel, "secondary-model", "", "secondary model URI")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.classifyCmd(),
		a.labelsCmd(),
		a.serveModelCmd(),
	)
	return root
}

// init resolves configuration: defaults, then the config file, then
// AGRISHIELD_* variables, then the flags given on this command line.
func (a *App) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags.configFile, a.lookup)
	if err != nil {
		return err
	}

	overlay := map[string]*string{
		"db":              &cfg.DatabaseDSN,
		"digest":          &cfg.DigestAlgorithm,
		"pepper":          &cfg.PasswordPepper,
		"primary-model":   &cfg.PrimaryModelURI,
		"secondary-model": &cfg.SecondaryModelURI,
		"log-level":       &cfg.LogLevel,
	}
	for name, dst := range overlay {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	// CLI logs go to stderr next to human output
	if cfg.LogFormat == logging.FormatJSON {
		cfg.LogFormat = logging.FormatText
	}

	logger, syncLog, err := server.NewLogger(cfg, a.errOut)
	if err != nil {
		return err
	}

	a.cfg, a.logger, a.syncLog = cfg, logger, syncLog
	return nil
}

func (a *App) credentialStore(ctx context.Context) (*credentials.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, db, err := server.OpenCredentialStore(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	a.store, a.db = store, db
	return store, nil
}

func (a *App) modelLoader() *inference.Loader {
	if a.loader == nil {
		a.loader = server.NewModelLoader(a.cfg, a.logger)
	}
	return a.loader
}

func (a *App) classifier(ctx context.Context) (*ensemble.Classifier, error) {
	if a.clf != nil {
		return a.clf, nil
	}
	clf, err := server.LoadClassifier(ctx, a.cfg, a.modelLoader(), a.logger)
	if err != nil {
		return nil, err
	}
	a.clf = clf
	return clf, nil
}

// Close releases whatever the commands opened.
func (a *App) Close() error {
	var errs []error
	if a.loader != nil {
		errs = append(errs, a.loader.Close())
		a.loader, a.clf = nil, nil
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
		a.db, a.store = nil, nil
	}
	if a.syncLog != nil {
		_ = a.syncLog()
	}
	return errors.Join(errs...)
}
