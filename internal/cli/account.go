package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vedant281104/AgriShield/internal/common"
	"github.com/vedant281104/AgriShield/internal/credentials"
	"github.com/vedant281104/AgriShield/internal/server/auth"
)

var (
	errDuplicate = errors.New("username already taken")
	errRejected  = errors.New("invalid username or password")
)

func (a *App) registerCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]
			if username == "" {
				return errors.New("username must not be empty")
			}

			pw, err := getPassword(cmd, password)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			store, err := a.credentialStore(cmd.Context())
			if err != nil {
				return err
			}

			outcome, err := store.Register(cmd.Context(), username, string(pw))
			if err != nil {
				return err
			}
			if outcome == credentials.RegisterDuplicate {
				return fmt.Errorf("%w: %s", errDuplicate, username)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s\n", username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted or read from stdin when omitted)")
	return cmd
}

func (a *App) loginCmd() *cobra.Command {
	var (
		password  string
		showToken bool
	)

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Check a username and password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]

			pw, err := getPassword(cmd, password)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			store, err := a.credentialStore(cmd.Context())
			if err != nil {
				return err
			}

			outcome, err := store.Verify(cmd.Context(), username, string(pw))
			if err != nil {
				return err
			}
			if outcome != credentials.Authenticated {
				return errRejected
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", username)

			if showToken {
				token, err := auth.GenerateToken(username, []byte(a.cfg.SecretKey), a.cfg.AccessTokenValidityDuration)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "access_token: %s\nexpires_in: %s\n", token, a.cfg.AccessTokenValidityDuration.Round(time.Second))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted or read from stdin when omitted)")
	cmd.Flags().BoolVar(&showToken, "token", false, "print an API access token on success")
	return cmd
}
