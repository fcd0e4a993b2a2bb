package cli

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/vedant281104/AgriShield/internal/inference"
)

func (a *App) serveModelCmd() *cobra.Command {
	var modelURI, addr string

	cmd := &cobra.Command{
		Use:   "serve-model",
		Short: "Expose one model as a gRPC scorer (use it as grpc://addr)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if modelURI == "" {
				return errors.New("--model is required")
			}

			ctx := cmd.Context()
			m, err := a.modelLoader().Load(ctx, modelURI)
			if err != nil {
				return err
			}

			l, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on %s\n", modelURI, l.Addr())
			return serveScorer(ctx, l, m)
		},
	}
	cmd.Flags().StringVar(&modelURI, "model", "", "model URI to serve")
	cmd.Flags().StringVar(&addr, "addr", ":50051", "listen address")
	return cmd
}

// serveScorer blocks until ctx is cancelled or the listener fails.
func serveScorer(ctx context.Context, l net.Listener, m inference.Model) error {
	srv := grpc.NewServer()
	inference.RegisterScorer(srv, m)

	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()

	if err := srv.Serve(l); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
