package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/browser-search/internal/mcp"
	"github.com/dshills/browser-search/internal/storage"
)

func newServeCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			a.logger.Info().
				Str("version", version).
				Str("build_mode", storage.BuildMode).
				Str("driver", storage.DriverName).
				Msg("MCP server starting")

			server := mcp.NewServer(a.searcher, a.registry, version)

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			errChan := make(chan error, 1)
			go func() {
				errChan <- server.Serve(ctx)
			}()

			select {
			case sig := <-sigChan:
				a.logger.Info().Str("signal", sig.String()).Msg("shutting down")
				cancel()
				return nil
			case err := <-errChan:
				return err
			}
		},
	}
}
