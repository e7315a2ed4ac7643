package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dridi71/sarah/pkg/server"
	"github.com/dridi71/sarah/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var cfg config

	flags := serveFlags(&cfg)
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the inference gateway",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.applyConfigFile(); err != nil {
				return err
			}
			ctx = cfg.setupLogging(ctx)

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			gateway := server.New(gemini)
			httpServer := &http.Server{
				Addr:              cfg.addr,
				Handler:           gateway.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					logging.Default().Warn("failed to shut down gateway", "error", err)
				}
			}()

			logging.From(ctx).Info("starting inference gateway", "addr", cfg.addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return goerr.Wrap(err, "gateway server failed")
			}
			return nil
		},
	}
}
