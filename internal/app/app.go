package app

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"netdebug/internal/config"
	httpapi "netdebug/internal/microservices/http-api"
	udp "netdebug/internal/microservices/udp-server"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"
)

// Run binds the responder described by cfg and serves until ctx is cancelled.
// A bind failure is returned as *udp.BindError before anything else starts.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger, console io.Writer, colored bool) error {
	opts := []udp.Option{
		udp.WithLogger(logger),
		udp.WithConsole(udp.NewConsole(console, colored)),
	}

	if cfg.MirrorEnabled() {
		// the mirror is optional: the responder runs without it
		mirror, err := udp.NewRedisMirror(cfg.RedisURL, cfg.MirrorChannel, cfg.MirrorRate, cfg.MirrorBurst)
		if err != nil {
			logger.Warn("Trace mirror unavailable, continuing without it",
				"error", errors.Wrap(err, "start trace mirror"))
		} else {
			defer mirror.Close()
			logger.Info("Mirroring trace events", "channel", cfg.MirrorChannel)
			opts = append(opts, udp.WithMirror(mirror))
		}
	}

	server, err := udp.Bind(cfg.BindAddr(), cfg.DestAddr(), opts...)
	if err != nil {
		return err
	}
	defer server.Close()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(ctx)
	})

	if cfg.AdminEnabled() {
		router := httpapi.NewRouter(server, logger)
		addr := ":" + strconv.Itoa(cfg.AdminPort)
		g.Go(func() error {
			// the responder keeps running if the admin endpoint fails
			if err := httpapi.Serve(ctx, addr, router, logger); err != nil {
				logger.Error("Admin endpoint stopped", "error", err)
			}
			return nil
		})
	}

	return g.Wait()
}
