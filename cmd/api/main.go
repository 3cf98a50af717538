package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/bootstrap"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/logger"
)

const drainTimeout = 15 * time.Second

// server is the part of *http.Server that Run drives.
type server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
	Close() error
}

type serverBuilder func() (srv server, addr string, cleanup func(), err error)

// Run serves until ctx is cancelled or the listener fails and returns the
// process exit code. cleanup runs on every path once the server was built.
func Run(ctx context.Context, build serverBuilder, lg zerolog.Logger) int {
	srv, addr, cleanup, err := build()
	if err != nil {
		lg.Error().Err(err).Msg("bootstrap failed")
		return 1
	}
	defer cleanup()

	serveErr := make(chan error, 1)
	go func() {
		lg.Info().Str("addr", addr).Msg("user-service listening")
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		serveErr <- err
	}()

	select {
	case <-ctx.Done():
		lg.Info().Msg("shutdown requested")
	case err := <-serveErr:
		if err != nil {
			lg.Error().Err(err).Msg("listener failed")
			return 1
		}
		// closed without being asked to
		return 0
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	if err := srv.Shutdown(drainCtx); err != nil {
		lg.Warn().Err(err).Msg("drain incomplete; closing connections")
		_ = srv.Close()
	}

	lg.Info().Msg("stopped")
	return 0
}

func buildFromBootstrap() (server, string, func(), error) {
	srv, cleanup, err := bootstrap.NewServer()
	if err != nil {
		return nil, "", nil, err
	}
	return srv, srv.Addr, cleanup, nil
}

func main() {
	logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, buildFromBootstrap, zlog.Logger)
	stop()
	os.Exit(code)
}
