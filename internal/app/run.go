package app

import (
	"context"
	"errors"
	"net"
	"net/http"

	httpx "github.com/dropDatabas3/habo/internal/http"
	"github.com/dropDatabas3/habo/internal/observability/logger"
)

// Serve atiende en ln hasta que ctx se cancele y después apaga el server
// dando ShutdownGrace a los requests en curso.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	log := logger.From(ctx).With(logger.Component("server"))
	srv := httpx.NewServer(ln.Addr().String(), a.Handler)
	srv.BaseContext = func(net.Listener) context.Context { return context.WithoutCancel(ctx) }

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", logger.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", logger.Duration(httpx.ShutdownGrace))
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), httpx.ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		_ = srv.Close()
		return err
	}
	return nil
}

// ListenAndServe abre addr y delega en Serve.
func (a *App) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln)
}
