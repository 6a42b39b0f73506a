package app

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"reminders/internal/delivery/http/v1"
	"reminders/internal/logger"
)

func (a *App) newRouter() *gin.Engine {
	if a.Config.Env != logger.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	v1.Register(router, v1.New(
		logger.Component(a.Log, "http"),
		a.Tasks,
		a.Categories,
		a.Backups,
		a.Now,
	))
	return router
}

// serveHTTP runs the API until ctx is cancelled, then shuts the server down
// within the configured timeout.
func (a *App) serveHTTP(ctx context.Context) error {
	httpCfg := a.Config.HTTP
	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: a.newRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			a.Log.Error().Err(err).Msg("failed to listen and serve http")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.Log.Info().Msg("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout.Std())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.Log.Error().Err(err).Msg("failed to shutdown http server")
		return err
	}
	a.Log.Info().Msg("shut down http server")
	return nil
}
