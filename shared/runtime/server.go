// Package runtime hosts the liveness surface every microservice exposes
// while it runs: /health and /info. Entity operations are not served here.
package runtime

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/demobank/microservices/shared/config"
	"github.com/demobank/microservices/shared/logger"
	"github.com/demobank/microservices/shared/middleware"
)

// HealthCheck reports whether one dependency is usable.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type infoResponse struct {
	Service        string            `json:"service"`
	Message        string            `json:"message"`
	ContactDetails map[string]string `json:"contactDetails"`
	OnCallSupport  []string          `json:"onCallSupport"`
}

// NewRouter builds the gin engine. info may be nil when a service has no
// contact snapshot.
func NewRouter(service string, info *config.ContactInfo, log *zap.Logger, checks ...HealthCheck) *gin.Engine {
	log = logger.OrNop(log)

	router := gin.New()
	router.Use(middleware.Recovery(log), middleware.LoggingMiddleware(log))

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		components := gin.H{}
		for _, check := range checks {
			if err := check.Check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				components[check.Name] = gin.H{"status": "down", "error": err.Error()}
				continue
			}
			components[check.Name] = gin.H{"status": "ok"}
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "down"
		}
		c.JSON(status, gin.H{"status": overall, "components": components})
	})

	router.GET("/info", func(c *gin.Context) {
		resp := infoResponse{Service: service, ContactDetails: map[string]string{}, OnCallSupport: []string{}}
		if info != nil {
			resp.Message = info.Message()
			resp.ContactDetails = info.ContactDetails()
			resp.OnCallSupport = info.OnCallSupport()
		}
		c.JSON(http.StatusOK, resp)
	})

	return router
}

// Serve runs handler on addr until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout.
func Serve(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration, log *zap.Logger) error {
	log = logger.OrNop(log)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
