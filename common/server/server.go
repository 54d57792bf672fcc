package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bergaker/mediahost/common/config"
	"github.com/bergaker/mediahost/common/logger"
)

// Server wraps the HTTP listener (and an optional HTTPS listener) with
// graceful shutdown. Uploads hold the response open while ffmpeg runs,
// so the write timeout is deliberately generous.
type Server struct {
	httpServer  *http.Server
	httpsServer *http.Server
	tls         config.TLSConfig
	log         *logger.Logger
	name        string
}

// New creates a new server
func New(name string, port int, tls config.TLSConfig, handler http.Handler, log *logger.Logger) *Server {
	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      handler,
			ReadTimeout:  5 * time.Minute,
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		tls:  tls,
		log:  log,
		name: name,
	}

	if tls.Enabled {
		s.httpsServer = &http.Server{
			Addr:         fmt.Sprintf(":%d", tls.Port),
			Handler:      handler,
			ReadTimeout:  5 * time.Minute,
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		}
	}

	return s
}

// Start starts the server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for errors
	serverErrors := make(chan error, 2)

	// Start HTTP server
	go func() {
		s.log.Info(fmt.Sprintf("%s starting", s.name), "addr", s.httpServer.Addr)
		serverErrors <- s.httpServer.ListenAndServe()
	}()

	// Start HTTPS server when configured
	if s.httpsServer != nil {
		go func() {
			s.log.Info(fmt.Sprintf("%s starting (tls)", s.name), "addr", s.httpsServer.Addr)
			serverErrors <- s.httpsServer.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}()
	}

	// Channel to listen for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until error or shutdown signal
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		s.log.Info("shutdown signal received", "signal", sig.String())

		// Give outstanding requests time to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		for _, srv := range []*http.Server{s.httpServer, s.httpsServer} {
			if srv == nil {
				continue
			}
			if err := srv.Shutdown(ctx); err != nil {
				s.log.Error("graceful shutdown failed", "error", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("could not stop server: %w", err)
				}
			}
		}

		s.log.Info("shutdown complete")
	}

	return nil
}
