package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/DRSN-tech/dropship-sync/internal/cfg"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
)

const maxHeaderBytes = 1 << 20

// Server обслуживает HTTP API запуска этапов и журнала синхронизаций.
type Server struct {
	srv    *http.Server
	logger logger.Logger
}

func NewServer(handler http.Handler, cfg *cfg.HTTPConfig, logger logger.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			MaxHeaderBytes:    maxHeaderBytes,
		},
		logger: logger,
	}
}

// Start слушает порт из конфигурации до вызова Stop.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}

	return s.Serve(lis)
}

// Serve обслуживает открытый listener. После Stop возвращает nil.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Infof("HTTP server listening on %s", lis.Addr())

	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Stop дожидается активных запросов; по истечении ctx закрывает соединения принудительно.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		_ = s.srv.Close()
		s.logger.Warnf("HTTP server forced to stop: %v", err)
		return err
	}

	s.logger.Infof("HTTP server stopped gracefully")
	return nil
}
