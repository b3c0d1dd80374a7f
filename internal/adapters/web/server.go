// Package web serves the sentence assistant pages and JSON API over HTTP and,
// when certificates are present, HTTPS.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mikey/sentence-assistant/internal/config"
	"github.com/mikey/sentence-assistant/internal/core"
	"github.com/mikey/sentence-assistant/internal/sharelink"
	"github.com/mikey/sentence-assistant/internal/utils"
	"go.uber.org/zap"
)

const defaultShutdownTimeout = 15 * time.Second

// Server is a thin wrapper over chi and one or two stdlib http.Servers
type Server struct {
	assistant     core.Assistant
	shares        *sharelink.Cache
	repairer      *utils.Repairer
	textProcessor *utils.TextProcessor
	server        config.ServerConfig
	tls           config.TLSConfig
	share         config.ShareConfig
	logger        *zap.Logger
	mux           *chi.Mux

	mu        sync.Mutex
	httpSrv   *http.Server
	httpsSrv  *http.Server
	httpAddr  string
	httpsAddr string
	wg        sync.WaitGroup
}

// NewServer creates the web front end and mounts its routes
func NewServer(
	assistant core.Assistant,
	shares *sharelink.Cache,
	repairer *utils.Repairer,
	textProcessor *utils.TextProcessor,
	serverCfg config.ServerConfig,
	tlsCfg config.TLSConfig,
	shareCfg config.ShareConfig,
	logger *zap.Logger,
) *Server {
	s := &Server{
		assistant:     assistant,
		shares:        shares,
		repairer:      repairer,
		textProcessor: textProcessor,
		server:        serverCfg,
		tls:           tlsCfg,
		share:         shareCfg,
		logger:        logger.Named("web"),
	}
	s.mux = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(s.logger, s.server.SlowRequest))
	r.Use(recoverJSON(s.logger))

	r.Get("/", s.handleIndex)
	r.Get("/history", s.handleHistoryPage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/history", s.handleGetHistory)
		r.Get("/history/check", s.handleCheckHistory)
		r.Post("/history/delete_word", s.handleDeleteWord)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/submit_quiz", s.handleSubmitQuiz)
	})

	r.Route("/open/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.server.AllowedOrigins,
			AllowedMethods: []string{http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
		r.Post("/analyz", s.handleOpenAnalyze)
		r.Post("/share", s.handleShare)
	})

	return r
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start binds the HTTP listener and, when enabled and certificates exist,
// the HTTPS listener. Serving happens in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	srv, addr, err := s.serve(s.server.ListenAddress, "", "")
	if err != nil {
		return err
	}
	s.httpSrv, s.httpAddr = srv, addr
	s.logger.Info("HTTP server started", zap.String("address", addr))

	if !s.tls.Enabled {
		s.logger.Info("HTTPS disabled")
		return nil
	}
	if !fileExists(s.tls.CertFile) || !fileExists(s.tls.KeyFile) {
		s.logger.Warn("SSL certificates not found, skipping HTTPS server",
			zap.String("cert_file", s.tls.CertFile),
			zap.String("key_file", s.tls.KeyFile))
		return nil
	}

	srv, addr, err = s.serve(s.tls.ListenAddress, s.tls.CertFile, s.tls.KeyFile)
	if err != nil {
		return err
	}
	s.httpsSrv, s.httpsAddr = srv, addr
	s.logger.Info("HTTPS server started", zap.String("address", addr))
	return nil
}

// serve listens on addr and serves in a goroutine; TLS when certFile is set
func (s *Server) serve(addr, certFile, keyFile string) (*http.Server, string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: s.server.ReadHeaderTimeout,
		ErrorLog:          zap.NewStdLog(s.logger),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		var err error
		if certFile != "" {
			err = srv.ServeTLS(ln, certFile, keyFile)
		} else {
			err = srv.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", zap.String("address", ln.Addr().String()), zap.Error(err))
		}
	}()

	return srv, ln.Addr().String(), nil
}

// Stop gracefully shuts down every running listener
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	timeout := s.server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for _, srv := range []*http.Server{s.httpSrv, s.httpsSrv} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.wg.Wait()
	s.httpSrv, s.httpsSrv = nil, nil
	return errors.Join(errs...)
}

// Addr returns the bound HTTP address once started
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.httpAddr
}

// TLSAddr returns the bound HTTPS address, empty when HTTPS is not serving
func (s *Server) TLSAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.httpsAddr
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
