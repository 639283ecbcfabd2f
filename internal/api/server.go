package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/captions"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/profile"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/project"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/store"
)

// CaptionService resolves existing caption artifacts for a project video.
// Satisfied by *captions.Service.
type CaptionService interface {
	Lookup(projectName, videoRel string) (*project.CaptionPaths, error)
}

// SRTFetcher retrieves subtitle text over HTTP. Satisfied by
// *mediasync.Client.
type SRTFetcher interface {
	FetchSRT(srtURL string) (string, error)
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	Port         int
	ProjectsRoot string
	PublicDir    string
	CORSOrigins  []string
	SRTMapMode   string
	Captions     CaptionService
	Fetcher      SRTFetcher
	Repository   store.Repository
	Runner       *captions.Runner
	Profiles     *profile.Registry
	Logger       *slog.Logger
	StartTime    time.Time
}

func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
