package server

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"vidai-studio/app/config"
	"vidai-studio/app/gemini"
	"vidai-studio/app/handler"
	"vidai-studio/app/logger"
	"vidai-studio/app/media"
	"vidai-studio/app/service"
	"vidai-studio/app/storage"

	"github.com/gin-gonic/gin"
)

// Server is the HTTP server and the composition root: it owns the job
// registry, the stores and the background services.
type Server struct {
	Config *config.Config
	Logger *logger.Logger

	gin     *gin.Engine
	http    *http.Server
	janitor *service.Janitor
}

// New builds a fully wired server.
func New(cfg *config.Config, log *logger.Logger) (*Server, error) {
	if err := os.MkdirAll(cfg.Media.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	store, err := storage.New(cfg.Storage.DataDir, cfg.Storage.MaxHistoryItems, log)
	if err != nil {
		return nil, err
	}

	registry := service.NewRegistry(service.DefaultJobTTL)
	fetcher := media.NewFetcher(cfg.Media.YtdlpPath)
	ai := gemini.NewClient(cfg.AI.BaseURL)

	generateSvc := service.NewGenerateService(registry, store, fetcher, ai, log, cfg.Media.TempDir, cfg.Media.MaxAudioSizeMB)
	downloadSvc := service.NewDownloadService(registry, fetcher, log, cfg.Media.TempDir)

	janitor, err := service.NewJanitor(cfg.Media.TempDir, cfg.Media.FileTTLHours, cfg.Media.CleanupSchedule, log)
	if err != nil {
		return nil, fmt.Errorf("schedule janitor: %w", err)
	}

	router := gin.Default()

	s := &Server{
		Config: cfg,
		Logger: log,
		gin:    router,
		http: &http.Server{
			Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
			Handler: router,
		},
		janitor: janitor,
	}

	s.setupRoutes(store, registry, generateSvc, downloadSvc)
	return s, nil
}

// Start runs the background services and the HTTP listener.
func (s *Server) Start() error {
	s.Logger.Infof("starting server on %s", s.http.Addr)
	s.janitor.Start()
	return s.http.ListenAndServe()
}

// Shutdown stops the background services and drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.janitor.Stop()
	return s.http.Shutdown(ctx)
}

// setupRoutes registers the API surface consumed by the browser client.
func (s *Server) setupRoutes(store *storage.Store, registry *service.Registry, generateSvc *service.GenerateService, downloadSvc *service.DownloadService) {
	settingsHandler := handler.NewSettingsHandler(store)
	modelsHandler := handler.NewModelsHandler()
	generateHandler := handler.NewGenerateHandler(generateSvc, registry, store, s.Logger)
	downloadHandler := handler.NewDownloadHandler(downloadSvc, registry, s.Logger)
	historyHandler := handler.NewHistoryHandler(store)

	s.gin.GET("/", func(c *gin.Context) {
		c.File("web/index.html")
	})

	api := s.gin.Group("/api")
	{
		api.GET("/config", settingsHandler.Get)
		api.POST("/config", settingsHandler.Update)

		api.GET("/models", modelsHandler.List)

		api.POST("/generate", generateHandler.Generate)
		api.GET("/status/:job_id", generateHandler.Status)

		api.POST("/download", downloadHandler.Start)
		api.GET("/download/file/:job_id", downloadHandler.ServeFile)

		api.GET("/history", historyHandler.List)
		api.DELETE("/history", historyHandler.Clear)
		api.DELETE("/history/:id", historyHandler.Delete)
	}
}
