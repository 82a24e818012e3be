package server

import (
	"github.com/abduss/docstore/internal/auth"
	"github.com/abduss/docstore/internal/config"
	"github.com/abduss/docstore/internal/document"
	"github.com/abduss/docstore/internal/folder"
	"github.com/abduss/docstore/internal/logger"
	"github.com/abduss/docstore/internal/metrics"
	"github.com/abduss/docstore/internal/objectstore"
	"github.com/gin-gonic/gin"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config          config.Config
	Gateway         objectstore.Gateway
	AuthService     *auth.Service
	DocumentService *document.Service
	FolderService   folder.Lifecycle
}

// NewRouter builds a Gin engine with foundational middleware and routes.
// The /v1 API is guarded by service tokens when an AuthService is given.
func NewRouter(deps Dependencies) *gin.Engine {
	metrics.InitMetrics()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware())
	router.Use(metrics.Middleware())

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/v1")
	if deps.AuthService != nil {
		api.Use(auth.AuthMiddleware(deps.AuthService))
	}

	if deps.DocumentService != nil {
		document.RegisterRoutes(api, deps.DocumentService, deps.Config.Server.MaxUploadBytes)
	}
	if deps.FolderService != nil {
		folder.RegisterRoutes(api, deps.FolderService)
	}

	return router
}
