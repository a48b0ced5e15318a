package routes

import (
	"time"

	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/view"
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers mounted by SetupRoutes
type Handlers struct {
	Auth    *handler.AuthHandler
	Account *handler.AccountHandler
	Pages   *handler.PageHandler
}

// SetupViews loads the embedded HTML templates into the router
func SetupViews(router *gin.Engine) error {
	templates, err := view.Templates()
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(templates)
	return nil
}

// SetupMiddlewares configures global middlewares
func SetupMiddlewares(
	router *gin.Engine,
	logger coreport.Logger,
	timeProvider coreport.TimeProvider,
	requestTimeout time.Duration,
) {
	// Apply middlewares in the correct order
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger, timeProvider))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.RequestTimeout(timeProvider, requestTimeout))
}

// SetupRoutes configures all the routes
func SetupRoutes(
	router *gin.Engine,
	handlers Handlers,
	sessions usecase.SessionUseCase,
	cookie middleware.SessionCookie,
	logger coreport.Logger,
) {
	router.GET("/healthz", handlers.Pages.Health)
	router.GET("/privacy", handlers.Pages.Privacy)

	site := router.Group("/")
	site.Use(middleware.LoadSession(sessions, cookie, logger))
	{
		site.GET("/", handlers.Auth.Index)
		site.POST("/register", handlers.Auth.Register)
		site.POST("/login", handlers.Auth.Login)
		site.GET("/logout", handlers.Auth.Logout)

		// Session-gated pages
		protected := site.Group("/")
		protected.Use(middleware.RequireSession())
		{
			protected.GET("/success", handlers.Auth.Success)
			protected.GET("/account", handlers.Account.Show)
			protected.POST("/account", handlers.Account.Update)
		}
	}
}
