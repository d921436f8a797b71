// Package router wires every handler into one gin engine.
package router

import (
	"net/http"

	"gosshub/auth"
	"gosshub/internal/activity"
	"gosshub/internal/comment"
	"gosshub/internal/config"
	"gosshub/internal/document"
	"gosshub/internal/logger"
	"gosshub/internal/metrics"
	"gosshub/internal/middleware"
	"gosshub/internal/notify"
	"gosshub/internal/tag"
	"gosshub/internal/user"
	"gosshub/internal/watch"
	"gosshub/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Deps struct {
	Config     config.Config
	DB         *gorm.DB
	Issuer     *auth.Issuer
	Tokens     *redis.TokenStore
	Dispatcher *notify.Dispatcher
}

func New(d Deps) *gin.Engine {
	userService := user.NewService(d.DB, d.Issuer, d.Tokens)
	userHandler := user.NewHandler(userService)
	docHandler := document.NewHandler(document.NewService(d.DB, d.Dispatcher))
	commentHandler := comment.NewHandler(comment.NewService(d.DB, d.Dispatcher))
	watchHandler := watch.NewHandler(watch.NewService(d.DB))
	tagHandler := tag.NewHandler(tag.NewService(d.DB))
	activityHandler := activity.NewHandler(activity.NewService(d.DB))

	authMiddleware := &middleware.Auth{
		Issuer:      d.Issuer,
		UserService: userService,
		Revocations: d.Tokens,
	}
	required := authMiddleware.RequireActor()
	optional := authMiddleware.OptionalActor()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware())
	router.Use(metrics.Middleware())
	router.Use(cors.New(corsConfig(d.Config)))
	router.Use(middleware.ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	// User routes
	router.POST("/users", userHandler.Register)
	router.POST("/login", userHandler.Login)
	router.DELETE("/logout", required, userHandler.Logout)
	router.GET("/user", required, userHandler.GetProfile)
	router.PUT("/user", required, userHandler.UpdateSelf)
	router.DELETE("/user", required, userHandler.Delete)
	router.GET("/users", required, userHandler.SearchUsers)
	router.PUT("/users/:id", required, middleware.RequireAdmin(), userHandler.UpdateByID)

	// Document routes
	router.POST("/documents", required, docHandler.Create)
	router.GET("/documents", optional, docHandler.List)
	router.GET("/documents/:id", optional, docHandler.Show)
	router.PUT("/documents/:id", required, docHandler.AddRevision)
	router.PATCH("/documents/:id", required, docHandler.Update)
	router.GET("/documents/:id/comments", optional, commentHandler.Thread)
	router.POST("/documents/:id/comments", required, commentHandler.Create)
	router.POST("/documents/:id/watch", required, watchHandler.Subscribe)
	router.DELETE("/documents/:id/watch", required, watchHandler.Unsubscribe)

	router.GET("/tags", optional, tagHandler.List)
	router.GET("/tags/:name", optional, tagHandler.Documents)

	router.GET("/activity", required, activityHandler.List)

	return router
}

func corsConfig(cfg config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}

	if !cfg.IsProduction() || len(cfg.CORSOrigins) == 0 {
		// Allow all origins outside production
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSOrigins
	}
	return c
}
