package app

import (
	"microblog/internal/auth"
	"microblog/internal/cache"
	"microblog/internal/config"
	"microblog/internal/handlers"
	"microblog/internal/repo"
	"microblog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api/v1")

	sessionTTL := cfg.Auth.SessionTTL.Duration()
	sessions := auth.NewStore(rdb, sessionTTL)

	feedCache := cache.NewFeedCache(rdb, cfg.Redis.DefaultTTL.Duration())

	userRepo := repo.NewPGUserRepo(db)
	userSvc := service.NewUserService(userRepo, feedCache)

	postRepo := repo.NewPGMicropostRepo(db)
	postSvc := service.NewMicropostService(postRepo, feedCache)

	authHandler := handlers.NewAuthHandler(sessions, userSvc, int(sessionTTL.Seconds()))
	userHandler := handlers.NewUserHandler(userSvc, cfg.App.PageSize)
	postHandler := handlers.NewMicropostHandler(postSvc, cfg.App.PageSize)

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

	// public profile and feed
	api.GET("/users/:id", userHandler.Show)
	api.GET("/users/:id/microposts", postHandler.ListByUser)

	// guards compose left to right; the first denial short-circuits
	signedIn := api.Group("", auth.RequireUser(sessions))
	signedIn.GET("/users", userHandler.Index)
	signedIn.PATCH("/users/:id", auth.RequireSelf("id"), userHandler.Update)
	signedIn.DELETE("/users/:id", auth.RequireAdmin(userSvc), userHandler.Destroy)
	signedIn.POST("/microposts", postHandler.Create)
	signedIn.DELETE("/microposts/:id", postHandler.Destroy)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Microblog API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}
