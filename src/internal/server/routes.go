package server

import (
	"polling-svc/src/clients"
	"polling-svc/src/internal/dependency"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func SetupRoutes(deps *dependency.Manager) {
	router := deps.Router
	router.Use(enableCORS(deps.Config.App.HostLink))

	setupHealthEndpoint(deps)
	setupPublicRoutes(router, deps)
	setupPollRoutes(router, deps)
	setupVoteRoutes(router, deps)
	setupAdminRoutes(router, deps)
	setupFrontendRoutes(router, deps)
}

func setupHealthEndpoint(deps *dependency.Manager) {
	router := deps.Router
	mongodb := deps.Mongodb
	redisClient := deps.Redis
	rabbitMQ := deps.RabbitMQ
	cfg := deps.Config

	router.GET("/health", func(c *gin.Context) {
		log.Debug("Health check endpoint requested")

		mongoStatus := "ok"
		if err := mongodb.Client.Ping(c.Request.Context(), nil); err != nil {
			mongoStatus = "error: " + err.Error()
		}

		redisStatus := "ok"
		if err := redisClient.Client.Ping(c.Request.Context()).Err(); err != nil {
			redisStatus = "error: " + err.Error()
		}

		c.JSON(200, gin.H{
			"status":    "ok",
			"service":   cfg.App.Name,
			"version":   cfg.App.Version,
			"mongodb":   mongoStatus,
			"redis":     redisStatus,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	router.GET("/health/detailed", func(c *gin.Context) {
		log.Debug("Detailed health check endpoint requested")

		c.JSON(200, gin.H{
			"status":  "operational",
			"service": cfg.App.Name,
			"version": cfg.App.Version,
			"components": gin.H{
				"database": gin.H{
					"mongodb": getStatus(isMongoConnected(mongodb, c)),
					"redis":   getStatus(isRedisConnected(redisClient.Client, c)),
				},
				"queue": gin.H{
					"rabbitmq": getStatus(isRabbitConnected(rabbitMQ)),
				},
				"live_results": gin.H{
					"hub": "operational",
				},
			},
		})
	})
}

func setupPublicRoutes(router *gin.Engine, deps *dependency.Manager) {
	router.GET("/api/v1/status", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"api_version": "v1",
			"status":      "operational",
			"service":     deps.Config.App.Name,
		})
	})

	auth := deps.AuthMiddleware
	handler := deps.AccountHandler

	account := router.Group("/api/v1/account")
	{
		account.POST("/login", setRouteName("login"), handler.Login)
		account.POST("/logout", setRouteName("logout"), auth.RequireAuth(), handler.Logout)
		account.GET("/me", setRouteName("me"), auth.RequireAuth(), handler.Me)
	}
}

func setupPollRoutes(router *gin.Engine, deps *dependency.Manager) {
	auth := deps.AuthMiddleware
	handler := deps.PollHandler

	polls := router.Group("/api/v1/polls", auth.RequireAuth())
	{
		polls.GET("", setRouteName("listPolls"), handler.ListPolls)
		polls.GET("/:id", setRouteName("getPoll"), handler.GetPoll)
		polls.GET("/:id/options", setRouteName("getPollOptions"), handler.GetPollOptions)
		polls.GET("/:id/results", setRouteName("getPollResult"), handler.GetResult)
		polls.GET("/:id/results/live", setRouteName("livePollResult"), deps.ResultsHandler.Live)

		polls.POST("",
			setRouteName("createPoll"),
			auth.RequireSystemManager(),
			handler.CreatePoll)

		polls.PATCH("/:id/status",
			setRouteName("updatePollStatus"),
			auth.RequireSystemManager(),
			handler.UpdateStatus)
	}

	router.GET("/api/v1/results", setRouteName("listResults"), auth.RequireAuth(), handler.ListResults)
}

func setupVoteRoutes(router *gin.Engine, deps *dependency.Manager) {
	handler := deps.VoteHandler

	votes := router.Group("/api/v1/votes", deps.AuthMiddleware.RequireAuth())
	{
		votes.GET("/new", setRouteName("newVoteForm"), handler.NewForm)
		votes.GET("", setRouteName("listVotes"), handler.ListVotes)
		votes.POST("", setRouteName("createVote"), handler.CreateVote)
		votes.GET("/:id", setRouteName("getVote"), handler.GetVote)
		votes.PATCH("/:id", setRouteName("updateVote"), handler.UpdateVote)
		votes.POST("/:id/submit", setRouteName("submitVote"), handler.SubmitVote)
		votes.POST("/:id/cancel", setRouteName("cancelVote"), handler.CancelVote)
		votes.POST("/:id/amend", setRouteName("amendVote"), handler.AmendVote)
		votes.DELETE("/:id", setRouteName("deleteVote"), handler.DeleteVote)
	}
}

func setupAdminRoutes(router *gin.Engine, deps *dependency.Manager) {
	auth := deps.AuthMiddleware
	handler := deps.UserHandler

	// Apply route name FIRST, then auth middlewares
	admin := router.Group("/api/v1/admin")
	{
		admin.GET("/users",
			setRouteName("getUsersList"),
			auth.RequireAuth(),
			auth.RequireSystemManager(),
			handler.ListUsers)

		admin.GET("/users/stats",
			setRouteName("getUsersStats"),
			auth.RequireAuth(),
			auth.RequireSystemManager(),
			handler.GetStats)

		admin.PATCH("/users/:id/enable",
			setRouteName("enableUser"),
			auth.RequireAuth(),
			auth.RequireSystemManager(),
			handler.EnableUser)

		admin.PATCH("/users/:id/disable",
			setRouteName("disableUser"),
			auth.RequireAuth(),
			auth.RequireSystemManager(),
			handler.DisableUser)
	}
}

func setupFrontendRoutes(router *gin.Engine, deps *dependency.Manager) {
	frontend := deps.NavigationHandler
	frontend.Register(router.Group(deps.Config.Frontend.BasePath))
	router.NoRoute(frontend.NoRoute)
}

func setRouteName(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("route_name", name)
		c.Next()
	}
}

func isMongoConnected(mongodb *clients.MongoDB, c *gin.Context) bool {
	if err := mongodb.Client.Ping(c.Request.Context(), nil); err != nil {
		return false
	}
	return true
}

func isRedisConnected(redisClient *redis.Client, c *gin.Context) bool {
	if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
		return false
	}
	return true
}

func isRabbitConnected(rabbitMQ *clients.RabbitMQ) bool {
	return rabbitMQ.Conn != nil && !rabbitMQ.Conn.IsClosed()
}

func enableCORS(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowedOrigin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func getStatus(b bool) string {
	if b {
		return "connected"
	}
	return "disconnected"
}
