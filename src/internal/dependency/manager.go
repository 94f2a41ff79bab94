package dependency

import (
	"polling-svc/src/clients"
	"polling-svc/src/internal/account"
	"polling-svc/src/internal/cache"
	"polling-svc/src/internal/config"
	"polling-svc/src/internal/middleware"
	"polling-svc/src/internal/navigation"
	"polling-svc/src/internal/poll"
	"polling-svc/src/internal/results"
	"polling-svc/src/internal/session"
	"polling-svc/src/internal/setup"
	"polling-svc/src/internal/user"
	"polling-svc/src/internal/vote"

	"github.com/gin-gonic/gin"
)

type Manager struct {
	Router            *gin.Engine
	Config            *config.Configuration
	Mongodb           *clients.MongoDB
	Redis             *clients.RedisClient
	RabbitMQ          *clients.RabbitMQ
	CacheService      cache.Service
	AuthMiddleware    *middleware.AuthMiddleware
	AccountService    account.Service
	AccountHandler    account.Handler
	PollService       poll.Service
	PollHandler       poll.Handler
	VoteService       vote.Service
	VoteHandler       vote.Handler
	UserHandler       user.Handler
	NavigationHandler *navigation.Handler
	ResultsHub        *results.Hub
	ResultsHandler    *results.Handler
	VotePublisher     *clients.VotePublisher
	VoteConsumer      *clients.VoteConsumer
	Installer         *setup.Installer
}

func NewDependencyManager(router *gin.Engine,
	mongodb *clients.MongoDB,
	redisClient *clients.RedisClient,
	rabbitMQ *clients.RabbitMQ,
	cfg *config.Configuration) *Manager {
	collections := cfg.Database.Collections

	cacheService := cache.NewCacheService(redisClient.Client, cfg)
	sessionRepo := session.NewSessionRepository(mongodb, collections.Sessions)
	accountRepo := account.NewUserRepository(mongodb, collections.Users)
	authMiddleware := middleware.NewAuthMiddleware(cfg.Security.JwtKey, cfg.Security.TokenCookie, cacheService, sessionRepo,
		account.NewAccessLookup(accountRepo))

	accountService := account.NewAccountService(accountRepo, sessionRepo, cacheService, cfg)
	accountHandler := account.NewHandler(cfg, accountService)

	pollRepo := poll.NewPollRepository(mongodb, collections.Polls)
	pollService := poll.NewPollService(pollRepo, cacheService)
	pollHandler := poll.NewHandler(cfg, pollService)

	votePublisher := clients.NewVotePublisher(cfg, rabbitMQ.Channel)
	voteRepo := vote.NewVoteRepository(mongodb, collections.Votes)
	voteService := vote.NewVoteService(voteRepo, pollService, votePublisher)
	voteHandler := vote.NewHandler(cfg, voteService)

	userRepo := user.NewUserRepository(mongodb, collections.Users)
	userService := user.NewUserService(userRepo, sessionRepo, cacheService)
	userHandler := user.NewHandler(cfg, userService)

	guard := navigation.NewGuard(navigation.NewUserResource(authMiddleware))
	navigationHandler := navigation.NewHandler(cfg, guard)

	resultsHub := results.NewHub()
	broadcaster := results.NewBroadcaster(resultsHub, pollService)
	resultsHandler := results.NewHandler(cfg, broadcaster)
	voteConsumer := clients.NewVoteConsumer(cfg, rabbitMQ.Channel, broadcaster.HandleVoteEvent)

	installer := setup.NewInstaller(mongodb, cfg, accountService, accountRepo, pollRepo, voteRepo)

	return &Manager{
		Router:            router,
		Config:            cfg,
		Mongodb:           mongodb,
		Redis:             redisClient,
		RabbitMQ:          rabbitMQ,
		CacheService:      cacheService,
		AuthMiddleware:    authMiddleware,
		AccountService:    accountService,
		AccountHandler:    accountHandler,
		PollService:       pollService,
		PollHandler:       pollHandler,
		VoteService:       voteService,
		VoteHandler:       voteHandler,
		UserHandler:       userHandler,
		NavigationHandler: navigationHandler,
		ResultsHub:        resultsHub,
		ResultsHandler:    resultsHandler,
		VotePublisher:     votePublisher,
		VoteConsumer:      voteConsumer,
		Installer:         installer,
	}
}
