// Package wire 提供依赖装配
package wire

import (
	"context"
	"fmt"

	"neuroedge-api/internal/application/chat"
	"neuroedge-api/internal/application/search"
	"neuroedge-api/internal/config"
	"neuroedge-api/internal/infrastructure/docstore"
	"neuroedge-api/internal/infrastructure/llm"
	"neuroedge-api/internal/infrastructure/persistence/postgres"
	"neuroedge-api/internal/infrastructure/persistence/redis"
	"neuroedge-api/internal/interfaces/http/handler"
	"neuroedge-api/internal/interfaces/http/middleware"
	"neuroedge-api/internal/interfaces/http/router"
)

// DataLayer 数据层依赖容器
type DataLayer struct {
	PgClient     *postgres.Client
	TxManager    *postgres.TxManager
	UserRepo     *postgres.UserRepository
	PropertyRepo *postgres.PropertyRepository
	AgentRepo    *postgres.AgentRepository

	RedisClient  *redis.Client
	Cache        *redis.Cache
	RateLimiter  *redis.RateLimiter
	SessionStore *redis.SessionStore

	Registry *docstore.Registry
	DocStore *docstore.Store
}

// InitializeDataLayer 初始化数据层
func InitializeDataLayer(ctx context.Context, cfg *config.Config) (*DataLayer, func(), error) {
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		pgClient.Close()
		return nil, nil, fmt.Errorf("failed to init redis: %w", err)
	}

	dl := &DataLayer{
		PgClient:     pgClient,
		TxManager:    postgres.NewTxManager(pgClient),
		UserRepo:     postgres.NewUserRepository(pgClient),
		PropertyRepo: postgres.NewPropertyRepository(pgClient),
		AgentRepo:    postgres.NewAgentRepository(pgClient),

		RedisClient:  redisClient,
		Cache:        redis.NewCache(redisClient),
		RateLimiter:  redis.NewRateLimiter(redisClient),
		SessionStore: redis.NewSessionStore(redisClient, cfg.Cache.SessionTTL),

		Registry: docstore.NewRegistry(cfg.Storage.RegistryFile),
		DocStore: docstore.NewStore(cfg.Storage.Root),
	}

	cleanup := func() {
		_ = redisClient.Close()
		_ = pgClient.Close()
	}

	return dl, cleanup, nil
}

// Services 应用服务容器
type Services struct {
	Topics    *chat.TopicSet
	Engine    *search.Engine
	Generator *llm.EinoGenerator
	Chat      *chat.Service
}

// InitializeServices 初始化应用服务
func InitializeServices(cfg *config.Config, dl *DataLayer) (*Services, error) {
	topics, err := chat.ResolveTopics(cfg.Chat)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve chat topics: %w", err)
	}

	engine := search.NewEngine(dl.PropertyRepo, cfg.Search.DefaultMaxResults, cfg.Search.MaxResultsCap)

	factory := llm.NewEinoFactory(cfg)
	generator := llm.NewEinoGenerator(factory, &cfg.LLM)

	chatService := chat.NewService(
		topics,
		dl.SessionStore,
		engine,
		generator,
		dl.Registry,
		dl.DocStore,
		cfg.Chat.HistoryWindow,
		cfg.Chat.DocContextChars,
		cfg.Chat.SearchMaxResults,
	)

	return &Services{
		Topics:    topics,
		Engine:    engine,
		Generator: generator,
		Chat:      chatService,
	}, nil
}

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	dl, cleanup, err := InitializeDataLayer(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	services, err := InitializeServices(cfg, dl)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	authCfg := middleware.AuthConfig{
		Secret:  cfg.Security.JWT.Secret,
		Issuer:  cfg.Security.JWT.Issuer,
		Enabled: true,
	}

	handlers := &router.Handlers{
		Health:   handler.NewHealthHandler(dl.PgClient, dl.RedisClient),
		Auth:     handler.NewAuthHandler(authCfg, dl.UserRepo),
		Chat:     handler.NewChatHandler(services.Chat),
		Search:   handler.NewSearchHandler(services.Engine, dl.PropertyRepo, dl.Cache, cfg.Cache),
		Document: handler.NewDocumentHandler(services.Topics, dl.Registry, dl.DocStore, cfg.Storage),
		Property: handler.NewPropertyHandler(dl.PropertyRepo, dl.AgentRepo, dl.Cache),
		Agent:    handler.NewAgentHandler(dl.AgentRepo, dl.PropertyRepo, dl.TxManager),

		TxManager: dl.TxManager,
	}

	rateLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           cfg.Security.RateLimit.Enabled,
		RequestsPerSecond: cfg.Security.RateLimit.RequestsPerSecond,
		Burst:             cfg.Security.RateLimit.Burst,
	}, dl.RateLimiter)

	return router.New(cfg, handlers, rateLimit), cleanup, nil
}
