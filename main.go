package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tryluxor/server/internal/agent/graph"
	"github.com/tryluxor/server/internal/agent/graph/nodes"
	"github.com/tryluxor/server/internal/agent/model"
	"github.com/tryluxor/server/internal/agent/repo"
	"github.com/tryluxor/server/internal/catalog"
	"github.com/tryluxor/server/internal/config"
	apphttp "github.com/tryluxor/server/internal/http"
	logx "github.com/tryluxor/server/pkg/logger"
	"github.com/tryluxor/server/pkg/mongodb"
	"github.com/tryluxor/server/pkg/validator"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logx.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logx.Init(logx.LoggerOpts{Environment: cfg.Environment, Level: cfg.LogLevel})
	logx.Info().Str("environment", string(cfg.Environment)).Msg("starting server")

	mongoClient := mongodb.New(cfg.Mongo)
	if err := mongoClient.Connect(ctx); err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logx.Warn().Err(err).Msg("disconnect mongodb")
		}
	}()

	genaiClient, err := cfg.Gemini.New(ctx)
	if err != nil {
		return fmt.Errorf("create gemini client: %w", err)
	}

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("create validator: %w", err)
	}

	productColl, err := mongoClient.Collection(ctx, cfg.Catalog.Collection)
	if err != nil {
		return fmt.Errorf("products collection: %w", err)
	}
	embedder := catalog.NewGeminiEmbedder(genaiClient, cfg.Embedding.Model, cfg.Embedding.Dimensions)
	productRepo := catalog.NewMongoRepository(productColl, cfg.Catalog.VectorIndex)
	ensureProductIndexes(ctx, productRepo, cfg.Catalog.Collection)
	productSvc := catalog.NewService(productRepo, embedder, v, catalog.ServiceConfig{Dimensions: cfg.Embedding.Dimensions})
	lookup := catalog.NewLookup(productRepo, embedder)

	store, closeStore, err := newThreadStore(ctx, cfg, mongoClient)
	if err != nil {
		return fmt.Errorf("create thread store: %w", err)
	}
	defer closeStore()

	chatModel, err := nodes.NewChatModel(ctx, genaiClient, cfg.Agent)
	if err != nil {
		return fmt.Errorf("create chat model: %w", err)
	}

	runner, err := graph.BuildAgentGraph(ctx, graph.Config{
		ChatModel: chatModel,
		ModelName: cfg.Agent.Model,
		Finder:    lookup,
		Store:     store,
		Agent:     cfg.Agent,
		Prompt:    cfg.Prompt,
	})
	if err != nil {
		return fmt.Errorf("build agent graph: %w", err)
	}

	svc := apphttp.New(cfg.HTTP, v, runner, productSvc)
	cleanup, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("run http service: %w", err)
	}

	<-ctx.Done()
	logx.Info().Msg("shutting down")

	if err := cleanup(context.Background()); err != nil {
		return fmt.Errorf("shutdown http service: %w", err)
	}
	return nil
}

// newThreadStore picks the checkpoint backend. The returned func releases
// resources owned by the store.
func newThreadStore(ctx context.Context, cfg config.AppConfig, mongoClient *mongodb.Client) (model.ThreadStore, func(), error) {
	noop := func() {}

	switch strings.ToLower(cfg.Checkpoint.Backend) {
	case model.CheckpointMemory:
		logx.Warn().Msg("using in-memory checkpoints, threads are lost on restart")
		return repo.NewMemoryThreadStore(), noop, nil

	case model.CheckpointRedis:
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			return nil, noop, fmt.Errorf("connect redis: %w", err)
		}
		logx.Info().Msg("connected to redis")
		return repo.NewRedisThreadStore(rdb, cfg.Checkpoint.TTL), closeRedis(rdb), nil

	default:
		coll, err := mongoClient.Collection(ctx, cfg.Checkpoint.Collection)
		if err != nil {
			return nil, noop, fmt.Errorf("checkpoints collection: %w", err)
		}
		store := repo.NewMongoThreadStore(coll)

		idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := store.EnsureIndexes(idxCtx); err != nil {
			logx.Warn().Err(err).Str("collection", cfg.Checkpoint.Collection).Msg("ensure checkpoint indexes")
		}
		return store, noop, nil
	}
}

// ensureProductIndexes creates the unique id index so duplicate ids are
// rejected before the catalog is ever seeded.
func ensureProductIndexes(ctx context.Context, productRepo *catalog.MongoRepository, collection string) {
	idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := productRepo.EnsureIndexes(idxCtx); err != nil {
		logx.Warn().Err(err).Str("collection", collection).Msg("ensure product indexes")
	}
}

func closeRedis(rdb *redis.Client) func() {
	return func() {
		if err := rdb.Close(); err != nil {
			logx.Warn().Err(err).Msg("close redis")
		}
	}
}
