package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"talentsearch/internal/ai"
	"talentsearch/internal/app"
	"talentsearch/internal/cache"
	"talentsearch/internal/config"
	mysqlClient "talentsearch/internal/platform/mysql"
	rabbitmqClient "talentsearch/internal/platform/rabbitmq"
	redisClient "talentsearch/internal/platform/redis"
	"talentsearch/internal/repository"
	"talentsearch/internal/vectorstore"
	"talentsearch/internal/vectorstore/memory"
	"talentsearch/internal/vectorstore/mysqlstore"
	"talentsearch/internal/vectorstore/qdrant"
	"talentsearch/internal/worker"
	"talentsearch/pkg/log"
)

// App wires the full server process: provider clients, the vector store,
// the async ingestion pipeline and its backing services.
type App struct {
	Config    *config.Config
	Embedder  ai.Embedder
	Generator ai.Generator
	Store     vectorstore.Store
	MySQL     *gorm.DB
	Redis     *redis.Client
	MQConn    *amqp.Connection

	AuthService  *app.AuthService
	IngestSvc    *app.IngestService
	JobStatus    *cache.JobStatusCache
	JobPublisher *rabbitmqClient.IngestJobPublisher
	IngestWorker *worker.IngestWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	log.Init(cfg.Log.Level, cfg.Log.Format)

	embedder, err := ai.NewEmbedder(cfg.Embedding)
	if err != nil {
		return nil, err
	}
	generator, err := ai.NewGenerator(cfg.LLM)
	if err != nil {
		return nil, err
	}

	store, mysqlDB, err := NewStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	authService, err := app.NewAuthService(
		cfg.Auth.OperatorUsername,
		cfg.Auth.OperatorPassword,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
	)
	if err != nil {
		return nil, err
	}

	ingestSvc := app.NewIngestService(embedder, store, cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap, cfg.Embedding.BatchSize)
	jobStatus := cache.NewJobStatusCache(redisCli, time.Duration(cfg.Redis.JobStatusTTLSeconds)*time.Second)
	jobPublisher := rabbitmqClient.NewIngestJobPublisher(mqConn, cfg.RabbitMQ.IngestJobQueue)

	ingestWorker := worker.NewIngestWorker(mqConn, ingestSvc, jobStatus, cfg.RabbitMQ.IngestJobQueue)
	if err := ingestWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start ingest worker failed: %w", err)
	}

	return &App{
		Config:       cfg,
		Embedder:     embedder,
		Generator:    generator,
		Store:        store,
		MySQL:        mysqlDB,
		Redis:        redisCli,
		MQConn:       mqConn,
		AuthService:  authService,
		IngestSvc:    ingestSvc,
		JobStatus:    jobStatus,
		JobPublisher: jobPublisher,
		IngestWorker: ingestWorker,
		StartedAt:    time.Now(),
	}, nil
}

// NewStore builds the configured vector store backend. The gorm handle is
// non-nil only for the mysql backend, so the caller can close it.
func NewStore(ctx context.Context, cfg *config.Config) (vectorstore.Store, *gorm.DB, error) {
	switch cfg.Vector.Type {
	case config.VectorTypeQdrant:
		return qdrant.New(qdrant.Config{
			URL:        cfg.Qdrant.URL,
			APIKey:     cfg.Qdrant.APIKey,
			Collection: cfg.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
		}), nil, nil
	case config.VectorTypeMySQL:
		db, err := mysqlClient.New(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewChunkRepository(db)
		if err := repo.Migrate(); err != nil {
			return nil, nil, err
		}
		return mysqlstore.New(repo), db, nil
	case config.VectorTypeMemory:
		return memory.New(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector store type %q", cfg.Vector.Type)
	}
}

func (a *App) Close() error {
	var closeErr error
	if a.IngestWorker != nil {
		a.IngestWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
