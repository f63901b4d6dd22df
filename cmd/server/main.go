package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sentiment-analyzer/internal/cache"
	"github.com/iliyamo/sentiment-analyzer/internal/classifier"
	"github.com/iliyamo/sentiment-analyzer/internal/config"
	"github.com/iliyamo/sentiment-analyzer/internal/database"
	"github.com/iliyamo/sentiment-analyzer/internal/handler"
	"github.com/iliyamo/sentiment-analyzer/internal/lock"
	"github.com/iliyamo/sentiment-analyzer/internal/logs"
	"github.com/iliyamo/sentiment-analyzer/internal/middleware"
	"github.com/iliyamo/sentiment-analyzer/internal/queue"
	"github.com/iliyamo/sentiment-analyzer/internal/repository"
	"github.com/iliyamo/sentiment-analyzer/internal/router"
	"github.com/iliyamo/sentiment-analyzer/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()
	logs.Init(logs.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log := logs.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass,
		Host: cfg.DBHost, Port: cfg.DBPort,
		Name:            cfg.DBName,
		MaxConns:        cfg.DBMaxConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.WithError(err).Fatal("mysql connect failed")
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.WithError(err).Fatal("migrations failed")
		}
	}

	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		log.WithError(err).Fatal("redis connect failed")
	}
	defer rdb.Close()

	creds, err := service.NewCredentialService(repository.NewCredentialRepo(db), cfg.BcryptCost)
	if err != nil {
		log.WithError(err).Fatal("invalid BCRYPT_COST")
	}
	tokens := service.NewTokenService(repository.NewTokenRepo(db), cfg.TokenTTL)

	var pub service.ActivityPublisher
	if cfg.RabbitMQURL != "" {
		p := queue.NewPublisher(cfg.RabbitMQURL, cfg.ActivityQueue)
		defer p.Close()
		pub = p
		if cfg.ActivityLog != "" {
			go func() {
				err := queue.StartActivityConsumer(ctx, cfg.RabbitMQURL, cfg.ActivityQueue, cfg.ActivityLog)
				if err != nil && !errors.Is(err, context.Canceled) {
					log.WithError(err).Error("activity consumer stopped")
				}
			}()
		}
	}
	activity := service.NewActivityService(repository.NewActivityRepo(db), pub)

	clf := classifier.NewCommandClassifier(cfg.ClassifierTrainCmd, cfg.ClassifierInferCmd, cfg.ClassifierDir)
	models := service.NewModelService(clf, lock.New(rdb), activity, cfg.TrainingLockKey, cfg.TrainingLockTTL)
	if preds := cache.NewPredictions(config.LoadCacheConfig(), rdb); preds != nil {
		models.UseCache(preds)
	}

	if cfg.TokenSweepInterval > 0 {
		go tokens.RunSweeper(ctx, cfg.TokenSweepInterval, cfg.TokenSweepGrace)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID(), middleware.AccessLog(), middleware.Recoverer())

	auth := handler.NewAuthHandler(creds, tokens, activity)
	router.RegisterRoutes(e, map[string]handler.Pinger{
		"mysql": db.PingContext,
		"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})
	router.RegisterAuth(e, auth, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterProtected(e, tokens, auth, handler.NewModelHandler(models), handler.NewActivityHandler(activity))

	addr := ":" + cfg.Port
	go func() {
		log.WithField("env", cfg.Env).Infof("listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown incomplete")
	}
}
