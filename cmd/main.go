package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/go-social-feed/config"
	"github.com/oksasatya/go-social-feed/internal/container"
	esinfra "github.com/oksasatya/go-social-feed/internal/infrastructure/elasticsearch"
	"github.com/oksasatya/go-social-feed/internal/infrastructure/gcs"
	"github.com/oksasatya/go-social-feed/internal/infrastructure/localfs"
	"github.com/oksasatya/go-social-feed/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-social-feed/internal/infrastructure/postgres"
	"github.com/oksasatya/go-social-feed/internal/infrastructure/redisstore"
	"github.com/oksasatya/go-social-feed/internal/interface/middleware"
	"github.com/oksasatya/go-social-feed/internal/router"
	"github.com/oksasatya/go-social-feed/pkg/helpers"
	"github.com/oksasatya/go-social-feed/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	c := &container.Container{
		Config: cfg,
		Logger: logger,
		Hasher: helpers.NewBcryptHasher(cfg.BcryptCost),
		Tokens: helpers.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
	}

	// Users and posts
	switch cfg.StorageDriver {
	case "memory":
		logger.Warn("using in-memory storage; data is lost on restart")
		c.Users = memory.NewUserRepository()
		c.Posts = memory.NewPostRepository()
	default:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		closers = append(closers, pool.Close)
		if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		c.Users = pginfra.NewUserRepository(pool)
		c.Posts = pginfra.NewPostRepository(pool)
	}

	// Revoked tokens
	switch cfg.RevocationBackend {
	case "memory":
		c.Revoked = memory.NewRevocationRegistry()
	default:
		rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		c.Revoked = redisstore.NewRevocationRegistry(rdb)
	}

	// Post images
	serveUploads := false
	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS client: %v", err)
		}
		closers = append(closers, func() { _ = gcsClient.Close() })
		c.Blobs = gcs.NewBlobStore(gcsClient, cfg.GCSBucket)
	} else {
		c.Blobs = localfs.NewBlobStore(cfg.UploadDir, cfg.PublicBaseURL)
		serveUploads = true
	}

	// Optional user search
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch disabled")
		} else {
			c.Index = esinfra.NewUserIndex(es, cfg.ESUsersIndex)
		}
	}

	// Optional email notifications
	if cfg.MailSendEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; email notifications disabled")
		} else {
			closers = append(closers, pub.Close)
			c.Publisher = pub
		}
	}

	// Gin engine and global middleware
	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxImageBytes * int64(cfg.MaxImagesPerPost)
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowAllOrigins:  len(cfg.CORSOrigins()) == 0,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: len(cfg.CORSOrigins()) > 0,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(logger))
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg, c)
	if serveUploads {
		reg.ServeFiles(localfs.URLPrefix, cfg.UploadDir)
	}
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
		return
	}
	logger.Info("server exited properly")
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
