package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hmcts/fact-admin/internal/api"
	"github.com/hmcts/fact-admin/internal/config"
	"github.com/hmcts/fact-admin/internal/database"
	"github.com/hmcts/fact-admin/internal/email"
	"github.com/hmcts/fact-admin/internal/lock_store"
	"github.com/hmcts/fact-admin/internal/service"
	"github.com/hmcts/fact-admin/internal/service/court_service"
	"github.com/hmcts/fact-admin/internal/service/lock_service"
	"github.com/hmcts/fact-admin/internal/service/user_service"
	"github.com/hmcts/fact-admin/middleware"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

var (
	apiConfig *api.Api
	sessions  *middleware.Sessions
)

// closers run in reverse order on shutdown
var closers []func()

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
		PadLevelText:  false,
	})
}

func initDatabase(cfg *config.Config) *database.Queries {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	// create a connection pool to the database
	pool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		log.Fatalf("cannot create database pool, %v", err)
	}
	if err = pool.Ping(ctx); err != nil {
		log.Fatalf("cannot reach database, %v", err)
	}
	closers = append(closers, pool.Close)

	log.Info("connected to database")
	// get the query tool with this connection
	return database.New(pool)
}

func initRedis(cfg *config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		log.Fatalf("failed to connect to redis, %v", err)
	}
	closers = append(closers, func() { _ = client.Close() })

	log.WithField("addr", cfg.RedisAddr).Info("connected to redis")
	return client
}

func initMongo(cfg *config.Config) *mongo.Database {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo, %v", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		log.Fatalf("failed to ping mongo, %v", err)
	}
	closers = append(closers, func() { _ = client.Disconnect(context.Background()) })

	log.WithField("database", cfg.MongoDatabase).Info("connected to mongo")
	return client.Database(cfg.MongoDatabase)
}

func initLockStore(cfg *config.Config, db *database.Queries) lock_service.LockStore {
	log.WithField("lock_store", cfg.LockStore).Info("initializing lock store")
	switch cfg.LockStore {
	case config.LockStoreRedis:
		return lock_store.NewRedisStore(initRedis(cfg), cfg.CourtLockRetention)
	case config.LockStoreMongo:
		return lock_store.NewMongoStore(initMongo(cfg))
	case config.LockStoreMemory:
		log.Warn("court locks are kept in memory, they are not shared between instances")
		return lock_store.NewMemoryStore()
	default:
		return lock_store.NewPostgresStore(db)
	}
}

func initEmailService(cfg *config.Config) *email.EmailService {
	if !cfg.Email.Enabled() {
		log.Warn("sender email is not configured, takeover mails are disabled")
		return nil
	}
	es := email.NewEmailService(cfg.Email)
	es.Start(cfg.Email.Workers)
	closers = append(closers, es.Stop)
	return es
}

func initLockService(
	cfg *config.Config,
	store lock_service.LockStore,
	us *user_service.UserService,
	es *email.EmailService,
) *lock_service.LockService {
	log.Info("initializing lock service")
	ls := &lock_service.LockService{
		Store:             store,
		Timeout:           cfg.CourtLockTimeout,
		Clock:             time.Now,
		UserServiceConfig: us,
	}
	if es != nil {
		ls.Notifier = &email.TakeoverNotifier{Email: es, APIURL: cfg.APIURL}
	}
	return ls
}

func initCourtService(
	cfg *config.Config,
	db *database.Queries,
	us *user_service.UserService,
	ls *lock_service.LockService,
) *court_service.CourtService {
	log.Info("initializing court service")
	return &court_service.CourtService{
		DB:                db,
		Cache:             court_service.NewCourtCache(cfg.CourtCacheSize, cfg.CourtCacheTTL),
		LockServiceConfig: ls,
		UserServiceConfig: us,
	}
}

func startLockReaper(cfg *config.Config, ls *lock_service.LockService) {
	if cfg.CourtLockReapInterval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	if !ls.StartLockReaper(ctx, cfg.CourtLockReapInterval) {
		cancel()
		return
	}
	closers = append(closers, cancel)
}

func setup() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	initLogger(cfg)
	cfg.LogConfiguration()

	service.InitializeServices()
	db := initDatabase(cfg)
	us := &user_service.UserService{}
	es := initEmailService(cfg)
	ls := initLockService(cfg, initLockStore(cfg, db), us, es)
	cs := initCourtService(cfg, db, us, ls)
	startLockReaper(cfg, ls)

	apiConfig = &api.Api{
		CourtServiceConfig: cs,
		LockServiceConfig:  ls,
		UserServiceConfig:  us,
		SessionCookieName:  cfg.SessionCookieName,
	}
	sessions = &middleware.Sessions{
		Secret:     []byte(cfg.JWTSecret),
		CookieName: cfg.SessionCookieName,
	}
	log.Info("api config created")
	return cfg
}

func setCors(router *chi.Mux) {
	router.Use(
		cors.Handler(
			cors.Options{
				AllowedOrigins:   []string{"https://*", "http://*"},
				AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"*"},
				AllowCredentials: false,
				ExposedHeaders:   []string{"Link"},
				MaxAge:           300,
			},
		),
	)
	log.Info("cors options has been set")
}

func newRouter(cfg *config.Config) *chi.Mux {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.RequestLogger)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	setCors(router)

	// mount v1 router
	router.Mount("/v1", NewV1Router())
	log.Info("v1 router has been mounted")
	return router
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("server shutdown failed, %v", err)
		_ = srv.Close()
	}
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	log.Info("server stopped gracefully")
}

func main() {
	cfg := setup()

	// find the address to start the server
	apiAddress := cfg.APIURL + ":" + cfg.Port
	srv := &http.Server{
		Handler:           newRouter(cfg),
		Addr:              apiAddress,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.WithField("address", apiAddress).Info("starting server")
		serverErrors <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server cannot be started. Error: %v", err)
		}
	case sig := <-stop:
		log.WithField("signal", sig).Info("shutdown signal received")
		shutdown(srv)
	}
}
