package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "immodash/internal/adapters/http_server"
	"immodash/internal/adapters/nominatim"
	"immodash/internal/adapters/observability"
	redisad "immodash/internal/adapters/redis"
	"immodash/internal/app"
	"immodash/internal/auth"
	"immodash/internal/classify"
	"immodash/internal/geo"
	"immodash/internal/shared"
	mysqlrepo "immodash/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(reg, cfg.MetricsAddr)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	rules, err := classify.LoadRules(cfg.RulesFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.RulesFile).Msg("classifier rules")
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("token service")
	}

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(context.Background()); err != nil {
		log.Warn().Err(err).Msg("redis unreachable; caches degrade to misses")
	}

	snaps := app.NewSnapshotCache(repo, classify.New(rules),
		app.WithTTL(cfg.SnapshotTTL),
		app.WithPublicationsLimit(cfg.PublicationsLimit),
		app.WithGroupCache(cache.Named("groups")),
	)
	geocoder := nominatim.New(cfg.GeocoderURL, cfg.GeocoderEmail, cfg.GeocoderRPS)
	maps := app.NewMapService(snaps, geo.NewResolver(geocoder, geo.WithCache(cache.Named("geo"))))

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Dashboard: app.NewDashboardService(snaps),
		Chat:      app.NewChatService(snaps, nil),
		Pipeline:  app.NewPipelineService(repo, snaps),
		Map:       maps,
		Auth:      app.NewAuthService(repo, tokens),
		Health:    repo.Ping,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	maps.Close()
	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("db close")
	}
	log.Info().Msg("bye")
}
