package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"immodash/internal/adapters/observability"
	redisad "immodash/internal/adapters/redis"
	"immodash/internal/app"
	"immodash/internal/classify"
	"immodash/internal/shared"
	mysqlrepo "immodash/internal/storage/mysql"
)

var cfg shared.Config

var rootCmd = &cobra.Command{
	Use:   "immoctl",
	Short: "Operate the immodash data store from the command line",
	Long: `immoctl talks to the same MySQL database and Redis cache as the API.

Examples:
  immoctl stats
  immoctl ask "combien de villas à Cocody ?"
  immoctl classify --limit 200
  immoctl geocode warm --workers 4
  immoctl user add --email agent@immodash.ci --role agent
  immoctl group set 120363@g.us "Agents Cocody"`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = shared.Load()
		log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd, askCmd, classifyCmd, geocodeCmd, userCmd, groupCmd)
}

// env bundles the handles a command may need. Close releases them.
type env struct {
	db    *sql.DB
	repo  *mysqlrepo.Repo
	cache *redisad.Cache
}

func open(ctx context.Context) (*env, error) {
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unreachable; running without cache")
	}
	return &env{db: db, repo: mysqlrepo.New(db), cache: cache}, nil
}

func (e *env) Close() {
	_ = e.cache.Close()
	_ = e.db.Close()
}

func (e *env) snapshots() (*app.SnapshotCache, error) {
	rules, err := classify.LoadRules(cfg.RulesFile)
	if err != nil {
		return nil, err
	}
	return app.NewSnapshotCache(e.repo, classify.New(rules),
		app.WithPublicationsLimit(cfg.PublicationsLimit),
		app.WithGroupCache(e.cache.Named("groups")),
	), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
