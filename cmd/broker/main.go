// Package main is the entry point for the service broker HTTP server.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-servicebroker/core"
	"github.com/goliatone/go-servicebroker/migrations"
	"github.com/goliatone/go-servicebroker/server"
	sqlstore "github.com/goliatone/go-servicebroker/store/sql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type serverSettings struct {
	Addr     string `json:"addr"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type databaseSettings struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
	Debug  bool   `json:"debug"`
}

type settings struct {
	Server      serverSettings   `json:"server"`
	Database    databaseSettings `json:"database"`
	Broker      core.Config      `json:"broker"`
	CatalogPath string           `json:"catalog_path"`
}

func defaultSettings() settings {
	return settings{
		Server: serverSettings{
			Addr: ":8080",
		},
		Database: databaseSettings{
			Driver: "sqlite3",
			DSN:    "file:broker.db?_foreign_keys=on",
		},
		Broker: core.DefaultConfig(),
	}
}

func (s settings) GetDebug() bool {
	return s.Database.Debug
}

func (s settings) GetDriver() string {
	return s.Database.Driver
}

func (s settings) GetServer() string {
	return s.Database.DSN
}

func (settings) GetPingTimeout() time.Duration {
	return 5 * time.Second
}

func (settings) GetOtelIdentifier() string {
	return "go-servicebroker"
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	var addr string

	cmd := &cobra.Command{
		Use:           "broker",
		Short:         "Run the service broker HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadSettings(configPath)
			if err != nil {
				return err
			}
			if strings.TrimSpace(addr) != "" {
				cfg.Server.Addr = addr
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to JSON settings file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address override")

	return cmd
}

func loadSettings(path string) (settings, error) {
	cfg := defaultSettings()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return settings{}, fmt.Errorf("broker: read settings %q: %w", path, err)
	}
	if err := json.Unmarshal(content, &cfg); err != nil {
		return settings{}, fmt.Errorf("broker: parse settings %q: %w", path, err)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg settings) error {
	_, logger := glog.Resolve("broker:cmd", nil, nil)
	logger = glog.Ensure(logger)

	dialectName, err := migrationDialect(cfg.Database.Driver)
	if err != nil {
		return err
	}

	sqlDB, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("broker: open database: %w", err)
	}
	if cfg.Database.Driver == "sqlite3" {
		sqlDB.SetMaxOpenConns(1)
	}

	client, err := newPersistenceClient(cfg, sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() { _ = client.Close() }()

	_, err = migrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != dialectName {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, migrations.WithValidationTargets(dialectName))
	if err != nil {
		return fmt.Errorf("broker: register migrations: %w", err)
	}
	if err := client.Migrate(ctx); err != nil {
		return fmt.Errorf("broker: migrate: %w", err)
	}

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		return err
	}

	provisioning, err := core.NewProvisioningService(cfg.Broker,
		core.WithRepositoryFactory(factory),
		core.WithPersistenceClient(client),
		core.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	binding, err := core.NewBindingService(cfg.Broker,
		core.WithRepositoryFactory(factory),
		core.WithPersistenceClient(client),
		core.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	serverOpts := []server.Option{server.WithLogger(logger)}
	if strings.TrimSpace(cfg.Server.Username) != "" {
		serverOpts = append(serverOpts, server.WithBasicAuth(server.BasicCredentials{
			Username: cfg.Server.Username,
			Password: cfg.Server.Password,
		}))
	}
	if strings.TrimSpace(cfg.CatalogPath) != "" {
		catalog, readErr := os.ReadFile(cfg.CatalogPath)
		if readErr != nil {
			return fmt.Errorf("broker: read catalog %q: %w", cfg.CatalogPath, readErr)
		}
		serverOpts = append(serverOpts, server.WithCatalogJSON(catalog))
	}

	router := server.NewServer(provisioning, binding, serverOpts...)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("broker listening", "addr", cfg.Server.Addr, "driver", cfg.Database.Driver)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("broker: serve: %w", err)
		}
		return nil
	case <-shutdownCtx.Done():
	}

	logger.Info("broker shutting down")
	drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("broker: shutdown: %w", err)
	}
	return nil
}

func newPersistenceClient(cfg settings, sqlDB *sql.DB) (*persistence.Client, error) {
	switch cfg.Database.Driver {
	case "sqlite3":
		return persistence.New(cfg, sqlDB, sqlitedialect.New())
	case "postgres":
		return persistence.New(cfg, sqlDB, pgdialect.New())
	default:
		return nil, fmt.Errorf("broker: unsupported database driver %q", cfg.Database.Driver)
	}
}

func migrationDialect(driver string) (string, error) {
	switch driver {
	case "sqlite3":
		return migrations.DialectSQLite, nil
	case "postgres":
		return migrations.DialectPostgres, nil
	default:
		return "", fmt.Errorf("broker: unsupported database driver %q", driver)
	}
}
