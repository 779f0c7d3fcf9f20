package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"city-scrapers-det/lib/configutil"
	"city-scrapers-det/lib/feeds"
	"city-scrapers-det/lib/notify"
	"city-scrapers-det/lib/osutil"
	"city-scrapers-det/lib/scraper"
	"city-scrapers-det/pkg/migrations"
	"city-scrapers-det/services/harvest"
	"city-scrapers-det/services/harvest/db"

	// register every scraper with the default registry
	_ "city-scrapers-det/lib/scrapers/degc"
	_ "city-scrapers-det/lib/scrapers/detcity"
	_ "city-scrapers-det/lib/scrapers/redistricting"
	_ "city-scrapers-det/lib/scrapers/retirement"
	_ "city-scrapers-det/lib/scrapers/water"
	_ "city-scrapers-det/lib/scrapers/wayne"

	"github.com/spf13/cobra"
)

type Config struct {
	// Database is the sqlite archive path.
	Database string `json:"database"`
	// Output is the local feed directory, used when azure is not
	// configured.
	Output string            `json:"output"`
	Azure  feeds.AzureConfig `json:"azure"`
	Smtp   notify.SmtpConfig `json:"smtp"`
}

var configFile *string

var rootCmd = &cobra.Command{
	Use:   "city-scrapers",
	Short: "city-scrapers runs the Detroit public meeting scrapers.",
}

func init() {
	configFile = rootCmd.PersistentFlags().String(
		"config", "config.json5", "The config file to read.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config](*configFile)
	if err != nil {
		osutil.Fatal("failed to read config", err)
	}
	if cfg.Database == "" {
		cfg.Database = "city-scrapers.db"
	}
	if cfg.Output == "" {
		cfg.Output = "output"
	}
	return cfg
}

func openStore(cfg Config) feeds.Store {
	if cfg.Azure.Enabled() {
		store, err := feeds.NewAzureStore(cfg.Azure)
		if err != nil {
			osutil.Fatal("failed to initialize azure store", err)
		}
		return store
	}
	return feeds.NewFilesystemStore(cfg.Output)
}

func openDatabase(cfg Config) *sql.DB {
	database, err := migrations.OpenAndMigrateDB(db.Schema, cfg.Database)
	if err != nil {
		osutil.Fatal("failed to open db", err)
	}
	return database
}

func registry() *scraper.Registry {
	return scraper.Default
}

func newService(cfg Config) (harvest.Service, func()) {
	database := openDatabase(cfg)
	service := harvest.NewService(database, openStore(cfg), registry())
	return service, func() { database.Close() }
}
