package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Temutjin2k/ambulance-dispatch/config"
	repo "github.com/Temutjin2k/ambulance-dispatch/internal/adapter/postgres"
	"github.com/Temutjin2k/ambulance-dispatch/internal/service/auth"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/configparser"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/postgres"
)

var (
	configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")
	seed       = flag.Bool("seed", true, "Insert the default drivers")
)

// migrateConfig is the slice of config.Config the tool needs; it skips the --mode check.
type migrateConfig struct {
	LogLevel string `env:"LOG_LEVEL" default:"INFO"`
	Database config.DatabaseConfig
}

type defaultDriver struct {
	Name          string
	Username      string
	PlainPass     string
	Phone         string
	VehicleNumber string
}

var defaultDrivers = []defaultDriver{
	{Name: "Mansur Driver", Username: "mans", PlainPass: "password", Phone: "+77010000001", VehicleNumber: "A001KZ"},
	{Name: "Beka Driver", Username: "beka", PlainPass: "password", Phone: "+77010000002", VehicleNumber: "A002KZ"},
}

func main() {
	flag.Parse()

	ctx := context.Background()

	cfg := &migrateConfig{}
	if err := configparser.LoadAndParseYaml(*configPath, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(2)
	}
	log := logger.InitLogger("migrate", cfg.LogLevel)

	client, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Error(ctx, "failed to connect to postgres", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := applySchema(ctx, client.Pool); err != nil {
		log.Error(ctx, "failed to apply schema", err)
		os.Exit(1)
	}
	log.Info(ctx, "schema applied")

	if !*seed {
		return
	}
	n, err := seedDrivers(ctx, client.Pool, defaultDrivers)
	if err != nil {
		log.Error(ctx, "failed to seed drivers", err)
		os.Exit(1)
	}
	log.Info(ctx, "default drivers ensured", "inserted", n, "total", len(defaultDrivers))
}

func applySchema(ctx context.Context, db *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := db.Exec(ctx, repo.Schema); err != nil {
		return fmt.Errorf("exec schema: %w", err)
	}
	return nil
}

func seedDrivers(ctx context.Context, db *pgxpool.Pool, drivers []defaultDriver) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	// no-op after commit
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	const q = `
INSERT INTO drivers (name, username, password_hash, phone_number, vehicle_number)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (username) DO NOTHING;
`

	inserted := 0
	for _, d := range drivers {
		hashed, err := auth.HashPassword(d.PlainPass)
		if err != nil {
			return 0, fmt.Errorf("hash password for %s: %w", d.Username, err)
		}

		tag, err := tx.Exec(ctx, q, d.Name, d.Username, hashed, d.Phone, d.VehicleNumber)
		if err != nil {
			return 0, fmt.Errorf("insert driver %s: %w", d.Username, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}
