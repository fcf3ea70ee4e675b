// Bravia Bridge - television bridge for Gray Logic
//
// This is the main entry point for the Bravia bridge. It exposes a fleet
// of IP-controllable televisions to the Gray Logic hub over MQTT: a power
// switch, a tuner input per favourite channel, and periodic health
// reports. A small read-only HTTP API serves status snapshots for
// diagnostics.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/gray-logic-bravia/migrations"

	"github.com/nerrad567/gray-logic-bravia/internal/accessory"
	"github.com/nerrad567/gray-logic-bravia/internal/api"
	"github.com/nerrad567/gray-logic-bravia/internal/bravia"
	"github.com/nerrad567/gray-logic-bravia/internal/bridge"
	"github.com/nerrad567/gray-logic-bravia/internal/favourites"
	"github.com/nerrad567/gray-logic-bravia/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-bravia/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-bravia/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-bravia/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// testability. Returning an error allows main to handle exit codes
// consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Bravia bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open the accessory directory
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	repo := accessory.NewSQLiteRepository(db.DB)

	// Load favourites, seeding a starter file on first run. A favourites
	// file problem is reportable but never fatal: the bridge carries on
	// with an empty list and the televisions keep power control.
	if err := favourites.Ensure(cfg.Bravia.FavouritesPath); err != nil {
		log.Warn("seeding favourites file failed",
			"path", cfg.Bravia.FavouritesPath,
			"error", err,
		)
	}
	favs, err := favourites.Load(cfg.Bravia.FavouritesPath, cfg.Bravia.MaxFavourites)
	if err != nil {
		log.Warn("loading favourites failed, continuing with none",
			"path", cfg.Bravia.FavouritesPath,
			"error", err,
		)
	}
	log.Info("favourites loaded",
		"path", cfg.Bravia.FavouritesPath,
		"count", len(favs),
	)

	// Connect to the MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Align the accessory directory with the configured fleet
	reconciler := bridge.NewReconciler(repo, log)
	accessories, err := reconciler.Reconcile(ctx, cfg.Bravia.Devices, favs)
	if err != nil {
		return fmt.Errorf("reconciling devices: %w", err)
	}
	if len(accessories) == 0 {
		return fmt.Errorf("no usable devices after reconciliation")
	}
	log.Info("fleet reconciled", "devices", len(accessories))

	// Start one controller per television
	controllers := make([]*bridge.Controller, 0, len(accessories))
	for _, acc := range accessories {
		c := bridge.NewController(bridge.ControllerOptions{
			Accessory:    acc,
			Repository:   repo,
			Client:       bravia.NewClient(acc.Address, acc.Port, cfg.Bravia.PSK),
			Bus:          mqttClient,
			QoS:          byte(cfg.MQTT.QoS),
			PollInterval: cfg.Bravia.PollInterval(),
			Logger:       log.With("device", acc.Name),
		})
		if err := c.Start(ctx); err != nil {
			return fmt.Errorf("starting controller for %s: %w", acc.Name, err)
		}
		defer c.Stop()
		controllers = append(controllers, c)
	}

	// One wildcard subscription routes commands to the whole fleet.
	dispatcher := bridge.NewDispatcher(log)
	for _, c := range controllers {
		dispatcher.Register(c)
	}
	if err := dispatcher.Subscribe(mqttClient, byte(cfg.MQTT.QoS)); err != nil {
		return fmt.Errorf("subscribing to command topics: %w", err)
	}

	// Periodic health reports
	health := bridge.NewHealthReporter(bridge.HealthReporterConfig{
		BridgeID:  cfg.MQTT.Broker.ClientID,
		Version:   version,
		Publisher: mqttClient,
		Logger:    log,
	})
	health.SetDeviceCount(len(controllers))
	health.Start()
	defer health.Stop()
	health.PublishNow()

	// Read-only status API
	if cfg.API.Enabled {
		statuses := make([]api.ControllerStatus, 0, len(controllers))
		for _, c := range controllers {
			statuses = append(statuses, c)
		}
		apiServer, err := api.New(api.Deps{
			Config:      cfg.API,
			Logger:      log,
			Controllers: statuses,
			Version:     version,
		})
		if err != nil {
			return fmt.Errorf("creating status API: %w", err)
		}
		if err := apiServer.Start(ctx); err != nil {
			return fmt.Errorf("starting status API: %w", err)
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing status API", "error", closeErr)
			}
		}()
	} else {
		log.Info("status API disabled")
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses BRAVIA_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("BRAVIA_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
