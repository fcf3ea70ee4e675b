package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied by Load when the YAML omits a field.
const (
	// defaultDevicePort is the HTTP control port most televisions listen on.
	defaultDevicePort = 80

	// defaultTVSource is the broadcast source whose content list is used
	// to resolve channel numbers.
	defaultTVSource = "tv:dvbt"

	// defaultPollIntervalMs is the power poll interval in milliseconds.
	defaultPollIntervalMs = 5000

	// defaultMaxFavourites caps the number of favourites loaded from file.
	defaultMaxFavourites = 50

	// defaultAPIPort is the port for the read-only status API.
	defaultAPIPort = 8181

	// defaultMQTTPort is the standard unencrypted MQTT broker port.
	defaultMQTTPort = 1883
)

// Config is the root configuration structure for the Bravia bridge.
// All configuration is loaded from YAML; defaults are applied for
// omitted fields before validation.
type Config struct {
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
	Bravia   BraviaConfig   `yaml:"bravia"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// DatabaseConfig contains settings for the SQLite accessory directory.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// APIConfig contains settings for the read-only status API.
type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	Output string `yaml:"output"` // stdout, stderr
}

// BraviaConfig contains the television fleet settings.
type BraviaConfig struct {
	// PSK is the pre-shared key configured on each television.
	// Sent as the X-Auth-PSK header on every control call.
	PSK string `yaml:"psk"`

	// FavouritesPath is the path to the Name=Number favourites file.
	FavouritesPath string `yaml:"favourites_path"`

	// MaxFavourites caps the number of favourites exposed as inputs.
	MaxFavourites int `yaml:"max_favourites"`

	// PollIntervalMs is the power poll interval in milliseconds.
	PollIntervalMs int `yaml:"poll_interval_ms"`

	// Devices is the configured television fleet.
	Devices []DeviceConfig `yaml:"devices"`
}

// DeviceConfig describes one television.
type DeviceConfig struct {
	Name     string `yaml:"name"`
	IP       string `yaml:"ip"`
	Port     int    `yaml:"port"`
	TVSource string `yaml:"tv_source"`
}

// PollInterval returns the power poll interval as a duration.
func (c BraviaConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// Load reads and parses the configuration file at the given path.
//
// It applies defaults for omitted fields and validates the result.
// Returns an error if the file cannot be read, the YAML is malformed,
// or validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.MQTT.Broker.Port == 0 {
		c.MQTT.Broker.Port = defaultMQTTPort
	}
	if c.MQTT.Broker.ClientID == "" {
		c.MQTT.Broker.ClientID = "bravia-bridge"
	}
	if c.MQTT.Reconnect.InitialDelay == 0 {
		c.MQTT.Reconnect.InitialDelay = 1
	}
	if c.MQTT.Reconnect.MaxDelay == 0 {
		c.MQTT.Reconnect.MaxDelay = 60
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/bravia.db"
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = 5
	}
	if c.API.Host == "" {
		c.API.Host = "127.0.0.1"
	}
	if c.API.Port == 0 {
		c.API.Port = defaultAPIPort
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Bravia.FavouritesPath == "" {
		c.Bravia.FavouritesPath = "data/favourites.txt"
	}
	if c.Bravia.MaxFavourites == 0 {
		c.Bravia.MaxFavourites = defaultMaxFavourites
	}
	if c.Bravia.PollIntervalMs == 0 {
		c.Bravia.PollIntervalMs = defaultPollIntervalMs
	}

	for i := range c.Bravia.Devices {
		if c.Bravia.Devices[i].Port == 0 {
			c.Bravia.Devices[i].Port = defaultDevicePort
		}
		if c.Bravia.Devices[i].TVSource == "" {
			c.Bravia.Devices[i].TVSource = defaultTVSource
		}
	}
}

// Validate checks the configuration for fatal problems.
//
// Per-device name/ip problems are deliberately not checked here: the
// reconciler skips invalid devices with a log message so one bad entry
// does not take down the whole fleet.
func (c *Config) Validate() error {
	if c.MQTT.Broker.Host == "" {
		return fmt.Errorf("mqtt.broker.host: %w", ErrMissingField)
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2: %w", ErrInvalidValue)
	}
	if c.Bravia.PSK == "" {
		return fmt.Errorf("bravia.psk: %w", ErrMissingField)
	}
	if len(c.Bravia.Devices) == 0 {
		return fmt.Errorf("bravia.devices: %w", ErrNoDevices)
	}
	if c.Bravia.MaxFavourites < 0 {
		return fmt.Errorf("bravia.max_favourites must not be negative: %w", ErrInvalidValue)
	}
	if c.Bravia.PollIntervalMs < 0 {
		return fmt.Errorf("bravia.poll_interval_ms must not be negative: %w", ErrInvalidValue)
	}
	return nil
}
