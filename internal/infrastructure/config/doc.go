// Package config loads and validates the bridge's YAML configuration.
//
// Configuration is read once at startup. Defaults are applied for
// omitted fields (device port, TV source, poll interval, favourites cap)
// before validation, so a minimal config file only needs the MQTT broker
// host, the device PSK, and at least one television.
//
// Fatal problems (missing PSK, empty device list) fail Load. Per-device
// problems (missing name or ip) are left for the reconciler, which skips
// the offending device without aborting the rest of the fleet.
package config
