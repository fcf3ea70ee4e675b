// Package mqtt connects the Bravia bridge to the Gray Logic MQTT bus.
//
// It wraps paho.mqtt.golang with connection management, automatic
// re-subscription after reconnects, Last Will and Testament on the bridge
// health topic, and topic builders for the flat bridge scheme
// (graylogic/{category}/bravia/{accessory_id}).
//
// The bridge publishes retained state messages per television and
// subscribes to per-television command topics; the health topic carries
// periodic health reports plus the online/offline availability payloads.
package mqtt
