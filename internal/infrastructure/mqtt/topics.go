package mqtt

import "fmt"

// Topic layout for the Bravia bridge on the Gray Logic bus.
//
// The bridge follows the flat bridge scheme used across the stack:
// graylogic/{category}/{protocol}/{address_or_id} with protocol "bravia".
const (
	// TopicPrefix is the base for all Gray Logic topics.
	TopicPrefix = "graylogic"

	// Protocol is this bridge's protocol segment in bridge topics.
	Protocol = "bravia"
)

// Topics provides builders for the bridge's MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
type Topics struct{}

// State returns the retained state topic for one television.
//
// Example: graylogic/state/bravia/5f3a...-uuid
func (Topics) State(accessoryID string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, Protocol, accessoryID)
}

// Command returns the command topic for one television.
//
// Example: graylogic/command/bravia/5f3a...-uuid
func (Topics) Command(accessoryID string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefix, Protocol, accessoryID)
}

// CommandSubscribe returns the wildcard pattern matching all command topics.
//
// Example: graylogic/command/bravia/+
func (Topics) CommandSubscribe() string {
	return fmt.Sprintf("%s/command/%s/+", TopicPrefix, Protocol)
}

// Health returns the bridge health topic (also used for the LWT).
//
// Example: graylogic/health/bravia
func (Topics) Health() string {
	return fmt.Sprintf("%s/health/%s", TopicPrefix, Protocol)
}

// AccessoryIDFromTopic extracts the trailing accessory ID segment from a
// state or command topic. Returns "" if the topic has no such segment.
func AccessoryIDFromTopic(topic string) string {
	// graylogic/command/bravia/<id> -> <id>
	for i := len(topic) - 1; i >= 0; i-- {
		if topic[i] == '/' {
			return topic[i+1:]
		}
	}
	return ""
}
