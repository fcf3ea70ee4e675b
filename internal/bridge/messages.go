package bridge

import "time"

// CommandMessage is the JSON payload accepted on a television's command
// topic. Exactly one field is expected per message; when both are set the
// power command is applied first.
type CommandMessage struct {
	// Power requests a power state change.
	Power *bool `json:"power,omitempty"`

	// Identifier requests an input selection.
	Identifier *int `json:"identifier,omitempty"`
}

// StateMessage is the retained JSON payload published on a television's
// state topic after every state mutation.
type StateMessage struct {
	Power            bool         `json:"power"`
	ActiveIdentifier int          `json:"active_identifier"`
	Inputs           []StateInput `json:"inputs"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// StateInput is one exposed input in a StateMessage. Inputs are always
// configured and visible, fixed kind tuner.
type StateInput struct {
	Identifier int    `json:"identifier"`
	Name       string `json:"name"`
}

// HealthMessage is the periodic payload published on the bridge health
// topic.
type HealthMessage struct {
	Status    string    `json:"status"`
	BridgeID  string    `json:"bridge_id"`
	Version   string    `json:"version"`
	UptimeS   int64     `json:"uptime_s"`
	Devices   int       `json:"devices"`
	Timestamp time.Time `json:"timestamp"`
}
