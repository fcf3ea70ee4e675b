package mqtt

import (
	"strings"
	"testing"
)

func TestTopics_Builders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"state", topics.State("abc-123"), "graylogic/state/bravia/abc-123"},
		{"command", topics.Command("abc-123"), "graylogic/command/bravia/abc-123"},
		{"command subscribe", topics.CommandSubscribe(), "graylogic/command/bravia/+"},
		{"health", topics.Health(), "graylogic/health/bravia"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestAccessoryIDFromTopic(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"graylogic/command/bravia/abc-123", "abc-123"},
		{"graylogic/state/bravia/x", "x"},
		{"no-slashes", ""},
	}

	for _, tt := range tests {
		if got := AccessoryIDFromTopic(tt.topic); got != tt.want {
			t.Errorf("AccessoryIDFromTopic(%q) = %q, want %q", tt.topic, got, tt.want)
		}
	}
}

func TestBuildStatusPayload(t *testing.T) {
	online := buildStatusPayload("bridge-1", "online", "")
	if !strings.Contains(online, `"status":"online"`) {
		t.Errorf("online payload missing status: %s", online)
	}
	if strings.Contains(online, "reason") {
		t.Errorf("online payload should not carry a reason: %s", online)
	}

	offline := buildStatusPayload("bridge-1", "offline", "graceful_shutdown")
	if !strings.Contains(offline, `"reason":"graceful_shutdown"`) {
		t.Errorf("offline payload missing reason: %s", offline)
	}
	if !strings.Contains(offline, `"client_id":"bridge-1"`) {
		t.Errorf("offline payload missing client id: %s", offline)
	}
}

func TestPublish_Validation(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	if err := c.Publish("", []byte("x"), 1, false); err != ErrInvalidTopic {
		t.Errorf("empty topic: error = %v, want ErrInvalidTopic", err)
	}
	if err := c.Publish("t", []byte("x"), 3, false); err != ErrInvalidQoS {
		t.Errorf("bad qos: error = %v, want ErrInvalidQoS", err)
	}
}

func TestSubscribe_Validation(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	if err := c.Subscribe("", 1, func(string, []byte) error { return nil }); err != ErrInvalidTopic {
		t.Errorf("empty topic: error = %v, want ErrInvalidTopic", err)
	}
	if err := c.Subscribe("t", 3, func(string, []byte) error { return nil }); err != ErrInvalidQoS {
		t.Errorf("bad qos: error = %v, want ErrInvalidQoS", err)
	}
}
