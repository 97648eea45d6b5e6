package nats

import (
	"testing"
)

func TestNew_Unit_URLs(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"invalid scheme", "invalid://url:12345"},
		{"malformed URL", "not-a-url"},
		{"unreachable server", "nats://127.0.0.1:1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.url, nil)
			if err == nil {
				t.Error("Expected error, got none")
				client.Close()
				return
			}
			if client != nil {
				t.Error("Expected nil client on error")
			}
		})
	}
}

func TestClient_Close_Unit_NilSafety(t *testing.T) {
	client := &Client{conn: nil}
	client.Close()
}

func TestSubjects_Unit(t *testing.T) {
	if SubjectCursor == SubjectNow {
		t.Error("Cursor and live subjects must differ")
	}
	if SubjectNow != "ballometer.now" {
		t.Errorf("Expected SubjectNow to be 'ballometer.now', got %s", SubjectNow)
	}
	if SubjectCursor != "ballometer.cursor" {
		t.Errorf("Expected SubjectCursor to be 'ballometer.cursor', got %s", SubjectCursor)
	}
}
