package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		env       string
		wantDebug bool
	}{
		{"dev", true},
		{"prod", false},
		{"", false},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		l := NewWithWriter(&buf, tt.env)
		l.Debug("probe")
		if got := buf.Len() > 0; got != tt.wantDebug {
			t.Errorf("env %q: debug emitted = %v, want %v", tt.env, got, tt.wantDebug)
		}
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, "prod").Info("hello", "item_id", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "hello" || rec["item_id"] != float64(3) || rec["service"] != "inventory-changelog" {
		t.Errorf("unexpected record %v", rec)
	}
}
