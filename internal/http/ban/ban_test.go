package ban

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestStrikesEscalateToBan(t *testing.T) {
	tr := NewTracker(3, time.Minute, 10*time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	now := time.Now()
	tr.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if banned, _ := tr.Strike("1.2.3.4", "/login"); banned {
			t.Fatalf("banned after %d strikes", i+1)
		}
	}
	banned, retry := tr.Strike("1.2.3.4", "/login")
	if !banned || retry != 10*time.Minute {
		t.Fatalf("expected ban for 10m, got %v %v", banned, retry)
	}
	if b, _ := tr.Banned("1.2.3.4"); !b {
		t.Fatal("expected target to be banned")
	}
	if b, _ := tr.Banned("5.6.7.8"); b {
		t.Fatal("unrelated target should not be banned")
	}

	now = now.Add(11 * time.Minute)
	if b, _ := tr.Banned("1.2.3.4"); b {
		t.Fatal("ban should have expired")
	}

	entries := tr.Drain()
	if len(entries) != 1 || entries[0].Route != "/login" || entries[0].Strikes != 3 {
		t.Fatalf("unexpected ban log %+v", entries)
	}
	if len(tr.Log()) != 0 {
		t.Fatal("drain should clear the log")
	}
}

func TestStrikeWindowResets(t *testing.T) {
	tr := NewTracker(2, time.Minute, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	now := time.Now()
	tr.now = func() time.Time { return now }

	tr.Strike("a", "/login")
	now = now.Add(2 * time.Minute)
	if banned, _ := tr.Strike("a", "/login"); banned {
		t.Fatal("strikes outside the window should not accumulate")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]LogEntry{
		{Target: "a", Route: "/login"},
		{Target: "a", Route: "/register"},
		{Target: "b", Route: "/login"},
	})
	if s.Total != 3 || s.ByRoute["/login"] != 2 || s.ByTarget["a"] != 2 {
		t.Errorf("unexpected summary %+v", s)
	}
}
