package worker

import (
	"encoding/json"
	"testing"
)

func TestHealthTracker(t *testing.T) {
	h := NewHealthTracker()

	if !h.IsHealthy() {
		t.Error("empty tracker should be healthy")
	}

	h.MarkHealthy("a")
	h.MarkHealthy("b")
	if !h.IsHealthy() {
		t.Error("expected healthy")
	}

	h.MarkFailed("b")
	if h.IsHealthy() {
		t.Error("expected unhealthy after failure")
	}

	// Упавшая задача не становится stopped
	h.MarkStopped("b")
	if th, _ := h.Get("b"); th.Status != TaskStatusFailed {
		t.Errorf("expected failed, got %q", th.Status)
	}

	h.MarkStopped("a")
	if th, _ := h.Get("a"); th.Status != TaskStatusStopped {
		t.Errorf("expected stopped, got %q", th.Status)
	}
}

func TestHealthTracker_Snapshot(t *testing.T) {
	h := NewHealthTracker()
	h.MarkHealthy("ok")
	h.MarkFailed("bad")

	snap := h.Snapshot()
	if snap.Status != TaskStatusFailed {
		t.Errorf("expected overall failed, got %q", snap.Status)
	}
	if len(snap.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(snap.Tasks))
	}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["status"] != "failed" {
		t.Errorf("expected status field 'failed', got %v", decoded["status"])
	}
	if _, ok := decoded["tasks"].(map[string]any)["bad"]; !ok {
		t.Error("expected task 'bad' in snapshot")
	}
}
