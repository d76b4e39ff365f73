package id

import (
	"strings"
	"testing"
)

func TestPrefixedIDs(t *testing.T) {
	msg := NewMessageID().String()
	if !strings.HasPrefix(msg, "msg_") {
		t.Errorf("expected msg_ prefix, got %s", msg)
	}
	if !IsValid(msg) {
		t.Errorf("expected valid ULID suffix in %s", msg)
	}

	if !strings.HasPrefix(NewWidgetID().String(), "wgt_") {
		t.Error("expected wgt_ prefix")
	}
	if !strings.HasPrefix(NewResourceID().String(), "res_") {
		t.Error("expected res_ prefix")
	}
	if !strings.HasPrefix(NewFrameID().String(), "frm_") {
		t.Error("expected frm_ prefix")
	}
}

func TestUniqueness(t *testing.T) {
	seen := make(map[MessageID]bool)
	for i := 0; i < 1000; i++ {
		id := NewMessageID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestIsValidRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "msg_", "msg_notaulid", "plaintext"} {
		if IsValid(raw) {
			t.Errorf("expected %q to be invalid", raw)
		}
	}
}
