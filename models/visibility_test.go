package models

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

func TestVisibilityZeroValueIsVisible(t *testing.T) {
	var v Visibility
	if v.State() != StateVisible {
		t.Errorf("zero value state = %q, want visible", v.State())
	}
	if _, _, ok := v.Quarantine(); ok {
		t.Error("zero value must not carry quarantine details")
	}
}

func TestVisibilityQuarantineCarriesReason(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v := Quarantined("missing poster artwork", at)

	if !v.IsQuarantined() {
		t.Fatal("expected quarantined state")
	}
	reason, when, ok := v.Quarantine()
	if !ok || reason != "missing poster artwork" || !when.Equal(at) {
		t.Errorf("Quarantine() = (%q, %v, %v)", reason, when, ok)
	}
}

func TestVisibilityJSONRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   Visibility
	}{
		{"visible", Visible()},
		{"quarantined", Quarantined("missing synopsis", at)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			var out Visibility
			if err := json.Unmarshal(data, &out); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if out.State() != tt.in.State() {
				t.Errorf("state = %q, want %q", out.State(), tt.in.State())
			}
			wantReason, _, _ := tt.in.Quarantine()
			gotReason, _, _ := out.Quarantine()
			if gotReason != wantReason {
				t.Errorf("reason = %q, want %q", gotReason, wantReason)
			}
		})
	}
}

func TestVisibilityUnmarshalDropsReasonWhenVisible(t *testing.T) {
	// The variant enforces the invariant even against hand-written input
	var v Visibility
	if err := json.Unmarshal([]byte(`{"state":"visible","reason":"stale"}`), &v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, _, ok := v.Quarantine(); ok {
		t.Error("visible state must not retain a reason")
	}
}
