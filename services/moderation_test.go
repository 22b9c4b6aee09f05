package services

import (
	"strings"
	"testing"
)

func TestQuarantineReason(t *testing.T) {
	all := QuarantineCriteria{RequireGenres: true, RequirePoster: true, RequirePlot: true}

	tests := []struct {
		name     string
		criteria QuarantineCriteria
		genres   []string
		poster   string
		plot     string
		wantGate bool
		wantPart string
	}{
		{"complete item passes", all, []string{"Drama"}, "/p.jpg", "a plot", false, ""},
		{"missing genres", all, nil, "/p.jpg", "a plot", true, "genre classification"},
		{"missing poster", all, []string{"Drama"}, "", "a plot", true, "poster artwork"},
		{"missing plot", all, []string{"Drama"}, "/p.jpg", "", true, "synopsis"},
		{"missing everything lists all", all, nil, "", "", true, "genre classification, poster artwork, synopsis"},
		{"disabled criterion ignored", QuarantineCriteria{RequirePoster: true}, nil, "/p.jpg", "", false, ""},
		{"sentinel genre counts as classified", all, []string{SentinelGenre}, "/p.jpg", "a plot", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, gate := QuarantineReason(tt.criteria, tt.genres, tt.poster, tt.plot)
			if gate != tt.wantGate {
				t.Fatalf("gate = %v, want %v (reason %q)", gate, tt.wantGate, reason)
			}
			if gate && !strings.Contains(reason, tt.wantPart) {
				t.Errorf("reason = %q, want it to mention %q", reason, tt.wantPart)
			}
			if !gate && reason != "" {
				t.Errorf("reason = %q, want empty when not gated", reason)
			}
		})
	}
}
