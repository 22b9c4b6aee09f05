package services

import "testing"

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"FilmFan", "filmfan"},
		{"@FilmFan", "filmfan"},
		{"  @FilmFan  ", "filmfan"},
		{"already.lower", "already.lower"},
		{"@", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeUsername(tt.input); got != tt.want {
			t.Errorf("NormalizeUsername(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
