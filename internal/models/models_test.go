package models

import "testing"

func TestScoringRequestWithDefaults(t *testing.T) {
	t.Parallel()
	five := 5
	tests := []struct {
		name    string
		in      ScoringRequest
		energy  Energy
		minutes int
		context string
		mood    string
	}{
		{"all defaults", ScoringRequest{Mood: " Anxious "}, EnergyMed, 10, ContextAny, "anxious"},
		{"explicit values kept", ScoringRequest{Mood: "sad", Energy: EnergyLow, TimeMin: &five, Context: "home"}, EnergyLow, 5, "home", "sad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.in.WithDefaults()
			if got.Mood != tt.mood || got.Energy != tt.energy || got.Minutes() != tt.minutes || got.Context != tt.context {
				t.Errorf("WithDefaults() = %+v (minutes %d)", got, got.Minutes())
			}
		})
	}
}

func TestParseRisk(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in     string
		want   Risk
		wantOK bool
	}{
		{"none", RiskNone, true},
		{"CRISIS", RiskCrisis, true},
		{"Elevated", RiskElevated, true},
		{" none", "", false},
		{"low", RiskLow, true},
		{"bogus", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseRisk(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseRisk(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNewPagination(t *testing.T) {
	t.Parallel()
	tests := []struct {
		page, limit, total, pages int
	}{
		{1, 10, 0, 0},
		{1, 10, 10, 1},
		{2, 10, 11, 2},
		{1, 0, 5, 0},
	}
	for _, tt := range tests {
		got := NewPagination(tt.page, tt.limit, tt.total)
		if got.Pages != tt.pages {
			t.Errorf("NewPagination(%d, %d, %d).Pages = %d, want %d", tt.page, tt.limit, tt.total, got.Pages, tt.pages)
		}
	}
}
