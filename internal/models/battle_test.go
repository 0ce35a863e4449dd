package models

import "testing"

func TestIsValidBattleTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		{BattleStatusPending, BattleStatusResolved, true},
		{BattleStatusResolved, BattleStatusPending, false},
		{BattleStatusResolved, BattleStatusResolved, false},
		{BattleStatusPending, BattleStatusPending, false},
		{"nonexistent", BattleStatusResolved, false},
		{BattleStatusPending, "nonexistent", false},
	}
	for _, tt := range tests {
		if got := IsValidBattleTransition(tt.from, tt.to); got != tt.expected {
			t.Errorf("IsValidBattleTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.expected)
		}
	}
}
