package event

import "testing"

func TestMatch(t *testing.T) {
	cases := []struct {
		pattern, name string
		want          bool
	}{
		{"enemy.destroyed", "enemy.destroyed", true},
		{"enemy.destroyed", "enemy.spawned", false},
		{"*", "anything.at.all", true},
		{"enemy.*", "enemy.destroyed", true},
		{"enemy.*", "enemy.boss.spawned", true},
		{"enemy.*", "enemy.", true},
		{"enemy.*", "enemy", false},
		{"*.destroyed", "enemy.destroyed", true},
		{"*.destroyed", "enemy.spawned", false},
		{"boss.*.start", "boss.phase.start", true},
		{"boss.*.start", "boss.start", false},
		{"*boss*", "level.boss.spawned", true},
		{"a*b*c", "abc", true},
		{"a*b*c", "acb", false},
		{"Enemy.*", "enemy.destroyed", false},
	}

	for _, tc := range cases {
		if got := Match(tc.pattern, tc.name); got != tc.want {
			t.Errorf("Match(%q, %q): expected %v, got %v", tc.pattern, tc.name, tc.want, got)
		}
	}
}

func TestIsPattern(t *testing.T) {
	if IsPattern("player.fire") {
		t.Error("Expected exact name not to be a pattern")
	}
	if !IsPattern("player.*") {
		t.Error("Expected wildcard name to be a pattern")
	}
}
