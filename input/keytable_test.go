package input

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/void-striker/game"
)

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func specialKey(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func TestDefaultBindings(t *testing.T) {
	kt := DefaultKeyTable()
	cases := []struct {
		ev   *tcell.EventKey
		want game.Action
	}{
		{specialKey(tcell.KeyUp), game.ActionUp},
		{specialKey(tcell.KeyLeft), game.ActionLeft},
		{specialKey(tcell.KeyEnter), game.ActionConfirm},
		{specialKey(tcell.KeyEscape), game.ActionBack},
		{specialKey(tcell.KeyCtrlC), game.ActionQuit},
		{runeKey(' '), game.ActionFire},
		{runeKey('w'), game.ActionUp},
		{runeKey('j'), game.ActionDown},
		{runeKey('D'), game.ActionRight},
		{runeKey('x'), game.ActionBomb},
		{runeKey('p'), game.ActionPause},
		{runeKey('o'), game.ActionOptions},
		{runeKey('u'), game.ActionUndo},
		{runeKey('q'), game.ActionQuit},
		{runeKey('z'), game.ActionNone},
		{specialKey(tcell.KeyF5), game.ActionNone},
	}
	for _, tc := range cases {
		if got := kt.Resolve(tc.ev); got != tc.want {
			t.Errorf("Expected %s for %v, got %s", tc.want, tc.ev.Name(), got)
		}
	}
	if got := kt.Resolve(nil); got != game.ActionNone {
		t.Errorf("Expected none for nil event, got %s", got)
	}
}

func TestApplyOverrides(t *testing.T) {
	kt := DefaultKeyTable()
	err := kt.Apply(map[string]string{
		"z":      "fire",
		"space":  "bomb",
		"F1":     "pause",
		"escape": "quit",
		"q":      "none",
	})
	if err != nil {
		t.Fatalf("Expected overrides to apply, got %v", err)
	}

	if got := kt.Resolve(runeKey('z')); got != game.ActionFire {
		t.Errorf("Expected z to fire, got %s", got)
	}
	if got := kt.Resolve(runeKey(' ')); got != game.ActionBomb {
		t.Errorf("Expected space to bomb, got %s", got)
	}
	if got := kt.Resolve(specialKey(tcell.KeyF1)); got != game.ActionPause {
		t.Errorf("Expected F1 to pause, got %s", got)
	}
	if got := kt.Resolve(specialKey(tcell.KeyEscape)); got != game.ActionQuit {
		t.Errorf("Expected Esc to quit, got %s", got)
	}
	if got := kt.Resolve(runeKey('q')); got != game.ActionNone {
		t.Errorf("Expected q unbound, got %s", got)
	}
}

func TestApplyRejectsUnknown(t *testing.T) {
	kt := DefaultKeyTable()
	if err := kt.Apply(map[string]string{"z": "teleport"}); err == nil {
		t.Error("Expected error for unknown action")
	}
	if err := kt.Apply(map[string]string{"NoSuchKey": "fire"}); err == nil {
		t.Error("Expected error for unknown key")
	}
}
