// Package input maps tcell key events to game actions
package input

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/void-striker/game"
)

// Rune aliases for keys that are awkward to write bare in config
var runeAliases = map[string]rune{
	"space":     ' ',
	"backslash": '\\',
}

var keyAliases = map[string]tcell.Key{
	"escape": tcell.KeyEscape,
	"return": tcell.KeyEnter,
}

// KeyTable maps keys to actions
type KeyTable struct {
	// Special keys (arrows, Enter, Esc, Ctrl+*)
	SpecialKeys map[tcell.Key]game.Action

	// Printable rune bindings
	Runes map[rune]game.Action
}

// DefaultKeyTable returns the default bindings: arrows or wasd/hjkl to move, space to fire
func DefaultKeyTable() *KeyTable {
	return &KeyTable{
		SpecialKeys: map[tcell.Key]game.Action{
			tcell.KeyUp:     game.ActionUp,
			tcell.KeyDown:   game.ActionDown,
			tcell.KeyLeft:   game.ActionLeft,
			tcell.KeyRight:  game.ActionRight,
			tcell.KeyEnter:  game.ActionConfirm,
			tcell.KeyEscape: game.ActionBack,
			tcell.KeyCtrlC:  game.ActionQuit,
			tcell.KeyCtrlQ:  game.ActionQuit,
			tcell.KeyCtrlZ:  game.ActionUndo,
		},

		Runes: map[rune]game.Action{
			'w': game.ActionUp,
			'a': game.ActionLeft,
			's': game.ActionDown,
			'd': game.ActionRight,
			'k': game.ActionUp,
			'h': game.ActionLeft,
			'j': game.ActionDown,
			'l': game.ActionRight,
			' ': game.ActionFire,
			'x': game.ActionBomb,
			'b': game.ActionBomb,
			'p': game.ActionPause,
			'o': game.ActionOptions,
			'u': game.ActionUndo,
			'q': game.ActionQuit,
		},
	}
}

// Resolve returns the action bound to ev, ActionNone when unbound
func (kt *KeyTable) Resolve(ev *tcell.EventKey) game.Action {
	if ev == nil {
		return game.ActionNone
	}
	if ev.Key() == tcell.KeyRune {
		if a, ok := kt.Runes[ev.Rune()]; ok {
			return a
		}
		// Shifted letters behave like their lowercase binding
		if a, ok := kt.Runes[toLower(ev.Rune())]; ok {
			return a
		}
		return game.ActionNone
	}
	if a, ok := kt.SpecialKeys[ev.Key()]; ok {
		return a
	}
	return game.ActionNone
}

// Apply overrides bindings from config: key name → action name
// Key names are single characters, aliases (space) or tcell names (Up, Enter, Ctrl-C)
// An action of "none" unbinds the key
func (kt *KeyTable) Apply(bindings map[string]string) error {
	for keyName, actionName := range bindings {
		action, ok := game.ParseAction(strings.ToLower(actionName))
		if !ok {
			return fmt.Errorf("keymap: unknown action %q for key %q", actionName, keyName)
		}
		if r, ok := parseRune(keyName); ok {
			if action == game.ActionNone {
				delete(kt.Runes, r)
			} else {
				kt.Runes[r] = action
			}
			continue
		}
		key, ok := parseSpecialKey(keyName)
		if !ok {
			return fmt.Errorf("keymap: unknown key %q", keyName)
		}
		if action == game.ActionNone {
			delete(kt.SpecialKeys, key)
		} else {
			kt.SpecialKeys[key] = action
		}
	}
	return nil
}

func parseRune(name string) (rune, bool) {
	if r, ok := runeAliases[strings.ToLower(name)]; ok {
		return r, true
	}
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		return r, true
	}
	return 0, false
}

func parseSpecialKey(name string) (tcell.Key, bool) {
	want := strings.ToLower(name)
	if key, ok := keyAliases[want]; ok {
		return key, true
	}
	for key, n := range tcell.KeyNames {
		if strings.ToLower(n) == want {
			return key, true
		}
	}
	return 0, false
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
