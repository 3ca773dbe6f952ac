package game

import (
	"fmt"
	"math"

	"github.com/lixenwraith/void-striker/state"
)

type optionKind int

const (
	optionToggle optionKind = iota
	optionVolume
	optionChoice
)

// OptionItem is one row of the options menu, bound to a state path
type OptionItem struct {
	Label   string
	Path    string
	kind    optionKind
	choices []string
}

// OptionRow is a rendered menu row
type OptionRow struct {
	Label string
	Value string
}

// OptionsMenu edits options.* through the state store
// Every edit is one undo step; Undo only reverts edits made in this session of the menu
type OptionsMenu struct {
	Items  []OptionItem
	Cursor int

	edits       int
	returnPhase string
}

const volumeStep = 0.1

// NewOptionsMenu builds the menu rows
func NewOptionsMenu() *OptionsMenu {
	return &OptionsMenu{
		Items: []OptionItem{
			{Label: "Volume", Path: PathVolume, kind: optionVolume},
			{Label: "Sound", Path: PathSound, kind: optionToggle},
			{Label: "Difficulty", Path: PathDifficulty, kind: optionChoice, choices: []string{"easy", "normal", "hard"}},
			{Label: "Parallax", Path: PathParallax, kind: optionToggle},
		},
	}
}

// Open starts an editing session that returns to phase on Close
func (m *OptionsMenu) Open(returnPhase string) {
	m.edits = 0
	m.returnPhase = returnPhase
}

// Close ends the session and returns the phase to go back to
func (m *OptionsMenu) Close() string {
	phase := m.returnPhase
	m.returnPhase = ""
	m.edits = 0
	return phase
}

// Move shifts the cursor by delta, wrapping
func (m *OptionsMenu) Move(delta int) {
	n := len(m.Items)
	m.Cursor = ((m.Cursor+delta)%n + n) % n
}

// Adjust changes the selected option in direction dir (-1/+1)
func (m *OptionsMenu) Adjust(st *state.Store, dir int) error {
	item := m.Items[m.Cursor]
	var next any

	switch item.kind {
	case optionToggle:
		next = !st.GetBool(item.Path, false)
	case optionVolume:
		v := st.GetFloat(item.Path, 1) + float64(dir)*volumeStep
		next = math.Round(math.Min(math.Max(v, 0), 1)*10) / 10
	case optionChoice:
		cur := st.GetString(item.Path, item.choices[0])
		idx := 0
		for i, c := range item.choices {
			if c == cur {
				idx = i
				break
			}
		}
		n := len(item.choices)
		next = item.choices[((idx+dir)%n+n)%n]
	}

	before := st.Version()
	if err := st.Set(item.Path, next); err != nil {
		return fmt.Errorf("options: %s: %w", item.Label, err)
	}
	if st.Version() != before {
		m.edits++
	}
	return nil
}

// Undo reverts the last edit of this session; false when there is none
func (m *OptionsMenu) Undo(st *state.Store) bool {
	if m.edits == 0 || !st.Undo() {
		return false
	}
	m.edits--
	return true
}

// Rows renders the current values
func (m *OptionsMenu) Rows(st *state.Store) []OptionRow {
	rows := make([]OptionRow, len(m.Items))
	for i, item := range m.Items {
		var value string
		switch item.kind {
		case optionToggle:
			value = "off"
			if st.GetBool(item.Path, false) {
				value = "on"
			}
		case optionVolume:
			value = fmt.Sprintf("%d%%", int(math.Round(st.GetFloat(item.Path, 0)*100)))
		case optionChoice:
			value = st.GetString(item.Path, "")
		}
		rows[i] = OptionRow{Label: item.Label, Value: value}
	}
	return rows
}
