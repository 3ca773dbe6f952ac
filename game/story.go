package game

import "fmt"

// Line is one dialogue entry
type Line struct {
	Speaker string
	Text    string
}

var introScripts = [][]Line{
	{
		{"Command", "Pilot, hostile scouts are crossing the outer ring."},
		{"Command", "Clear the lane. Their carrier will not stay hidden for long."},
		{"Pilot", "Copy. Weapons hot."},
	},
	{
		{"Command", "Heavier hulls ahead. Tanks soak up fire, keep moving."},
		{"Pilot", "Understood."},
	},
	{
		{"Command", "Kamikaze drones detected. They will home on you."},
		{"Pilot", "Then I will make them miss."},
	},
}

var outroScripts = [][]Line{
	{
		{"Command", "Carrier down! Good flying."},
		{"Pilot", "Regrouping for the next sector."},
	},
	{
		{"Command", "Another flagship destroyed. They are getting desperate."},
	},
}

// IntroScript returns the dialogue shown before level's waves
// Levels past the written scripts reuse the last one with a sector callout
func IntroScript(level int) []Line {
	return script(introScripts, level)
}

// OutroScript returns the dialogue shown after level's boss falls
func OutroScript(level int) []Line {
	return script(outroScripts, level)
}

func script(scripts [][]Line, level int) []Line {
	idx := max(level, 1) - 1
	if idx < len(scripts) {
		return scripts[idx]
	}
	last := scripts[len(scripts)-1]
	out := make([]Line, 0, len(last)+1)
	out = append(out, Line{"Command", fmt.Sprintf("Sector %d. Stay sharp.", level)})
	return append(out, last...)
}
