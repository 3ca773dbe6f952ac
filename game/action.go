package game

// Action is a player command decoded from input
type Action int

const (
	ActionNone Action = iota
	ActionUp
	ActionDown
	ActionLeft
	ActionRight
	ActionFire
	ActionBomb
	ActionPause
	ActionOptions
	ActionConfirm
	ActionBack
	ActionUndo
	ActionQuit
)

var actionNames = [...]string{
	ActionNone:    "none",
	ActionUp:      "up",
	ActionDown:    "down",
	ActionLeft:    "left",
	ActionRight:   "right",
	ActionFire:    "fire",
	ActionBomb:    "bomb",
	ActionPause:   "pause",
	ActionOptions: "options",
	ActionConfirm: "confirm",
	ActionBack:    "back",
	ActionUndo:    "undo",
	ActionQuit:    "quit",
}

func (a Action) String() string {
	if a >= 0 && int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// ParseAction resolves a name from key configuration
func ParseAction(name string) (Action, bool) {
	for i, n := range actionNames {
		if n == name {
			return Action(i), true
		}
	}
	return ActionNone, false
}

// Handle applies one action; returns false when the player asked to quit
// Control actions work while paused, when ticks are suspended
func (g *Game) Handle(a Action) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	defer g.settle()

	if a == ActionQuit {
		g.emit(EventGameCleanup, nil)
		return false
	}

	switch g.Phase() {
	case PhaseTitle:
		switch a {
		case ActionConfirm, ActionFire:
			g.start()
		case ActionOptions:
			g.openOptions(PhaseTitle)
		}

	case PhasePlaying, PhaseBoss:
		switch a {
		case ActionUp, ActionDown, ActionLeft, ActionRight:
			g.steer(a)
		case ActionFire:
			g.intent.fireUntil = g.elapsed + fireHoldWindow
		case ActionBomb:
			g.bomb()
		case ActionPause, ActionBack:
			g.pause()
		}

	case PhaseDialogue, PhaseLevelClear:
		switch a {
		case ActionUp, ActionDown, ActionLeft, ActionRight:
			g.steer(a)
		case ActionConfirm, ActionFire:
			g.emit(EventStoryAdvance, nil)
		case ActionPause, ActionBack:
			g.pause()
		}

	case PhasePaused:
		switch a {
		case ActionPause, ActionConfirm, ActionBack:
			g.resume()
		case ActionOptions:
			g.openOptions(PhasePaused)
		}

	case PhaseOptions:
		g.handleOptions(a)

	case PhaseGameOver:
		if a == ActionConfirm && g.recorded {
			g.set(PathPhase, PhaseTitle)
		}
	}
	return true
}

func (g *Game) steer(a Action) {
	axis, dir := 0, 1.0
	switch a {
	case ActionUp:
		axis, dir = 1, -1
	case ActionDown:
		axis = 1
	case ActionLeft:
		dir = -1
	}
	g.intent.dir[axis] = dir
	g.intent.moveUntil[axis] = g.elapsed + moveHoldWindow
}

func (g *Game) openOptions(from string) {
	g.menu.Open(from)
	g.set(PathPhase, PhaseOptions)
	g.emit(EventOptionsOpen, nil)
}

func (g *Game) handleOptions(a Action) {
	var err error
	switch a {
	case ActionUp:
		g.menu.Move(-1)
	case ActionDown:
		g.menu.Move(1)
	case ActionLeft:
		err = g.menu.Adjust(g.st, -1)
	case ActionRight, ActionConfirm, ActionFire:
		err = g.menu.Adjust(g.st, 1)
	case ActionUndo:
		g.menu.Undo(g.st)
	case ActionOptions, ActionBack, ActionPause:
		g.set(PathPhase, g.menu.Close())
		g.emit(EventOptionsClose, nil)
	}
	if err != nil {
		g.logger.Warn().Err(err).Msg("option rejected")
	}
}
