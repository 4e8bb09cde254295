package engine

import "fmt"

func describeMove(e *GameEngine, r MoveReport) string {
	st := e.state
	switch {
	case !r.Applied && st.GameOver:
		return "Game over. Restart to play again."
	case !r.Applied && st.Won:
		return "You escaped the castle! Restart to play again."
	case !r.Applied:
		return "Nothing happens."
	case r.Transition != TransitionNone:
		return describeTransition(e, r.Transition)
	case r.HazardHit:
		return hazardMessage(st)
	case r.TrapTriggered && st.GameOver:
		return "A hidden trap took your last life. Game over!"
	case r.TrapTriggered:
		return fmt.Sprintf("A hidden trap! Lives left: %d/%d", st.Lives, e.campaign.MaxLives)
	case r.Collected:
		return fmt.Sprintf("Coin collected: %d/%d%s", st.Coins, e.campaign.current(st).RequiredCoins, gateSuffix(e))
	case st.Mode == Overworld:
		return "You wander in front of the castle."
	case r.Stop == StopExitLocked:
		return fmt.Sprintf("The gate is locked: %d/%d coins", st.Coins, e.campaign.current(st).RequiredCoins)
	case !r.Moved():
		return fmt.Sprintf("Can't move %s: blocked by %s", r.Direction, r.Stop)
	}
	return fmt.Sprintf("Moved %s to %s", r.Direction, r.To)
}

func gateSuffix(e *GameEngine) string {
	if e.state.Coins >= e.campaign.current(e.state).RequiredCoins {
		return " - gate open"
	}
	return ""
}

func describeTransition(e *GameEngine, t Transition) string {
	st := e.state
	lvl := e.campaign.current(st)
	switch t {
	case TransitionEnterMaze:
		return fmt.Sprintf("Entered %s. Collect %d coins to open the gate.", lvl.Name, lvl.RequiredCoins)
	case TransitionOverworld:
		return fmt.Sprintf("Level complete! The door now leads to %s.", lvl.Name)
	case TransitionNextLevel, TransitionShortcut:
		return fmt.Sprintf("Level complete! Welcome to %s.", lvl.Name)
	case TransitionSecret:
		return fmt.Sprintf("A secret passage! You tumble into %s.", lvl.Name)
	case TransitionWin:
		return "You escaped the castle!"
	case TransitionRestart:
		return fmt.Sprintf("A new attempt at %s begins.", e.campaign.Name)
	case TransitionNone:
		if st.Mode == Overworld {
			return "You wander in front of the castle."
		}
	}
	return ""
}

func hazardMessage(st *RunState) string {
	if st.GameOver {
		return "The guard caught you for the last time. Game over!"
	}
	return fmt.Sprintf("The guard caught you! Lives left: %d", st.Lives)
}
