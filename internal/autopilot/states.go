// Package autopilot runs the passive-earning bot: tier selection, accrual
// sessions, and claiming, modeled as a small per-account state machine.
package autopilot

// State is one phase of the bot lifecycle for an account.
type State string

const (
	// StateNoBot means no tier has been selected yet.
	StateNoBot State = "no_bot"
	// StateIdle means a tier is selected but no session is running.
	StateIdle State = "idle"
	// StateRunning means a session is accruing and has not hit the cap.
	StateRunning State = "running"
	// StateClaimReady means the session reached the cap and waits for the
	// player to claim. Running sessions are also claimable; this state only
	// marks that accrual has stopped.
	StateClaimReady State = "claim_ready"
)

// validTransitions lists the permitted moves through the bot lifecycle.
var validTransitions = map[State][]State{
	StateNoBot:      {StateIdle},
	StateIdle:       {StateRunning, StateIdle},
	StateRunning:    {StateClaimReady, StateIdle},
	StateClaimReady: {StateIdle},
}

// IsTransitionAllowed reports whether moving between the two states is valid.
func IsTransitionAllowed(from, to State) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder lets external packages observe bot state
// transitions, e.g. for metrics.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}
