package monitor

import "sync"

// RoleUsage is the accumulated token consumption for one agent role.
type RoleUsage struct {
	InputTokens  int
	OutputTokens int
	Invocations  int
}

// TokenTally accumulates token usage per role from phase-completion events.
// It implements Listener so it can be subscribed directly.
type TokenTally struct {
	mu      sync.Mutex
	perRole map[string]RoleUsage
}

// NewTokenTally creates an empty tally.
func NewTokenTally() *TokenTally {
	return &TokenTally{perRole: make(map[string]RoleUsage)}
}

var _ Listener = (*TokenTally)(nil)

// OnEvent accumulates usage from phase completions.
func (t *TokenTally) OnEvent(ev Event) {
	if ev.Type != EventPhaseCompleted || ev.Role == "" {
		return
	}
	t.Add(ev.Role, ev.InputTokens, ev.OutputTokens)
}

// Add records one invocation's usage for a role.
func (t *TokenTally) Add(role string, inputTokens, outputTokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	u := t.perRole[role]
	u.InputTokens += inputTokens
	u.OutputTokens += outputTokens
	u.Invocations++
	t.perRole[role] = u
}

// Total returns the summed input and output tokens across all roles.
func (t *TokenTally) Total() (inputTokens, outputTokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, u := range t.perRole {
		inputTokens += u.InputTokens
		outputTokens += u.OutputTokens
	}
	return inputTokens, outputTokens
}

// PerRole returns a copy of the per-role usage map.
func (t *TokenTally) PerRole() map[string]RoleUsage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]RoleUsage, len(t.perRole))
	for role, u := range t.perRole {
		out[role] = u
	}
	return out
}
