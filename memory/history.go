// Package memory owns the conversation history and its eviction policy.
//
// A History is a plain ordered list of turns. It grows by appending at the
// tail and shrinks only by evicting its oldest turn when the budget of the
// active backend profile is exceeded after an exchange. The synthesized system
// turn of each exchange is never stored here.
package memory

import (
	"chatbot/model"
)

// Budget is the eviction threshold for one backend profile.
type Budget struct {
	Mode        model.EvictionMode
	MaxTokens   int
	MaxMessages int
}

// NewBudget selects the threshold that matches profile.
func NewBudget(profile model.Profile, maxTokens, maxMessages int) Budget {
	return Budget{
		Mode:        profile.Eviction,
		MaxTokens:   maxTokens,
		MaxMessages: maxMessages,
	}
}

// History is the ordered conversation, oldest turn first.
//
// It is owned by a single chat loop and is not safe for concurrent use.
type History struct {
	turns  []model.Message
	budget Budget

	// exchangeStart is the index of the first turn appended by the current
	// exchange. Turns at or after it are never evicted.
	exchangeStart int
}

// NewHistory creates an empty history governed by budget.
func NewHistory(budget Budget) *History {
	return &History{budget: budget}
}

// AppendUser adds a user turn and starts a new exchange. Blank input is
// filtered by the caller, not here.
func (h *History) AppendUser(text string) {
	h.exchangeStart = len(h.turns)
	h.turns = append(h.turns, model.NewMessage(model.RoleUser, text))
}

// AppendAssistant adds the assistant reply of the current exchange.
func (h *History) AppendAssistant(text string) {
	h.turns = append(h.turns, model.NewMessage(model.RoleAssistant, text))
}

// ApplyBudget evicts the oldest turn if the budget is exceeded and reports
// whether it did.
//
// Token budgets compare usage, the metric returned by the last exchange.
// Message budgets compare the number of stored turns and ignore usage. At
// most one turn is evicted per call, and never one that belongs to the current
// exchange, so an oversized turn stays until a later cycle evicts it.
func (h *History) ApplyBudget(usage float64) bool {
	if !h.overBudget(usage) {
		return false
	}
	if h.exchangeStart == 0 {
		return false
	}

	h.turns = h.turns[1:]
	h.exchangeStart--
	return true
}

func (h *History) overBudget(usage float64) bool {
	switch h.budget.Mode {
	case model.EvictByMessageCount:
		return len(h.turns) > h.budget.MaxMessages
	default:
		return usage > float64(h.budget.MaxTokens)
	}
}

// Snapshot returns a copy of the turns that callers may modify freely.
func (h *History) Snapshot() []model.Message {
	return model.CloneMessages(h.turns)
}

// Len returns the number of stored turns.
func (h *History) Len() int {
	return len(h.turns)
}

// Reset drops every turn.
func (h *History) Reset() {
	h.turns = nil
	h.exchangeStart = 0
}
