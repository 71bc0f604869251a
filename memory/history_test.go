package memory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot/model"
)

func tokenHistory(maxTokens int) *History {
	return NewHistory(NewBudget(model.TokenMetered, maxTokens, 20))
}

func messageHistory(maxMessages int) *History {
	return NewHistory(NewBudget(model.MessageCounted, 7500, maxMessages))
}

// exchange runs one user/assistant cycle the way the chat loop does.
func exchange(h *History, n int, usage float64) bool {
	h.AppendUser(fmt.Sprintf("question %d", n))
	evicted := h.ApplyBudget(usage)
	h.AppendAssistant(fmt.Sprintf("answer %d", n))
	return evicted
}

func TestNewBudget(t *testing.T) {
	b := NewBudget(model.TokenMetered, 7500, 20)
	assert.Equal(t, model.EvictByTokens, b.Mode)

	b = NewBudget(model.MessageCounted, 7500, 20)
	assert.Equal(t, model.EvictByMessageCount, b.Mode)
	assert.Equal(t, 20, b.MaxMessages)
}

func TestFirstExchangeNeverEvicts(t *testing.T) {
	tests := []struct {
		name    string
		history *History
		usage   float64
	}{
		{"message budget", messageHistory(20), 3.2},
		{"token budget under threshold", tokenHistory(7500), 40},
		{"token budget over threshold", tokenHistory(7500), 9000},
		{"message budget of zero", messageHistory(0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evicted := exchange(tt.history, 1, tt.usage)
			assert.False(t, evicted)
			require.Equal(t, 2, tt.history.Len())

			turns := tt.history.Snapshot()
			assert.Equal(t, model.NewMessage(model.RoleUser, "question 1"), turns[0])
			assert.Equal(t, model.RoleAssistant, turns[1].Role)
		})
	}
}

func TestTokenBudgetEvictsOldestTurn(t *testing.T) {
	h := tokenHistory(7500)
	exchange(h, 1, 3000)
	exchange(h, 2, 5000)
	require.Equal(t, 4, h.Len())

	evicted := exchange(h, 3, 8000)
	assert.True(t, evicted)
	assert.Equal(t, 5, h.Len())

	turns := h.Snapshot()
	assert.Equal(t, "answer 1", turns[0].Content)
	assert.Equal(t, "answer 3", turns[len(turns)-1].Content)
}

func TestTokenBudgetAtThresholdKeepsHistory(t *testing.T) {
	h := tokenHistory(7500)
	exchange(h, 1, 100)
	assert.False(t, exchange(h, 2, 7500))
	assert.Equal(t, 4, h.Len())
}

func TestMessageBudgetIgnoresUsage(t *testing.T) {
	h := messageHistory(4)
	for i := 1; i <= 2; i++ {
		assert.False(t, exchange(h, i, 1e9))
	}
	require.Equal(t, 4, h.Len())

	// 4 stored + the new user turn exceeds 4.
	assert.True(t, exchange(h, 3, 0))
	assert.Equal(t, 5, h.Len())
}

func TestAtMostOneEvictionPerCall(t *testing.T) {
	h := tokenHistory(10)
	for i := 1; i <= 5; i++ {
		exchange(h, i, 0)
	}
	require.Equal(t, 10, h.Len())

	h.AppendUser("big")
	assert.True(t, h.ApplyBudget(1e6))
	assert.Equal(t, 10, h.Len())
	assert.True(t, h.ApplyBudget(1e6))
	assert.Equal(t, 9, h.Len())
}

func TestNeverEvictsCurrentExchange(t *testing.T) {
	h := tokenHistory(10)
	exchange(h, 1, 0)

	h.AppendUser("oversized")
	assert.True(t, h.ApplyBudget(1e6))
	assert.True(t, h.ApplyBudget(1e6))

	// Only the current user turn is left; it stays.
	assert.False(t, h.ApplyBudget(1e6))
	require.Equal(t, 1, h.Len())
	assert.Equal(t, "oversized", h.Snapshot()[0].Content)
}

func TestSnapshotIsCopy(t *testing.T) {
	h := tokenHistory(7500)
	exchange(h, 1, 0)

	snap := h.Snapshot()
	snap[0].Content = "mutated"
	snap = append(snap, model.NewMessage(model.RoleUser, "extra"))

	assert.Equal(t, "question 1", h.Snapshot()[0].Content)
	assert.Equal(t, 2, h.Len())
	assert.Len(t, snap, 3)
}

func TestReset(t *testing.T) {
	h := tokenHistory(7500)
	exchange(h, 1, 0)
	exchange(h, 2, 0)

	h.Reset()
	assert.Equal(t, 0, h.Len())
	assert.NotNil(t, h.Snapshot())

	assert.False(t, exchange(h, 3, 1e6))
	assert.Equal(t, 2, h.Len())
}
