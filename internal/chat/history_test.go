package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryWindow(t *testing.T) {
	var h History
	for i := 0; i < 25; i++ {
		h = append(h, Turn{Role: RoleUser, Text: fmt.Sprintf("turn %d", i)})
	}

	got := h.Window(10)
	assert.Len(t, got, 10)
	assert.Equal(t, "turn 15", got[0].Text)
	assert.Equal(t, "turn 24", got[9].Text)
}

func TestHistoryWindowShorterThanBound(t *testing.T) {
	h := History{{Role: RoleUser, Text: "only"}}
	assert.Len(t, h.Window(10), 1)
}

func TestHistoryWindowUnbounded(t *testing.T) {
	h := History{{Role: RoleUser, Text: "a"}, {Role: RoleModel, Text: "b"}}
	assert.Len(t, h.Window(0), 2)
	assert.Len(t, h.Window(-1), 2)
}

func TestHistoryCloneIsIndependent(t *testing.T) {
	h := History{{Role: RoleUser, Text: "a"}}
	snap := h.Clone()
	h = append(h, Turn{Role: RoleModel, Text: "b"})
	h[0].Text = "mutated"

	assert.Len(t, snap, 1)
	assert.Equal(t, "a", snap[0].Text)
}
