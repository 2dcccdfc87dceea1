package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPending_AllWhenNothingApplied(t *testing.T) {
	pending := Pending(map[string]bool{})

	assert.Len(t, pending, len(allMigrations))
	for i := 1; i < len(pending); i++ {
		assert.Less(t, pending[i-1].ID, pending[i].ID)
	}
}

func TestPending_SkipsApplied(t *testing.T) {
	pending := Pending(map[string]bool{"20240601090000_create_conversation_state_table": true})

	assert.Len(t, pending, len(allMigrations)-1)
	for _, m := range pending {
		assert.NotEqual(t, "20240601090000_create_conversation_state_table", m.ID)
	}
}
