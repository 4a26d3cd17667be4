package pgdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpsertItemQuery_KeepsLastSyncedAt(t *testing.T) {
	assert.Contains(t, upsertItemQuery, "last_synced_at = COALESCE(EXCLUDED.last_synced_at, items.last_synced_at)")
	assert.NotContains(t, upsertItemQuery, "last_synced_at = EXCLUDED.last_synced_at")
	assert.Contains(t, upsertItemQuery, "title = EXCLUDED.title")
}
