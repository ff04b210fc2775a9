package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabase_PingStatsClose(t *testing.T) {
	db := newTestDB(t)
	d := NewDatabaseFromGorm(db)

	require.NoError(t, d.Ping())
	stats, err := d.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
	assert.GreaterOrEqual(t, stats.OpenConnections, stats.InUse)

	for _, m := range AllModels() {
		assert.True(t, db.Migrator().HasTable(m))
	}
}
