package migrations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcomnes/pgdbhelper/migrations"
	"github.com/bcomnes/pgdbhelper/pkg/migrator"
)

func TestBundleLoads(t *testing.T) {
	migs, err := migrator.LoadMigrations(migrator.Config{FS: migrations.FS})
	require.NoError(t, err)
	require.NotEmpty(t, migs)

	for i := 1; i < len(migs); i++ {
		assert.LessOrEqual(t, migs[i-1].Version, migs[i].Version)
	}
	for _, m := range migs {
		assert.NotEmpty(t, m.Md5, m.Filename)
	}
}
