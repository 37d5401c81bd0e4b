package migrations

import (
	"io/fs"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductStoreIDIsPositive(t *testing.T) {
	data, err := fs.ReadFile(MigrationsFS, "00001_create_product_sku.sql")
	require.NoError(t, err)

	column := regexp.MustCompile(`(?m)^\s*store_id BIGINT[^\n]*$`).Find(data)
	require.NotNil(t, column, "product.store_id column")

	assert.Contains(t, string(column), "CHECK (store_id > 0)")
	assert.NotContains(t, string(column), "DEFAULT")
}
