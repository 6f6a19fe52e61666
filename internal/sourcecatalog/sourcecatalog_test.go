package sourcecatalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/broadcastswitch/switcherd/internal/sourcecatalog"
)

func TestForProductReturnsKnownCatalog(t *testing.T) {
	t.Parallel()
	ids := sourcecatalog.ForProduct("ATEM Mini")
	assert.Contains(t, ids, 1000)
	assert.Contains(t, ids, 10011)
}

func TestForProductFallsBackToDefaultForUnknownName(t *testing.T) {
	t.Parallel()
	fallback := sourcecatalog.ForProduct("ATEM Television Studio HD")
	unknown := sourcecatalog.ForProduct("Some Unreleased Switcher")
	assert.Equal(t, fallback, unknown)
}

func TestProductsListsAllCatalogs(t *testing.T) {
	t.Parallel()
	names := sourcecatalog.Products()
	assert.Contains(t, names, "ATEM Mini")
	assert.Contains(t, names, "ATEM Television Studio HD")
	assert.Contains(t, names, "ATEM 2 M/E Production Studio 4K")
	assert.Len(t, names, 3)
}
