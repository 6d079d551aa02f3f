package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFastPathNoHooks(t *testing.T) {
	ClearErrorHooks()

	ee := New(fmt.Errorf("test error")).Build()

	assert.Equal(t, "test error", ee.Error())
	assert.Equal(t, ComponentUnknown, ee.GetComponent())
	assert.Equal(t, CategoryGeneric, ee.Category)
}

func TestBuilderCarriesMetadata(t *testing.T) {
	ClearErrorHooks()

	ee := Newf("asset %s missing", "a1").
		Component("session").
		Category(CategoryNotFound).
		Priority("bogus").
		Context("asset_id", "a1").
		Build()

	assert.Equal(t, "session", ee.GetComponent())
	assert.Equal(t, PriorityMedium, ee.GetPriority())
	assert.Equal(t, map[string]any{"asset_id": "a1"}, ee.GetContext())
	assert.True(t, IsNotFound(ee))
	assert.False(t, IsValidation(ee))
}

func TestHooksReceiveBuiltErrors(t *testing.T) {
	t.Cleanup(ClearErrorHooks)

	var seen []ErrorCategory
	AddErrorHook(func(ee *EnhancedError) {
		seen = append(seen, ee.Category)
	})

	_ = ValidationError("bad folder").Error()
	_ = New(fmt.Errorf("x")).Category(CategoryDatabase).Component("datastore").Build()

	require.Len(t, seen, 2)
	assert.Equal(t, []ErrorCategory{CategoryValidation, CategoryDatabase}, seen)
}

func TestCategoryInheritedFromWrappedError(t *testing.T) {
	ClearErrorHooks()

	inner := NotFound("asset", "a1")
	outer := New(fmt.Errorf("delete failed: %w", inner)).Build()

	assert.Equal(t, CategoryNotFound, outer.Category)
	assert.True(t, Is(outer, inner))
}
