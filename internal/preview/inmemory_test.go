package preview_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagecraft/draftpipe/internal/domain/catalog"
	"github.com/stagecraft/draftpipe/internal/preview"
)

func TestInMemoryAllocator_AllocateAndLookup(t *testing.T) {
	a := preview.NewInMemoryAllocator(nil)
	file := &catalog.StagedFile{Name: "photo.jpg", ContentType: "image/jpeg", Size: 3}

	handle, err := a.Allocate(file)
	require.NoError(t, err)
	assert.True(t, preview.IsHandle(handle))

	got, ok := a.Lookup(handle)
	require.True(t, ok)
	assert.Equal(t, file, got)
	assert.Equal(t, 1, a.Live())
}

func TestInMemoryAllocator_Release(t *testing.T) {
	a := preview.NewInMemoryAllocator(nil)

	handle, err := a.Allocate(&catalog.StagedFile{Name: "a.png"})
	require.NoError(t, err)

	a.Release(handle)
	_, ok := a.Lookup(handle)
	assert.False(t, ok)
	assert.Equal(t, 0, a.Live())

	// double release and unknown release are no-ops
	a.Release(handle)
	a.Release("staged://never-issued")
	a.Release("")
	assert.Equal(t, 0, a.Live())
}

func TestInMemoryAllocator_NilFile(t *testing.T) {
	a := preview.NewInMemoryAllocator(nil)

	_, err := a.Allocate(nil)
	assert.Error(t, err)
}

func TestInMemoryAllocator_DistinctHandles(t *testing.T) {
	a := preview.NewInMemoryAllocator(nil)

	h1, err := a.Allocate(&catalog.StagedFile{Name: "a.png"})
	require.NoError(t, err)
	h2, err := a.Allocate(&catalog.StagedFile{Name: "b.png"})
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.Equal(t, 2, a.Live())
}

func TestIsHandle(t *testing.T) {
	assert.True(t, preview.IsHandle(catalog.LocalScheme+"abc"))
	assert.False(t, preview.IsHandle("https://cdn.example.com/a.jpg"))
	assert.False(t, preview.IsHandle(""))
}
