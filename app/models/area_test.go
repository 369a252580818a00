package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryAddKeepsFirstPosition(t *testing.T) {
	dir := NewDirectory("v1")
	dir.Add(Area{Name: "Москва", ID: "1", RootGroupID: "113"})
	dir.Add(Area{Name: "Тверь", ID: "2", RootGroupID: "113"})
	// Repeated name: position stays, data is replaced.
	dir.Add(Area{Name: "Москва", ID: "99", ParentRegion: "обновлено", RootGroupID: "113"})

	assert.Equal(t, 2, dir.Len())
	assert.Equal(t, []string{"Москва", "Тверь"}, dir.Names())

	a, ok := dir.Get("Москва")
	require.True(t, ok)
	assert.Equal(t, "99", a.ID)
	assert.Equal(t, "обновлено", a.ParentRegion)
	assert.Equal(t, 0, a.Seq)
}

func TestDirectorySubset(t *testing.T) {
	dir := NewDirectory("v1")
	dir.Add(Area{Name: "Москва", ID: "1", RootGroupID: "113"})
	dir.Add(Area{Name: "Киев", ID: "115", RootGroupID: "5"})
	dir.Add(Area{Name: "Тверь", ID: "2", RootGroupID: "113"})

	sub := dir.Subset("113")
	assert.Equal(t, []string{"Москва", "Тверь"}, sub.Names())
	assert.Equal(t, 2, sub.Len())
	assert.Equal(t, dir.LoadedAt(), sub.LoadedAt())

	_, ok := sub.Get("Киев")
	assert.False(t, ok)

	// Subset positions are renumbered in relative order.
	tver, _ := sub.Get("Тверь")
	assert.Equal(t, 1, tver.Seq)
}

func TestStatusIsDuplicate(t *testing.T) {
	assert.True(t, StatusDuplicateInput.IsDuplicate())
	assert.True(t, StatusDuplicateResult.IsDuplicate())
	assert.False(t, StatusExact.IsDuplicate())
	assert.False(t, StatusEmpty.IsDuplicate())
}
