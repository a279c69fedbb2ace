package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnslabs/waconsole/internal/models"
)

func TestContactsSearchFiltersTheTable(t *testing.T) {
	contacts := []models.Contact{
		{ID: "1", Name: "Asha", PhoneNumber: "+919800000001", LastMessage: "refund approved"},
		{ID: "2", Name: "Vikram", PhoneNumber: "+919811112222", AssignedAgent: "Priya"},
	}
	m := NewContactsModel(newTestApp(t), contacts)
	require.Len(t, m.filtered, 2)

	m.searchInput.SetValue("refund")
	m.applyFilter()
	require.Len(t, m.filtered, 1)
	selected, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, "1", selected.ID)

	m.searchInput.SetValue("priya")
	m.applyFilter()
	assert.Empty(t, m.filtered)

	m.searchInput.SetValue("")
	m.applyFilter()
	assert.Len(t, m.filtered, 2)
}

func TestContactsViewBadgesAssignmentState(t *testing.T) {
	contacts := []models.Contact{
		{ID: "1", Name: "Asha", PhoneNumber: "+919800000001", AssignedAgent: "Priya"},
		{ID: "2", Name: "Vikram", PhoneNumber: "+919811112222"},
	}
	m := NewContactsModel(newTestApp(t), contacts)

	view := m.View()
	assert.True(t, strings.Contains(view, "Priya"))
	assert.True(t, strings.Contains(view, "Unassigned"))
}
