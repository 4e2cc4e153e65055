package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prisonersearch/internal/prisoner/models"
)

func TestFieldTableIsTotal(t *testing.T) {
	known := make(map[models.Category]bool)
	for _, c := range models.Categories {
		known[c] = true
	}
	seen := make(map[string]bool)
	for _, f := range fields {
		assert.True(t, known[f.category], "%s has unknown category %s", f.property, f.category)
		assert.False(t, seen[f.property], "%s declared twice", f.property)
		seen[f.property] = true
	}
}

func TestDifferencesAreStable(t *testing.T) {
	height := 180
	previous := &models.Prisoner{PrisonerNumber: "A1234AA", LastName: "SMITH", PrisonID: "MDI"}
	current := &models.Prisoner{PrisonerNumber: "A1234AA", LastName: "JONES", FirstName: "AMY", PrisonID: "LEI", HeightCentimetres: &height}

	first := Differences(previous, current)
	for range 20 {
		require.Equal(t, first, Differences(previous, current))
	}

	var props []string
	for _, d := range first {
		props = append(props, d.Property)
	}
	assert.Equal(t, []string{"firstName", "lastName", "prisonId", "heightCentimetres"}, props)
}

func TestEmptyAndNilCollectionsAreEqual(t *testing.T) {
	previous := &models.Prisoner{PrisonerNumber: "A1234AA"}
	current := &models.Prisoner{PrisonerNumber: "A1234AA", Alerts: []models.PrisonerAlert{}}
	assert.Empty(t, Differences(previous, current))
}

func TestContentHash(t *testing.T) {
	a, err := ContentHash(&models.Prisoner{PrisonerNumber: "A1234AA"})
	require.NoError(t, err)
	b, err := ContentHash(&models.Prisoner{PrisonerNumber: "A1234AA"})
	require.NoError(t, err)
	c, err := ContentHash(&models.Prisoner{PrisonerNumber: "A1234AB"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
