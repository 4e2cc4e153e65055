package diff

import (
	"sort"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"prisonersearch/internal/prisoner/models"
)

// field is one diffable document property.
type field struct {
	property string
	category models.Category
	value    func(*models.Prisoner) any
}

// fields declares every diffable property. Adding a document field without a
// row here means its changes are never reported.
var fields = []field{
	{"prisonerNumber", models.CategoryIdentifiers, func(p *models.Prisoner) any { return p.PrisonerNumber }},
	{"pncNumber", models.CategoryIdentifiers, func(p *models.Prisoner) any { return p.PNCNumber }},
	{"croNumber", models.CategoryIdentifiers, func(p *models.Prisoner) any { return p.CRONumber }},
	{"bookingId", models.CategoryIdentifiers, func(p *models.Prisoner) any { return p.BookingID }},
	{"bookNumber", models.CategoryIdentifiers, func(p *models.Prisoner) any { return p.BookNumber }},

	{"firstName", models.CategoryPersonalDetails, func(p *models.Prisoner) any { return p.FirstName }},
	{"middleNames", models.CategoryPersonalDetails, func(p *models.Prisoner) any { return p.MiddleNames }},
	{"lastName", models.CategoryPersonalDetails, func(p *models.Prisoner) any { return p.LastName }},
	{"dateOfBirth", models.CategoryPersonalDetails, func(p *models.Prisoner) any { return p.DateOfBirth }},
	{"gender", models.CategoryPersonalDetails, func(p *models.Prisoner) any { return p.Gender }},
	{"ethnicity", models.CategoryPersonalDetails, func(p *models.Prisoner) any { return p.Ethnicity }},
	{"nationality", models.CategoryPersonalDetails, func(p *models.Prisoner) any { return p.Nationality }},
	{"religion", models.CategoryPersonalDetails, func(p *models.Prisoner) any { return p.Religion }},
	{"maritalStatus", models.CategoryPersonalDetails, func(p *models.Prisoner) any { return p.MaritalStatus }},

	{"alerts", models.CategoryAlerts, func(p *models.Prisoner) any { return p.Alerts }},

	{"status", models.CategoryStatus, func(p *models.Prisoner) any { return p.Status }},
	{"lastMovementTypeCode", models.CategoryStatus, func(p *models.Prisoner) any { return p.LastMovementTypeCode }},
	{"lastMovementReasonCode", models.CategoryStatus, func(p *models.Prisoner) any { return p.LastMovementReasonCode }},
	{"inOutStatus", models.CategoryStatus, func(p *models.Prisoner) any { return p.InOutStatus }},
	{"legalStatus", models.CategoryStatus, func(p *models.Prisoner) any { return p.LegalStatus }},
	{"complexityOfNeedLevel", models.CategoryStatus, func(p *models.Prisoner) any { return p.ComplexityOfNeedLevel }},

	{"prisonId", models.CategoryLocation, func(p *models.Prisoner) any { return p.PrisonID }},
	{"prisonName", models.CategoryLocation, func(p *models.Prisoner) any { return p.PrisonName }},
	{"cellLocation", models.CategoryLocation, func(p *models.Prisoner) any { return p.CellLocation }},
	{"category", models.CategoryLocation, func(p *models.Prisoner) any { return p.Category }},

	{"sentenceStartDate", models.CategorySentence, func(p *models.Prisoner) any { return p.SentenceStartDate }},
	{"releaseDate", models.CategorySentence, func(p *models.Prisoner) any { return p.ReleaseDate }},
	{"confirmedReleaseDate", models.CategorySentence, func(p *models.Prisoner) any { return p.ConfirmedReleaseDate }},
	{"mostSeriousOffence", models.CategorySentence, func(p *models.Prisoner) any { return p.MostSeriousOffence }},
	{"recall", models.CategorySentence, func(p *models.Prisoner) any { return p.Recall }},
	{"indeterminateSentence", models.CategorySentence, func(p *models.Prisoner) any { return p.Indeterminate }},

	{"restrictedPatient", models.CategoryRestrictedPatient, func(p *models.Prisoner) any { return p.RestrictedPatient }},
	{"supportingPrisonId", models.CategoryRestrictedPatient, func(p *models.Prisoner) any { return p.SupportingPrisonID }},
	{"dischargedHospitalId", models.CategoryRestrictedPatient, func(p *models.Prisoner) any { return p.DischargedHospitalID }},
	{"dischargedHospitalDescription", models.CategoryRestrictedPatient, func(p *models.Prisoner) any { return p.DischargedHospitalDescription }},
	{"dischargeDate", models.CategoryRestrictedPatient, func(p *models.Prisoner) any { return p.DischargeDate }},

	{"currentIncentive", models.CategoryIncentiveLevel, func(p *models.Prisoner) any { return p.CurrentIncentive }},

	{"heightCentimetres", models.CategoryPhysicalDetails, func(p *models.Prisoner) any { return p.HeightCentimetres }},
	{"weightKilograms", models.CategoryPhysicalDetails, func(p *models.Prisoner) any { return p.WeightKilograms }},
	{"hairColour", models.CategoryPhysicalDetails, func(p *models.Prisoner) any { return p.HairColour }},
	{"rightEyeColour", models.CategoryPhysicalDetails, func(p *models.Prisoner) any { return p.RightEyeColour }},
	{"build", models.CategoryPhysicalDetails, func(p *models.Prisoner) any { return p.Build }},
}

// orderedFields is fields in reporting order: taxonomy order, then property
// name within a category.
var orderedFields = func() []field {
	rank := make(map[models.Category]int, len(models.Categories))
	for i, c := range models.Categories {
		rank[c] = i
	}
	out := append([]field(nil), fields...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].category != out[j].category {
			return rank[out[i].category] < rank[out[j].category]
		}
		return out[i].property < out[j].property
	})
	return out
}()

var equalOpts = []cmp.Option{cmpopts.EquateEmpty()}

// Differences compares two documents field by field in reporting order. A
// nil previous compares against an empty document.
func Differences(previous, current *models.Prisoner) []models.Difference {
	if previous == nil {
		previous = &models.Prisoner{}
	}
	if current == nil {
		current = &models.Prisoner{}
	}
	var out []models.Difference
	for _, f := range orderedFields {
		oldValue, newValue := f.value(previous), f.value(current)
		if cmp.Equal(oldValue, newValue, equalOpts...) {
			continue
		}
		out = append(out, models.Difference{
			Property: f.property,
			Category: f.category,
			OldValue: oldValue,
			NewValue: newValue,
		})
	}
	return out
}

// InCategory keeps only differences of category c.
func InCategory(diffs []models.Difference, c models.Category) []models.Difference {
	var out []models.Difference
	for _, d := range diffs {
		if d.Category == c {
			out = append(out, d)
		}
	}
	return out
}

// GroupByCategory splits diffs into per-category change sets in taxonomy
// order, omitting empty categories.
func GroupByCategory(diffs []models.Difference) []models.CategoryChanges {
	byCategory := make(map[models.Category][]models.Difference)
	for _, d := range diffs {
		byCategory[d.Category] = append(byCategory[d.Category], d)
	}
	var out []models.CategoryChanges
	for _, c := range models.Categories {
		if ds := byCategory[c]; len(ds) > 0 {
			out = append(out, models.CategoryChanges{Category: c, Differences: ds})
		}
	}
	return out
}
