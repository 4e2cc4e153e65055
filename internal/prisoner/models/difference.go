package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups document fields for change reporting.
type Category string

const (
	CategoryIdentifiers       Category = "IDENTIFIERS"
	CategoryPersonalDetails   Category = "PERSONAL_DETAILS"
	CategoryAlerts            Category = "ALERTS"
	CategoryStatus            Category = "STATUS"
	CategoryLocation          Category = "LOCATION"
	CategorySentence          Category = "SENTENCE"
	CategoryRestrictedPatient Category = "RESTRICTED_PATIENT"
	CategoryIncentiveLevel    Category = "INCENTIVE_LEVEL"
	CategoryPhysicalDetails   Category = "PHYSICAL_DETAILS"
)

// Categories is the taxonomy in reporting order.
var Categories = []Category{
	CategoryIdentifiers,
	CategoryPersonalDetails,
	CategoryAlerts,
	CategoryStatus,
	CategoryLocation,
	CategorySentence,
	CategoryRestrictedPatient,
	CategoryIncentiveLevel,
	CategoryPhysicalDetails,
}

// Difference is one changed field.
type Difference struct {
	Property string   `json:"property"`
	Category Category `json:"categoryChanged"`
	OldValue any      `json:"oldValue"`
	NewValue any      `json:"newValue"`
}

// CategoryChanges is the set of differences for one category.
type CategoryChanges struct {
	Category    Category     `json:"category"`
	Differences []Difference `json:"differences"`
}

// DifferenceRecord is an audit trail row, kept for a bounded retention
// window.
type DifferenceRecord struct {
	ID             uuid.UUID    `json:"id"`
	PrisonerNumber string       `json:"prisonerNumber"`
	Differences    []Difference `json:"differences"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// Hash entities.
const (
	EntityPrisoner  = "prisoner"
	EntityIncentive = "incentive"
	EntityAlerts    = "alerts"
)
