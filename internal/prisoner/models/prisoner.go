package models

import "time"

// Prisoner is the search document. Source-of-record fields are overwritten on
// every synchronisation; enrichment sub-objects come from independent
// sources and are carried over from the previous document when their source
// is unavailable.
type Prisoner struct {
	// Identifiers
	PrisonerNumber string `json:"prisonerNumber"`
	PNCNumber      string `json:"pncNumber,omitempty"`
	CRONumber      string `json:"croNumber,omitempty"`
	BookingID      string `json:"bookingId,omitempty"`
	BookNumber     string `json:"bookNumber,omitempty"`

	// Personal details
	FirstName     string `json:"firstName,omitempty"`
	MiddleNames   string `json:"middleNames,omitempty"`
	LastName      string `json:"lastName,omitempty"`
	DateOfBirth   string `json:"dateOfBirth,omitempty"`
	Gender        string `json:"gender,omitempty"`
	Ethnicity     string `json:"ethnicity,omitempty"`
	Nationality   string `json:"nationality,omitempty"`
	Religion      string `json:"religion,omitempty"`
	MaritalStatus string `json:"maritalStatus,omitempty"`

	// Status
	Status                 string `json:"status,omitempty"`
	LastMovementTypeCode   string `json:"lastMovementTypeCode,omitempty"`
	LastMovementReasonCode string `json:"lastMovementReasonCode,omitempty"`
	InOutStatus            string `json:"inOutStatus,omitempty"`
	LegalStatus            string `json:"legalStatus,omitempty"`

	// Location
	PrisonID     string `json:"prisonId,omitempty"`
	PrisonName   string `json:"prisonName,omitempty"`
	CellLocation string `json:"cellLocation,omitempty"`
	Category     string `json:"category,omitempty"`

	// Sentence
	SentenceStartDate    string `json:"sentenceStartDate,omitempty"`
	ReleaseDate          string `json:"releaseDate,omitempty"`
	ConfirmedReleaseDate string `json:"confirmedReleaseDate,omitempty"`
	MostSeriousOffence   string `json:"mostSeriousOffence,omitempty"`
	Recall               *bool  `json:"recall,omitempty"`
	Indeterminate        *bool  `json:"indeterminateSentence,omitempty"`

	// Physical details
	HeightCentimetres *int   `json:"heightCentimetres,omitempty"`
	WeightKilograms   *int   `json:"weightKilograms,omitempty"`
	HairColour        string `json:"hairColour,omitempty"`
	RightEyeColour    string `json:"rightEyeColour,omitempty"`
	Build             string `json:"build,omitempty"`

	// Enrichments
	RestrictedPatient             bool              `json:"restrictedPatient"`
	SupportingPrisonID            string            `json:"supportingPrisonId,omitempty"`
	DischargedHospitalID          string            `json:"dischargedHospitalId,omitempty"`
	DischargedHospitalDescription string            `json:"dischargedHospitalDescription,omitempty"`
	DischargeDate                 string            `json:"dischargeDate,omitempty"`
	CurrentIncentive              *CurrentIncentive `json:"currentIncentive,omitempty"`
	Alerts                        []PrisonerAlert   `json:"alerts,omitempty"`
	ComplexityOfNeedLevel         string            `json:"complexityOfNeedLevel,omitempty"`
}

// IsOutside reports whether the record's current location is outside a
// prison, which is when a restricted patient lookup applies.
func (p *Prisoner) IsOutside() bool {
	return p.LastMovementTypeCode == "REL" || p.InOutStatus == "OUT"
}

// CurrentIncentive is the incentive level enrichment.
type CurrentIncentive struct {
	Level          IncentiveLevel `json:"level"`
	DateTime       time.Time      `json:"dateTime"`
	NextReviewDate string         `json:"nextReviewDate,omitempty"`
}

type IncentiveLevel struct {
	Code        string `json:"code,omitempty"`
	Description string `json:"description"`
}

type PrisonerAlert struct {
	AlertType string `json:"alertType"`
	AlertCode string `json:"alertCode"`
	Active    bool   `json:"active"`
	Expired   bool   `json:"expired"`
}

// RestrictedPatient is the restricted patient enrichment for a record
// located outside a prison.
type RestrictedPatient struct {
	SupportingPrisonID            string `json:"supportingPrisonId"`
	DischargedHospitalID          string `json:"dischargedHospitalId"`
	DischargedHospitalDescription string `json:"dischargedHospitalDescription"`
	DischargeDate                 string `json:"dischargeDate"`
}
