package model

import (
	"time"

	"github.com/google/uuid"
)

// Severity is the closed set of symptom severities.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}

// Symptom is a single recorded symptom for a patient.
type Symptom struct {
	Base
	PatientID  uuid.UUID `json:"patient_id" db:"patient_id"`
	Name       string    `json:"name" db:"name"`
	Severity   Severity  `json:"severity" db:"severity"`
	Duration   string    `json:"duration" db:"duration"`
	Notes      *string   `json:"notes" db:"notes"`
	RecordedBy uuid.UUID `json:"recorded_by" db:"recorded_by"`
}

// SymptomSession groups one intake visit. Individual symptoms are not
// foreign-keyed to the session; a session insert can fail independently of
// the symptom inserts.
type SymptomSession struct {
	ID         uuid.UUID `json:"id" db:"id"`
	PatientID  uuid.UUID `json:"patient_id" db:"patient_id"`
	Notes      *string   `json:"notes" db:"notes"`
	RecordedBy uuid.UUID `json:"recorded_by" db:"recorded_by"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}

type SymptomInput struct {
	Name     string   `json:"name" binding:"required"`
	Severity Severity `json:"severity" binding:"required,oneof=mild moderate severe"`
	Duration string   `json:"duration" binding:"required"`
	Notes    *string  `json:"notes"`
}

type CreateSymptomsRequest struct {
	PatientID uuid.UUID      `json:"patientId" binding:"required"`
	Symptoms  []SymptomInput `json:"symptoms" binding:"required,min=1,dive"`
	Notes     *string        `json:"notes"`
}

type UpdateSymptomRequest struct {
	Name     *string   `json:"name"`
	Severity *Severity `json:"severity" binding:"omitempty,oneof=mild moderate severe"`
	Duration *string   `json:"duration"`
	Notes    *string   `json:"notes"`
}

// SymptomFilters represents symptom list parameters.
type SymptomFilters struct {
	PatientID  *uuid.UUID
	Severity   Severity
	SearchTerm string
	Limit      int
	Offset     int
}

// SymptomStats is the /stats/overview payload.
type SymptomStats struct {
	Total      int            `json:"total"`
	BySeverity map[string]int `json:"by_severity"`
	TopNames   []NameCount    `json:"top_names"`
}

type NameCount struct {
	Name  string `json:"name" db:"name"`
	Count int    `json:"count" db:"count"`
}
