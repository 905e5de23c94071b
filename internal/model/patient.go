package model

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a medical record subject. Rows are soft-deleted only: the
// isDeleted flag is set and the row retained.
type Patient struct {
	Base
	FirstName      string     `json:"first_name" db:"first_name"`
	LastName       string     `json:"last_name" db:"last_name"`
	DateOfBirth    time.Time  `json:"date_of_birth" db:"date_of_birth"`
	Gender         string     `json:"gender" db:"gender"`
	Phone          *string    `json:"phone" db:"phone"`
	Email          *string    `json:"email" db:"email"`
	Address        *string    `json:"address" db:"address"`
	MedicalHistory *string    `json:"medical_history" db:"medical_history"`
	IsDeleted      bool       `json:"is_deleted" db:"is_deleted"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	DeletedBy      *uuid.UUID `json:"deleted_by,omitempty" db:"deleted_by"`
	CreatedBy      uuid.UUID  `json:"created_by" db:"created_by"`
	UpdatedBy      *uuid.UUID `json:"updated_by,omitempty" db:"updated_by"`
}

type CreatePatientRequest struct {
	FirstName      string    `json:"firstName" binding:"required"`
	LastName       string    `json:"lastName" binding:"required"`
	DateOfBirth    time.Time `json:"dateOfBirth" binding:"required"`
	Gender         string    `json:"gender" binding:"required,oneof=male female other"`
	Phone          *string   `json:"phone"`
	Email          *string   `json:"email" binding:"omitempty,email"`
	Address        *string   `json:"address"`
	MedicalHistory *string   `json:"medicalHistory"`
}

type UpdatePatientRequest struct {
	FirstName      *string    `json:"firstName"`
	LastName       *string    `json:"lastName"`
	DateOfBirth    *time.Time `json:"dateOfBirth"`
	Gender         *string    `json:"gender" binding:"omitempty,oneof=male female other"`
	Phone          *string    `json:"phone"`
	Email          *string    `json:"email" binding:"omitempty,email"`
	Address        *string    `json:"address"`
	MedicalHistory *string    `json:"medicalHistory"`
}

// PatientFilters represents patient list parameters.
type PatientFilters struct {
	SearchTerm string
	Gender     string
	Limit      int
	Offset     int
}

// PatientStats is the /stats/overview payload.
type PatientStats struct {
	Total        int            `json:"total"`
	ByGender     map[string]int `json:"by_gender"`
	RecentCount  int            `json:"recent_count"`
	DeletedCount int            `json:"deleted_count"`
}
