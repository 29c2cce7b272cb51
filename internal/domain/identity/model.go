package identity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role distinguishes the two kinds of account the directory holds.
type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
)

func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RolePatient, RoleDoctor:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// User is a directory account. Doctor profile fields are nil for patients.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         Role      `db:"role" json:"role"`
	Specialty    *string   `db:"specialty" json:"specialty,omitempty"`
	Bio          *string   `db:"bio" json:"bio,omitempty"`
	Experience   *int      `db:"experience_years" json:"experience_years,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
