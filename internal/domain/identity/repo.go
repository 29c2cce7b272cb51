package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository is the persistence boundary for directory accounts.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// ListDoctors returns a page of doctor accounts plus the unpaged total.
	// An empty specialty matches all doctors.
	ListDoctors(ctx context.Context, specialty string, limit, offset int) ([]*User, int, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
