package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/granada/granada-os/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no profile exists for the user.
var ErrNotFound = errors.New("profile not found")

// Store reads user profiles for the matching engine.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, userID uuid.UUID) (models.UserProfile, error) {
	var p models.UserProfile
	err := s.pool.QueryRow(ctx, `
		SELECT id, full_name, organization_name, organization_type, country, sector, interests
		FROM users WHERE id = $1
	`, userID).Scan(
		&p.UserID, &p.FullName, &p.OrganizationName, &p.OrganizationType,
		&p.Country, &p.Sector, &p.Interests,
	)
	if err == pgx.ErrNoRows {
		return models.UserProfile{}, ErrNotFound
	}
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// Update stores the profile fields a user can edit during onboarding.
func (s *Store) Update(ctx context.Context, p models.UserProfile) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET full_name = $2, organization_name = $3, organization_type = $4,
			country = $5, sector = $6, interests = $7
		WHERE id = $1
	`, p.UserID, p.FullName, p.OrganizationName, p.OrganizationType,
		p.Country, p.Sector, p.Interests)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
