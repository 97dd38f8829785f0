package repository

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-checkout/app/entity"
)

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*entity.Profile, error) {
	profile := &entity.Profile{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, role, created_at
		FROM profiles
		WHERE id = ?
	`, id).Scan(&profile.ID, &profile.Email, &profile.Role, &profile.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}
