package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, display_name, avatar_url
		FROM users
		WHERE id = $1
	`, id)

	var p domain.Profile
	if err := row.Scan(&p.ID, &p.Name, &p.Avatar); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("get profile", err)
	}
	return &p, nil
}
