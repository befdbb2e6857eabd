package repository

import (
	"context"
	"errors"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// GetActiveAdmin returns the user when it is an active admin or super admin.
func (r *AdminRepository) GetActiveAdmin(ctx context.Context, userID string) (*domain.AdminUser, error) {
	var u domain.AdminUser
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, user_type FROM user_profiles
		 WHERE user_id = $1 AND user_type IN ('admin', 'super_admin') AND is_active = TRUE`,
		userID,
	).Scan(&u.UserID, &u.UserType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAdminNotFound
		}
		return nil, err
	}
	return &u, nil
}

// TouchLogin records the time of the admin's latest authenticated request.
func (r *AdminRepository) TouchLogin(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `UPDATE user_profiles SET last_login = NOW() WHERE user_id = $1`, userID)
	return err
}
