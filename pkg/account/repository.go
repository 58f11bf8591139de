package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// Upsert stores the account keyed by Google id. An empty refresh token
	// keeps the one already stored.
	Upsert(ctx context.Context, acc Account) (Account, error)
	FindByUid(ctx context.Context, uid string) (Account, error)
	UpdateTokens(ctx context.Context, uid string, accessToken, refreshToken string, expiry time.Time) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Upsert(ctx context.Context, acc Account) (Account, error) {
	query := `INSERT INTO accounts (uid, google_id, email, name, access_token, refresh_token, expiry)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (google_id) DO UPDATE SET
					email = EXCLUDED.email,
					name = EXCLUDED.name,
					access_token = EXCLUDED.access_token,
					refresh_token = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), accounts.refresh_token),
					expiry = EXCLUDED.expiry,
					updated_at = NOW()
				RETURNING uid, refresh_token`

	err := r.db.QueryRow(ctx, query,
		uuid.NewString(),
		acc.GoogleId,
		acc.Email,
		acc.Name,
		acc.AccessToken,
		acc.RefreshToken,
		nullableTime(acc.Expiry),
	).Scan(&acc.Uid, &acc.RefreshToken)
	if err != nil {
		log.Errorf("failed to upsert account: %v", err)
		return Account{}, err
	}
	return acc, nil
}

func (r *RepositoryImpl) FindByUid(ctx context.Context, uid string) (Account, error) {
	query := `SELECT uid, google_id, email, name, access_token, refresh_token, expiry FROM accounts WHERE uid = $1`

	var acc Account
	var expiry *time.Time
	err := r.db.QueryRow(ctx, query, uid).Scan(
		&acc.Uid,
		&acc.GoogleId,
		&acc.Email,
		&acc.Name,
		&acc.AccessToken,
		&acc.RefreshToken,
		&expiry,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		log.Debugf("account %s not found", uid)
		return Account{}, ErrNotFound
	} else if err != nil {
		log.Errorf("failed to get account: %v", err)
		return Account{}, err
	}
	if expiry != nil {
		acc.Expiry = *expiry
	}
	return acc, nil
}

func (r *RepositoryImpl) UpdateTokens(ctx context.Context, uid string, accessToken, refreshToken string, expiry time.Time) error {
	query := `UPDATE accounts SET access_token = $1,
				refresh_token = COALESCE(NULLIF($2::text, ''), refresh_token),
				expiry = $3, updated_at = NOW() WHERE uid = $4`
	result, err := r.db.Exec(ctx, query, accessToken, refreshToken, nullableTime(expiry), uid)
	if err != nil {
		return fmt.Errorf("failed to update tokens: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
