package persistence

import (
	"context"
	"database/sql"
	"time"

	"vendor-portal/domain/model"
)

type CredentialRepository struct{ db *sql.DB }

func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) UpsertCredential(ctx context.Context, cred *model.StorefrontCredential) error {
	now := time.Now().UTC()
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = now
	}
	cred.UpdatedAt = now
	q := `INSERT INTO storefront_credentials (storefront_id, access_token, expires_at, scopes, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6)
		  ON CONFLICT (storefront_id) DO UPDATE SET
			access_token=EXCLUDED.access_token,
			expires_at=EXCLUDED.expires_at,
			scopes=EXCLUDED.scopes,
			updated_at=EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, cred.StorefrontID, cred.AccessToken, cred.ExpiresAt, cred.Scopes, cred.CreatedAt, cred.UpdatedAt)
	return err
}

func (r *CredentialRepository) GetCredential(ctx context.Context, storefrontID string) (*model.StorefrontCredential, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, storefront_id, access_token, expires_at, scopes, created_at, updated_at FROM storefront_credentials WHERE storefront_id=$1`, storefrontID)
	cred := &model.StorefrontCredential{}
	var exp sql.NullTime
	if err := row.Scan(&cred.ID, &cred.StorefrontID, &cred.AccessToken, &exp, &cred.Scopes, &cred.CreatedAt, &cred.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if exp.Valid {
		cred.ExpiresAt = &exp.Time
	}
	return cred, nil
}
