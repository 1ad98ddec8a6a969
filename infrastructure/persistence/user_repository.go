package persistence

import (
	"context"
	"database/sql"
	"time"

	"vendor-portal/domain/model"
)

type UserRepository struct{ db *sql.DB }

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetById(ctx context.Context, id int64) (model.User, error) {
	var user model.User
	stmt, err := r.db.PrepareContext(ctx, `SELECT u.id, u.name, u.user_name, u.password, u.role, u.created_at, u.updated_at
	FROM portal_users AS u
	WHERE u.id = $1`)
	if err != nil {
		return user, err
	}
	defer stmt.Close()

	err = stmt.QueryRowContext(ctx, id).Scan(&user.ID, &user.Name, &user.UserName, &user.Password, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

func (r *UserRepository) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	var user model.User
	stmt, err := r.db.PrepareContext(ctx, `SELECT u.id, u.name, u.user_name, u.password, u.role, u.created_at, u.updated_at
	FROM portal_users AS u
	WHERE u.user_name = $1`)
	if err != nil {
		return user, err
	}
	defer stmt.Close()

	err = stmt.QueryRowContext(ctx, userName).Scan(&user.ID, &user.Name, &user.UserName, &user.Password, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = "vendor"
	}
	stmt, err := r.db.PrepareContext(ctx, `INSERT INTO portal_users (name, user_name, password, role, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	return stmt.QueryRowContext(ctx, user.Name, user.UserName, user.Password, user.Role, user.CreatedAt, user.UpdatedAt).Scan(&user.ID)
}
