package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"zaimka/internal/models"
)

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (
				email, name, company_slug, password_hash, is_active,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.db.ExecContext(ctx, query,
		user.Email,
		user.Name,
		user.CompanySlug,
		user.PasswordHash,
		user.IsActive,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, email, name, company_slug, password_hash, is_active,
	                 created_at, updated_at
              FROM users WHERE email = ?`
	return db.queryUser(ctx, query, email)
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, email, name, company_slug, password_hash, is_active,
	                 created_at, updated_at
              FROM users WHERE id = ?`
	return db.queryUser(ctx, query, id)
}

func (db *DB) queryUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := db.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.CompanySlug,
		&user.PasswordHash,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// SeedOwners creates owner accounts from config if they do not exist yet.
func (db *DB) SeedOwners(ctx context.Context, owners []models.User) error {
	for i := range owners {
		owner := owners[i]
		_, err := db.GetUserByEmail(ctx, owner.Email)
		if err == nil {
			continue
		}
		if err != ErrNotFound {
			return err
		}
		owner.IsActive = true
		if err := db.CreateUser(ctx, &owner); err != nil {
			return err
		}
	}
	return nil
}
