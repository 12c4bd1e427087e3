package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"zaimka/internal/models"
)

func (db *DB) CreateCabin(ctx context.Context, cabin *models.Cabin) error {
	query := `INSERT INTO cabins (
				slug, name, description, company_slug, half_day_enabled,
				is_active, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.db.ExecContext(ctx, query,
		cabin.Slug,
		cabin.Name,
		cabin.Description,
		cabin.CompanySlug,
		cabin.HalfDayEnabled,
		cabin.IsActive,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create cabin: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	cabin.ID = id
	cabin.CreatedAt = now
	cabin.UpdatedAt = now
	return nil
}

func (db *DB) GetCabinBySlug(ctx context.Context, slug string) (*models.Cabin, error) {
	query := `SELECT id, slug, name, description, company_slug, half_day_enabled,
	                 is_active, created_at, updated_at
              FROM cabins WHERE slug = ?`
	return db.getCabin(ctx, query, slug)
}

func (db *DB) GetCabinByID(ctx context.Context, id int64) (*models.Cabin, error) {
	query := `SELECT id, slug, name, description, company_slug, half_day_enabled,
	                 is_active, created_at, updated_at
              FROM cabins WHERE id = ?`
	return db.getCabin(ctx, query, id)
}

func (db *DB) getCabin(ctx context.Context, query string, arg any) (*models.Cabin, error) {
	var cabin models.Cabin
	var description sql.NullString
	err := db.db.QueryRowContext(ctx, query, arg).Scan(
		&cabin.ID,
		&cabin.Slug,
		&cabin.Name,
		&description,
		&cabin.CompanySlug,
		&cabin.HalfDayEnabled,
		&cabin.IsActive,
		&cabin.CreatedAt,
		&cabin.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cabin: %w", err)
	}
	cabin.Description = description.String
	return &cabin, nil
}

func (db *DB) UpdateCabin(ctx context.Context, cabin *models.Cabin) error {
	query := `UPDATE cabins SET name = ?, description = ?, half_day_enabled = ?,
	                 is_active = ?, updated_at = ?
              WHERE slug = ?`
	now := time.Now()
	result, err := db.db.ExecContext(ctx, query,
		cabin.Name,
		cabin.Description,
		cabin.HalfDayEnabled,
		cabin.IsActive,
		now,
		cabin.Slug,
	)
	if err != nil {
		return fmt.Errorf("failed to update cabin: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	cabin.UpdatedAt = now
	return nil
}

func (db *DB) ListCabins(ctx context.Context, companySlug string) ([]models.Cabin, error) {
	query := `SELECT id, slug, name, description, company_slug, half_day_enabled,
	                 is_active, created_at, updated_at
              FROM cabins WHERE company_slug = ? ORDER BY name`
	rows, err := db.db.QueryContext(ctx, query, companySlug)
	if err != nil {
		return nil, fmt.Errorf("failed to list cabins: %w", err)
	}
	defer rows.Close()

	var cabins []models.Cabin
	for rows.Next() {
		var cabin models.Cabin
		var description sql.NullString
		if err := rows.Scan(
			&cabin.ID,
			&cabin.Slug,
			&cabin.Name,
			&description,
			&cabin.CompanySlug,
			&cabin.HalfDayEnabled,
			&cabin.IsActive,
			&cabin.CreatedAt,
			&cabin.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cabin: %w", err)
		}
		cabin.Description = description.String
		cabins = append(cabins, cabin)
	}
	return cabins, rows.Err()
}

// SeedCabins inserts cabins from config that are not present yet.
func (db *DB) SeedCabins(ctx context.Context, cabins []models.Cabin) error {
	for i := range cabins {
		cabin := cabins[i]
		_, err := db.GetCabinBySlug(ctx, cabin.Slug)
		if err == nil {
			continue
		}
		if err != ErrNotFound {
			return err
		}
		cabin.IsActive = true
		if err := db.CreateCabin(ctx, &cabin); err != nil {
			return err
		}
	}
	return nil
}
