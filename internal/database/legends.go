package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"zaimka/internal/models"
)

func (db *DB) CreateLegend(ctx context.Context, legend *models.Legend) error {
	query := `INSERT INTO legends (id, company_slug, name, color, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	_, err := db.db.ExecContext(ctx, query,
		legend.ID,
		legend.CompanySlug,
		legend.Name,
		legend.Color,
		legend.IsActive,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create legend: %w", err)
	}
	legend.CreatedAt = now
	legend.UpdatedAt = now
	return nil
}

func (db *DB) GetLegend(ctx context.Context, id string) (*models.Legend, error) {
	query := `SELECT id, company_slug, name, color, is_active, created_at, updated_at
              FROM legends WHERE id = ?`
	var legend models.Legend
	err := db.db.QueryRowContext(ctx, query, id).Scan(
		&legend.ID,
		&legend.CompanySlug,
		&legend.Name,
		&legend.Color,
		&legend.IsActive,
		&legend.CreatedAt,
		&legend.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get legend: %w", err)
	}
	return &legend, nil
}

func (db *DB) UpdateLegend(ctx context.Context, legend *models.Legend) error {
	query := `UPDATE legends SET name = ?, color = ?, is_active = ?, updated_at = ?
              WHERE id = ? AND company_slug = ?`
	now := time.Now()
	result, err := db.db.ExecContext(ctx, query,
		legend.Name,
		legend.Color,
		legend.IsActive,
		now,
		legend.ID,
		legend.CompanySlug,
	)
	if err != nil {
		return fmt.Errorf("failed to update legend: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	legend.UpdatedAt = now
	return nil
}

func (db *DB) DeleteLegend(ctx context.Context, id, companySlug string) error {
	result, err := db.db.ExecContext(ctx,
		`DELETE FROM legends WHERE id = ? AND company_slug = ?`, id, companySlug)
	if err != nil {
		return fmt.Errorf("failed to delete legend: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListLegends returns the company's custom legends, optionally only active
// ones, ordered by name.
func (db *DB) ListLegends(ctx context.Context, companySlug string, activeOnly bool) ([]models.Legend, error) {
	query := `SELECT id, company_slug, name, color, is_active, created_at, updated_at
              FROM legends WHERE company_slug = ?`
	args := []any{companySlug}
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY name`

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list legends: %w", err)
	}
	defer rows.Close()

	var legends []models.Legend
	for rows.Next() {
		var legend models.Legend
		if err := rows.Scan(
			&legend.ID,
			&legend.CompanySlug,
			&legend.Name,
			&legend.Color,
			&legend.IsActive,
			&legend.CreatedAt,
			&legend.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan legend: %w", err)
		}
		legends = append(legends, legend)
	}
	return legends, rows.Err()
}
