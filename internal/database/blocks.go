package database

import (
	"context"
	"fmt"
	"time"

	"zaimka/internal/models"
)

// CreateBlock marks a date unavailable with a reason. Re-blocking an already
// blocked date replaces the reason.
func (db *DB) CreateBlock(ctx context.Context, block *models.Block) error {
	query := `INSERT INTO blocks (cabin_id, date, reason, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(cabin_id, date) DO UPDATE SET reason = excluded.reason`
	now := time.Now()
	result, err := db.db.ExecContext(ctx, query,
		block.CabinID,
		block.Date.String(),
		block.Reason,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create block: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	block.ID = id
	block.CreatedAt = now
	return nil
}

// DeleteBlock unblocks a date. Missing blocks are reported as ErrNotFound.
func (db *DB) DeleteBlock(ctx context.Context, cabinID int64, date models.Date) error {
	result, err := db.db.ExecContext(ctx,
		`DELETE FROM blocks WHERE cabin_id = ? AND date = ?`, cabinID, date.String())
	if err != nil {
		return fmt.Errorf("failed to delete block: %w", err)
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

// ListBlocks returns the cabin's blocks in [from, to] inclusive.
func (db *DB) ListBlocks(ctx context.Context, cabinID int64, from, to models.Date) ([]models.Block, error) {
	query := `SELECT id, cabin_id, date, reason, created_at
              FROM blocks WHERE cabin_id = ? AND date >= ? AND date <= ? ORDER BY date`
	rows, err := db.db.QueryContext(ctx, query, cabinID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	defer rows.Close()

	var blocks []models.Block
	for rows.Next() {
		var block models.Block
		var dateStr string
		if err := rows.Scan(&block.ID, &block.CabinID, &dateStr, &block.Reason, &block.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		date, err := models.ParseDate(dateStr)
		if err != nil {
			return nil, err
		}
		block.Date = date
		blocks = append(blocks, block)
	}
	return blocks, rows.Err()
}
