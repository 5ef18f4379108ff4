package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type deliveryRepository struct {
	db *DB
}

func NewDeliveryRepository(db *DB) DeliveryRepository {
	return &deliveryRepository{db: db}
}

func (r *deliveryRepository) RecordDelivery(ctx context.Context, recipientID, itemID int64, status, errorDetail string) error {
	var detail sql.NullString
	if errorDetail != "" {
		detail = sql.NullString{String: errorDetail, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO deliveries (recipient_id, item_id, delivered_at, status, error)
		VALUES (?, ?, ?, ?, ?)
	`, recipientID, itemID, toMillis(time.Now().UTC()), status, detail)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateDelivery
		}
		return fmt.Errorf("failed to record delivery: %w", err)
	}

	return nil
}

func (r *deliveryRepository) ListRecentDeliveries(ctx context.Context, limit int) ([]DeliveryRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, recipient_id, item_id, delivered_at, status, error
		FROM deliveries
		ORDER BY delivered_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	defer rows.Close()

	var records []DeliveryRecord
	for rows.Next() {
		var (
			record          DeliveryRecord
			deliveredMillis int64
			detail          sql.NullString
		)
		err := rows.Scan(&record.ID, &record.RecipientID, &record.ItemID,
			&deliveredMillis, &record.Status, &detail)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery row: %w", err)
		}
		record.DeliveredAt = fromMillis(deliveredMillis)
		record.Error = detail.String
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating delivery rows: %w", err)
	}

	return records, nil
}
