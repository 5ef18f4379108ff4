package database

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type recipientRepository struct {
	db *DB
}

func NewRecipientRepository(db *DB) RecipientRepository {
	return &recipientRepository{db: db}
}

func (r *recipientRepository) UpsertRecipient(ctx context.Context, externalID, displayName string) (*Recipient, error) {
	now := toMillis(time.Now().UTC())

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO recipients (external_id, display_name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET active = 1, updated_at = excluded.updated_at
		RETURNING id, external_id, display_name, summary_level, delivery_time, timezone,
		          active, created_at, updated_at
	`, externalID, displayName, now, now)

	recipient, err := scanRecipient(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert recipient: %w", err)
	}

	return recipient, nil
}

func (r *recipientRepository) UpdateRecipientSettings(ctx context.Context, recipientID int64, settings RecipientSettings) error {
	fields := []string{}
	args := []any{}

	if settings.DisplayName != nil {
		fields = append(fields, "display_name = ?")
		args = append(args, *settings.DisplayName)
	}
	if settings.SummaryLevel != nil {
		fields = append(fields, "summary_level = ?")
		args = append(args, *settings.SummaryLevel)
	}
	if settings.DeliveryTime != nil {
		fields = append(fields, "delivery_time = ?")
		args = append(args, *settings.DeliveryTime)
	}
	if settings.Timezone != nil {
		fields = append(fields, "timezone = ?")
		args = append(args, *settings.Timezone)
	}

	if len(fields) == 0 {
		return nil
	}

	fields = append(fields, "updated_at = ?")
	args = append(args, toMillis(time.Now().UTC()), recipientID)

	res, err := r.db.ExecContext(ctx,
		`UPDATE recipients SET `+strings.Join(fields, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update recipient settings: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// SetRecipientActive soft-deletes (or restores) a recipient. Rows are never
// hard-deleted because the delivery ledger keeps references to them.
func (r *recipientRepository) SetRecipientActive(ctx context.Context, recipientID int64, active bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recipients SET active = ?, updated_at = ? WHERE id = ?
	`, active, toMillis(time.Now().UTC()), recipientID)
	if err != nil {
		return fmt.Errorf("failed to set recipient active status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *recipientRepository) ListRecipients(ctx context.Context) ([]Recipient, error) {
	return r.listRecipients(ctx, recipientSelect+` ORDER BY id`)
}

func (r *recipientRepository) ListActiveRecipients(ctx context.Context) ([]Recipient, error) {
	return r.listRecipients(ctx, recipientSelect+` WHERE active = 1 ORDER BY id`)
}

func (r *recipientRepository) listRecipients(ctx context.Context, query string) ([]Recipient, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	defer rows.Close()

	var recipients []Recipient
	for rows.Next() {
		recipient, err := scanRecipient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipient row: %w", err)
		}
		recipients = append(recipients, *recipient)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipient rows: %w", err)
	}

	return recipients, nil
}

const recipientSelect = `
	SELECT id, external_id, display_name, summary_level, delivery_time, timezone,
	       active, created_at, updated_at
	FROM recipients`

func scanRecipient(row rowScanner) (*Recipient, error) {
	var (
		recipient     Recipient
		createdMillis int64
		updatedMillis int64
	)

	err := row.Scan(&recipient.ID, &recipient.ExternalID, &recipient.DisplayName,
		&recipient.SummaryLevel, &recipient.DeliveryTime, &recipient.Timezone,
		&recipient.Active, &createdMillis, &updatedMillis)
	if err != nil {
		return nil, err
	}

	recipient.CreatedAt = fromMillis(createdMillis)
	recipient.UpdatedAt = fromMillis(updatedMillis)

	return &recipient, nil
}
