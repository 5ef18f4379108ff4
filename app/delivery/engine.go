package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"newsdigest/app/database"
)

type Transport interface {
	SendBatch(ctx context.Context, externalID string, messages []string) error
}

type Report struct {
	RecipientsConsidered int `json:"recipients_considered"`
	SuccessfulDeliveries int `json:"successful_deliveries"`
	FailedDeliveries     int `json:"failed_deliveries"`
	ItemsSent            int `json:"items_sent"`
}

// Engine runs one delivery pass: for every active recipient whose preferred
// time falls within the current window, collect the eligible items, send
// them, and record the outcome in the delivery ledger. Recipients are
// independent; one failing never blocks the others.
type Engine struct {
	recipients database.RecipientRepository
	items      database.ItemRepository
	deliveries database.DeliveryRepository
	transport  Transport

	lookback    time.Duration
	pageSize    int
	concurrency int
}

func NewEngine(recipients database.RecipientRepository, items database.ItemRepository, deliveries database.DeliveryRepository, transport Transport, lookback time.Duration, pageSize, concurrency int) *Engine {
	return &Engine{
		recipients:  recipients,
		items:       items,
		deliveries:  deliveries,
		transport:   transport,
		lookback:    lookback,
		pageSize:    pageSize,
		concurrency: concurrency,
	}
}

func (e *Engine) Run(ctx context.Context) (Report, error) {
	started := time.Now()

	active, err := e.recipients.ListActiveRecipients(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list active recipients: %w", err)
	}

	var considered, succeeded, failed, itemsSent atomic.Int64

	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for _, recipient := range active {
		if !IsWithinWindow(recipient.DeliveryTime, recipient.Timezone, started) {
			continue
		}
		considered.Add(1)

		g.Go(func() error {
			sent, err := e.deliverTo(ctx, recipient, started)
			if err != nil {
				slog.Error("Delivery failed",
					"recipient", recipient.ExternalID, "error", err)
				failed.Add(1)
				return nil
			}
			if sent > 0 {
				succeeded.Add(1)
				itemsSent.Add(int64(sent))
			}
			return nil
		})
	}

	g.Wait()

	report := Report{
		RecipientsConsidered: int(considered.Load()),
		SuccessfulDeliveries: int(succeeded.Load()),
		FailedDeliveries:     int(failed.Load()),
		ItemsSent:            int(itemsSent.Load()),
	}

	slog.Info("Delivery pass completed",
		"duration", time.Since(started),
		"recipients_considered", report.RecipientsConsidered,
		"successful", report.SuccessfulDeliveries,
		"failed", report.FailedDeliveries,
		"items_sent", report.ItemsSent)

	return report, nil
}

// deliverTo sends the recipient's pending digest and writes one ledger row
// per item. The ledger row is written after the send attempt, so a crash
// between send and record can at worst repeat a digest, never lose one.
func (e *Engine) deliverTo(ctx context.Context, recipient database.Recipient, now time.Time) (int, error) {
	items, err := e.items.ListUndeliveredEligibleItems(ctx, recipient.ID, e.lookback, e.pageSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list eligible items: %w", err)
	}

	if len(items) == 0 {
		return 0, nil
	}

	messages := BuildMessages(recipient, items, now)

	sendErr := e.transport.SendBatch(ctx, recipient.ExternalID, messages)

	status := database.DeliveryStatusSent
	errorDetail := ""
	if sendErr != nil {
		status = database.DeliveryStatusFailed
		errorDetail = sendErr.Error()
	}

	for _, item := range items {
		if err := e.deliveries.RecordDelivery(ctx, recipient.ID, item.ID, status, errorDetail); err != nil {
			if errors.Is(err, database.ErrDuplicateDelivery) {
				// A concurrent pass got there first; the ledger stays
				// single-rowed per pair.
				continue
			}
			slog.Error("Failed to record delivery",
				"recipient", recipient.ExternalID, "item_id", item.ID, "error", err)
		}
	}

	if sendErr != nil {
		return 0, fmt.Errorf("failed to send digest: %w", sendErr)
	}

	slog.Info("Digest delivered",
		"recipient", recipient.ExternalID, "items", len(items), "level", recipient.SummaryLevel)

	return len(items), nil
}
