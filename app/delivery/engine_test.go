package delivery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"newsdigest/app/database"
)

// MockRecipientRepository implements a simple mock for testing
type MockRecipientRepository struct {
	recipients []database.Recipient
	err        error
}

func (m *MockRecipientRepository) UpsertRecipient(ctx context.Context, externalID, displayName string) (*database.Recipient, error) {
	return nil, nil
}

func (m *MockRecipientRepository) UpdateRecipientSettings(ctx context.Context, recipientID int64, settings database.RecipientSettings) error {
	return nil
}

func (m *MockRecipientRepository) SetRecipientActive(ctx context.Context, recipientID int64, active bool) error {
	return nil
}

func (m *MockRecipientRepository) ListRecipients(ctx context.Context) ([]database.Recipient, error) {
	return m.recipients, m.err
}

func (m *MockRecipientRepository) ListActiveRecipients(ctx context.Context) ([]database.Recipient, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.recipients, nil
}

var _ database.RecipientRepository = (*MockRecipientRepository)(nil)

// MockItemRepository serves a fixed item list per recipient
type MockItemRepository struct {
	itemsByRecipient map[int64][]database.Item
	err              error
}

func (m *MockItemRepository) InsertItemIfNew(ctx context.Context, item database.Item) (*database.Item, error) {
	return nil, nil
}

func (m *MockItemRepository) MarkItemEnriched(ctx context.Context, itemID int64, summary string, keywords []string) error {
	return nil
}

func (m *MockItemRepository) ListUndeliveredEligibleItems(ctx context.Context, recipientID int64, lookback time.Duration, limit int) ([]database.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.itemsByRecipient[recipientID], nil
}

func (m *MockItemRepository) ListUnprocessedItems(ctx context.Context, limit int) ([]database.Item, error) {
	return nil, nil
}

func (m *MockItemRepository) ListRecentItems(ctx context.Context, limit int) ([]database.Item, error) {
	return nil, nil
}

var _ database.ItemRepository = (*MockItemRepository)(nil)

// MockDeliveryRepository records ledger writes in memory
type MockDeliveryRepository struct {
	mu      sync.Mutex
	records []database.DeliveryRecord
}

func (m *MockDeliveryRepository) RecordDelivery(ctx context.Context, recipientID, itemID int64, status, errorDetail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.RecipientID == recipientID && r.ItemID == itemID {
			return database.ErrDuplicateDelivery
		}
	}
	m.records = append(m.records, database.DeliveryRecord{
		RecipientID: recipientID,
		ItemID:      itemID,
		Status:      status,
		Error:       errorDetail,
	})
	return nil
}

func (m *MockDeliveryRepository) ListRecentDeliveries(ctx context.Context, limit int) ([]database.DeliveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]database.DeliveryRecord(nil), m.records...), nil
}

var _ database.DeliveryRepository = (*MockDeliveryRepository)(nil)

// MockTransport fails for external IDs listed in failFor
type MockTransport struct {
	mu      sync.Mutex
	sent    map[string][]string
	failFor map[string]bool
}

func NewMockTransport() *MockTransport {
	return &MockTransport{
		sent:    make(map[string][]string),
		failFor: make(map[string]bool),
	}
}

func (m *MockTransport) SendBatch(ctx context.Context, externalID string, messages []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[externalID] {
		return fmt.Errorf("transport unavailable for %s", externalID)
	}
	m.sent[externalID] = append(m.sent[externalID], messages...)
	return nil
}

func testRecipient(id int64, externalID string) database.Recipient {
	return database.Recipient{
		ID:           id,
		ExternalID:   externalID,
		SummaryLevel: "standard",
		DeliveryTime: "09:00",
		Timezone:     "UTC",
		Active:       true,
	}
}

func testItem(id int64, title string) database.Item {
	summary := "A short summary."
	return database.Item{
		ID:          id,
		Title:       title,
		URL:         fmt.Sprintf("https://example.com/%d", id),
		FeedName:    "Test Feed",
		Summary:     &summary,
		Keywords:    []string{"one", "two"},
		PublishedAt: time.Now().Add(-time.Hour),
		Processed:   true,
	}
}

// recipientInWindow pins the preference to the current UTC time so the
// window check always passes.
func recipientInWindow(id int64, externalID string) database.Recipient {
	r := testRecipient(id, externalID)
	r.DeliveryTime = time.Now().UTC().Format("15:04")
	return r
}

func TestEngineDeliversToEligibleRecipients(t *testing.T) {
	recipients := &MockRecipientRepository{recipients: []database.Recipient{
		recipientInWindow(1, "100"),
	}}
	items := &MockItemRepository{itemsByRecipient: map[int64][]database.Item{
		1: {testItem(10, "First"), testItem(11, "Second")},
	}}
	ledger := &MockDeliveryRepository{}
	transport := NewMockTransport()

	engine := NewEngine(recipients, items, ledger, transport, 24*time.Hour, 5, 2)

	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if report.RecipientsConsidered != 1 {
		t.Errorf("Expected 1 recipient considered, got %d", report.RecipientsConsidered)
	}
	if report.SuccessfulDeliveries != 1 {
		t.Errorf("Expected 1 successful delivery, got %d", report.SuccessfulDeliveries)
	}
	if report.ItemsSent != 2 {
		t.Errorf("Expected 2 items sent, got %d", report.ItemsSent)
	}

	// Header plus one message per item
	if got := len(transport.sent["100"]); got != 3 {
		t.Errorf("Expected 3 messages, got %d", got)
	}

	if len(ledger.records) != 2 {
		t.Fatalf("Expected 2 ledger records, got %d", len(ledger.records))
	}
	for _, r := range ledger.records {
		if r.Status != database.DeliveryStatusSent {
			t.Errorf("Expected status sent, got %s", r.Status)
		}
	}
}

func TestEngineSkipsRecipientsOutsideWindow(t *testing.T) {
	outside := testRecipient(1, "100")
	outside.DeliveryTime = time.Now().UTC().Add(5 * time.Hour).Format("15:04")

	recipients := &MockRecipientRepository{recipients: []database.Recipient{outside}}
	items := &MockItemRepository{itemsByRecipient: map[int64][]database.Item{
		1: {testItem(10, "First")},
	}}
	ledger := &MockDeliveryRepository{}
	transport := NewMockTransport()

	engine := NewEngine(recipients, items, ledger, transport, 24*time.Hour, 5, 2)

	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if report.RecipientsConsidered != 0 {
		t.Errorf("Expected 0 recipients considered, got %d", report.RecipientsConsidered)
	}
	if len(transport.sent) != 0 {
		t.Errorf("Expected no messages, got %d recipients messaged", len(transport.sent))
	}
	if len(ledger.records) != 0 {
		t.Errorf("Expected no ledger records, got %d", len(ledger.records))
	}
}

func TestEngineToleratesPartialFailure(t *testing.T) {
	recipients := &MockRecipientRepository{recipients: []database.Recipient{
		recipientInWindow(1, "100"),
		recipientInWindow(2, "200"),
		recipientInWindow(3, "300"),
	}}
	items := &MockItemRepository{itemsByRecipient: map[int64][]database.Item{
		1: {testItem(10, "First")},
		2: {testItem(11, "Second")},
		3: {testItem(12, "Third")},
	}}
	ledger := &MockDeliveryRepository{}
	transport := NewMockTransport()
	transport.failFor["200"] = true

	engine := NewEngine(recipients, items, ledger, transport, 24*time.Hour, 5, 2)

	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if report.SuccessfulDeliveries != 2 {
		t.Errorf("Expected 2 successful deliveries, got %d", report.SuccessfulDeliveries)
	}
	if report.FailedDeliveries != 1 {
		t.Errorf("Expected 1 failed delivery, got %d", report.FailedDeliveries)
	}

	// The failed attempt still lands in the ledger with its error detail.
	var failedRecord *database.DeliveryRecord
	for i := range ledger.records {
		if ledger.records[i].RecipientID == 2 {
			failedRecord = &ledger.records[i]
		}
	}
	if failedRecord == nil {
		t.Fatal("Expected a ledger record for the failed recipient")
	}
	if failedRecord.Status != database.DeliveryStatusFailed {
		t.Errorf("Expected status failed, got %s", failedRecord.Status)
	}
	if !strings.Contains(failedRecord.Error, "transport unavailable") {
		t.Errorf("Expected error detail in ledger record, got %q", failedRecord.Error)
	}
}

func TestEngineSkipsRecipientsWithNoItems(t *testing.T) {
	recipients := &MockRecipientRepository{recipients: []database.Recipient{
		recipientInWindow(1, "100"),
	}}
	items := &MockItemRepository{itemsByRecipient: map[int64][]database.Item{}}
	ledger := &MockDeliveryRepository{}
	transport := NewMockTransport()

	engine := NewEngine(recipients, items, ledger, transport, 24*time.Hour, 5, 2)

	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if report.SuccessfulDeliveries != 0 {
		t.Errorf("Expected 0 successful deliveries, got %d", report.SuccessfulDeliveries)
	}
	if len(transport.sent) != 0 {
		t.Error("Expected no messages for a recipient with no eligible items")
	}
}
