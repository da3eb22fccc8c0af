package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/evolabz/wob-crawler/internal/database"
	"github.com/evolabz/wob-crawler/internal/models"
)

// EventType represents the type of event.
type EventType string

const (
	// EventTypeBookIngested is published when a newly crawled book is accepted.
	EventTypeBookIngested EventType = "BOOK_INGESTED"
)

// BookIngestedPayload is the stream payload for BOOK_INGESTED events.
// Book fields ride along as the flat mapping used at the persistence
// boundary, so consumers see explicit nulls rather than missing keys.
type BookIngestedPayload struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Timestamp time.Time      `json:"timestamp"`
	SKU       string         `json:"sku"`
	BookID    int64          `json:"book_id"`
	Fields    map[string]any `json:"fields"`
	Source    string         `json:"source"`
}

// TxRunner executes a function inside a database transaction.
// Implemented by *database.DB.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(pgx.Tx) error) error
}

// OutboxWriter inserts events into the transactional outbox.
type OutboxWriter interface {
	InsertWithTx(ctx context.Context, tx pgx.Tx, event *database.OutboxEvent) error
}

// Publisher writes events through the transactional outbox.
type Publisher struct {
	db     TxRunner
	outbox OutboxWriter
	stream string
	logger *slog.Logger
}

// NewPublisher builds a publisher targeting the given Redis stream. An
// empty stream defers to the outbox repository's default.
func NewPublisher(db *database.DB, stream string, logger *slog.Logger) *Publisher {
	return &Publisher{
		db:     db,
		outbox: database.NewOutboxRepository(db),
		stream: stream,
		logger: logger.With("component", "event_publisher"),
	}
}

// PublishBookIngested records a BOOK_INGESTED event for a freshly
// accepted book. The relay delivers it to the Redis stream later.
func (p *Publisher) PublishBookIngested(ctx context.Context, bookID int64, book *models.Book) error {
	eventID := uuid.New()

	payload := BookIngestedPayload{
		EventID:   eventID.String(),
		EventType: string(EventTypeBookIngested),
		Timestamp: time.Now(),
		SKU:       book.SKU,
		BookID:    bookID,
		Fields:    book.Fields(),
		Source:    "crawler",
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := &database.OutboxEvent{
		ID:            eventID,
		AggregateType: "book",
		AggregateID:   book.SKU,
		EventType:     string(EventTypeBookIngested),
		Payload:       payloadJSON,
		TargetStream:  p.stream,
	}

	err = p.db.WithTx(ctx, func(tx pgx.Tx) error {
		return p.outbox.InsertWithTx(ctx, tx, event)
	})
	if err != nil {
		return fmt.Errorf("failed to publish book ingested event: %w", err)
	}

	p.logger.Debug("published event",
		"event_id", eventID,
		"event_type", EventTypeBookIngested,
		"sku", book.SKU)

	return nil
}
