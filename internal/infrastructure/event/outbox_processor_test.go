package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/b2bmarket/backend/internal/domain/quoting"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryOutboxRepository struct {
	entries map[uuid.UUID]*shared.OutboxEntry
}

func newMemoryOutboxRepository() *memoryOutboxRepository {
	return &memoryOutboxRepository{entries: make(map[uuid.UUID]*shared.OutboxEntry)}
}

func (r *memoryOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return nil
}

func (r *memoryOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	var out []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusPending && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryOutboxRepository) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	var out []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusFailed && e.NextRetryAt != nil && !e.NextRetryAt.After(before) && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryOutboxRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	var out []*shared.OutboxEntry
	for _, id := range ids {
		e, ok := r.entries[id]
		if !ok {
			continue
		}
		if err := e.MarkProcessing(); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *memoryOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	r.entries[entry.ID] = entry
	return nil
}

func (r *memoryOutboxRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	var deleted int64
	for id, e := range r.entries {
		if e.Status == shared.OutboxStatusSent && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			delete(r.entries, id)
			deleted++
		}
	}
	return deleted, nil
}

func seedOutboxEntry(t *testing.T, repo *memoryOutboxRepository, serializer *EventSerializer) *shared.OutboxEntry {
	t.Helper()
	event := testQuoteEvent(t)
	payload, err := serializer.Serialize(event)
	require.NoError(t, err)

	entry := shared.NewOutboxEntry(event, payload)
	require.NoError(t, repo.Save(context.Background(), entry))
	return entry
}

func TestProcessBatchDeliversPendingEntries(t *testing.T) {
	repo := newMemoryOutboxRepository()
	serializer := NewEventSerializer()
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{quoting.EventTypeQuoteCreated}}
	bus.Subscribe(handler)

	entry := seedOutboxEntry(t, repo, serializer)

	processor := NewOutboxProcessor(repo, bus, serializer, DefaultOutboxProcessorConfig(), zap.NewNop())
	processor.ProcessBatch(context.Background())

	require.Len(t, handler.received, 1)
	assert.Equal(t, shared.OutboxStatusSent, repo.entries[entry.ID].Status)
	assert.NotNil(t, repo.entries[entry.ID].ProcessedAt)
}

type failingPublisher struct {
	err   error
	calls int
}

func (p *failingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.calls++
	return p.err
}

func TestProcessBatchSchedulesRetryOnPublishFailure(t *testing.T) {
	repo := newMemoryOutboxRepository()
	serializer := NewEventSerializer()
	publisher := &failingPublisher{err: errors.New("downstream unavailable")}

	entry := seedOutboxEntry(t, repo, serializer)

	processor := NewOutboxProcessor(repo, publisher, serializer, DefaultOutboxProcessorConfig(), zap.NewNop())
	processor.ProcessBatch(context.Background())

	stored := repo.entries[entry.ID]
	assert.Equal(t, shared.OutboxStatusFailed, stored.Status)
	assert.Equal(t, 1, stored.RetryCount)
	assert.Equal(t, "downstream unavailable", stored.LastError)
	require.NotNil(t, stored.NextRetryAt)
	assert.True(t, stored.NextRetryAt.After(time.Now().Add(-time.Second)))
}

func TestProcessBatchMovesEntryToDeadAfterMaxRetries(t *testing.T) {
	repo := newMemoryOutboxRepository()
	serializer := NewEventSerializer()
	publisher := &failingPublisher{err: errors.New("still broken")}

	entry := seedOutboxEntry(t, repo, serializer)
	entry.RetryCount = shared.DefaultMaxRetries - 1
	entry.Status = shared.OutboxStatusFailed
	past := time.Now().Add(-time.Minute)
	entry.NextRetryAt = &past

	processor := NewOutboxProcessor(repo, publisher, serializer, DefaultOutboxProcessorConfig(), zap.NewNop())
	processor.ProcessBatch(context.Background())

	stored := repo.entries[entry.ID]
	assert.Equal(t, shared.OutboxStatusDead, stored.Status)
	assert.Equal(t, shared.DefaultMaxRetries, stored.RetryCount)
}

func TestProcessBatchFailsEntryWithUnknownEventType(t *testing.T) {
	repo := newMemoryOutboxRepository()
	serializer := NewEventSerializer()
	bus := NewInMemoryEventBus(zap.NewNop())

	entry := seedOutboxEntry(t, repo, serializer)
	entry.EventType = "quoting.quote.vaporized"

	processor := NewOutboxProcessor(repo, bus, serializer, DefaultOutboxProcessorConfig(), zap.NewNop())
	processor.ProcessBatch(context.Background())

	stored := repo.entries[entry.ID]
	assert.Equal(t, shared.OutboxStatusFailed, stored.Status)
	assert.Contains(t, stored.LastError, "unknown event type")
}

func TestProcessorStartAndStop(t *testing.T) {
	repo := newMemoryOutboxRepository()
	serializer := NewEventSerializer()
	bus := NewInMemoryEventBus(zap.NewNop())

	processor := NewOutboxProcessor(repo, bus, serializer, DefaultOutboxProcessorConfig(), zap.NewNop())
	require.NoError(t, processor.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, processor.Stop(ctx))
}
