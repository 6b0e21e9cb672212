package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apptrade "github.com/b2bmarket/backend/internal/application/trade"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultPartyTTL = 5 * time.Minute

type partyRecord struct {
	DisplayName    string `json:"display_name"`
	CreditEligible bool   `json:"credit_eligible"`
}

// CachedPartyDirectory decorates a PartyDirectory with a Redis read-through
// cache. The directory is a remote service and its answers change rarely, so
// lookups made on every quote and order are served from cache. Cache failures
// degrade to the inner directory, never to an error.
type CachedPartyDirectory struct {
	inner      apptrade.PartyDirectory
	client     *redis.Client
	ownsClient bool
	ttl        time.Duration
	logger     *zap.Logger
}

// NewCachedPartyDirectory creates a cache in front of the given directory
// using its own Redis connection.
func NewCachedPartyDirectory(cfg config.RedisConfig, inner apptrade.PartyDirectory, logger *zap.Logger) *CachedPartyDirectory {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	d := NewCachedPartyDirectoryWithClient(client, inner, logger)
	d.ownsClient = true
	if cfg.CacheTTL > 0 {
		d.ttl = cfg.CacheTTL
	}
	return d
}

// NewCachedPartyDirectoryWithClient creates a cache using an existing Redis
// client. The caller retains ownership of the client.
func NewCachedPartyDirectoryWithClient(client *redis.Client, inner apptrade.PartyDirectory, logger *zap.Logger) *CachedPartyDirectory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedPartyDirectory{
		inner:  inner,
		client: client,
		ttl:    defaultPartyTTL,
		logger: logger,
	}
}

func partyCacheKey(id shared.PartyID) string {
	return fmt.Sprintf("party:%s", id)
}

// DisplayName returns the party's legal name for document snapshots
func (d *CachedPartyDirectory) DisplayName(ctx context.Context, id shared.PartyID) (string, error) {
	if record, ok := d.get(ctx, id); ok {
		return record.DisplayName, nil
	}

	record, err := d.load(ctx, id)
	if err != nil {
		return "", err
	}
	return record.DisplayName, nil
}

// IsCreditEligible reports whether the buyer may place credit orders
func (d *CachedPartyDirectory) IsCreditEligible(ctx context.Context, id shared.PartyID) (bool, error) {
	if record, ok := d.get(ctx, id); ok {
		return record.CreditEligible, nil
	}

	record, err := d.load(ctx, id)
	if err != nil {
		return false, err
	}
	return record.CreditEligible, nil
}

func (d *CachedPartyDirectory) get(ctx context.Context, id shared.PartyID) (partyRecord, bool) {
	data, err := d.client.Get(ctx, partyCacheKey(id)).Bytes()
	if err == redis.Nil {
		return partyRecord{}, false
	}
	if err != nil {
		d.logger.Warn("party cache read failed",
			zap.String("party_id", string(id)),
			zap.Error(err))
		return partyRecord{}, false
	}

	var record partyRecord
	if err := json.Unmarshal(data, &record); err != nil {
		d.logger.Warn("corrupt party cache entry, dropping",
			zap.String("party_id", string(id)),
			zap.Error(err))
		_ = d.client.Del(ctx, partyCacheKey(id))
		return partyRecord{}, false
	}
	return record, true
}

// load fetches both answers from the inner directory and caches them as one
// record, so the usual name-then-credit lookup pair costs a single fetch.
func (d *CachedPartyDirectory) load(ctx context.Context, id shared.PartyID) (partyRecord, error) {
	name, err := d.inner.DisplayName(ctx, id)
	if err != nil {
		return partyRecord{}, err
	}
	eligible, err := d.inner.IsCreditEligible(ctx, id)
	if err != nil {
		return partyRecord{}, err
	}

	record := partyRecord{DisplayName: name, CreditEligible: eligible}
	data, err := json.Marshal(record)
	if err != nil {
		return record, nil
	}
	if err := d.client.Set(ctx, partyCacheKey(id), data, d.ttl).Err(); err != nil {
		d.logger.Warn("party cache write failed",
			zap.String("party_id", string(id)),
			zap.Error(err))
	}
	return record, nil
}

// Invalidate drops the cached record for a party
func (d *CachedPartyDirectory) Invalidate(ctx context.Context, id shared.PartyID) error {
	return d.client.Del(ctx, partyCacheKey(id)).Err()
}

// Close releases the Redis connection if this cache created it
func (d *CachedPartyDirectory) Close() error {
	if d.ownsClient {
		return d.client.Close()
	}
	return nil
}

var _ apptrade.PartyDirectory = (*CachedPartyDirectory)(nil)
