// Package notify tells downstream consumers that a client's ledger snapshot changed.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SscSPs/recon_workbench/internal/core/domain"
	portssvc "github.com/SscSPs/recon_workbench/internal/core/ports/services"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel ledger change events are published on.
const DefaultChannel = "ledger.changed"

const versionKeyPrefix = "ledger:version:"

// RedisNotifier bumps a per-client ledger version key and publishes the event in one
// MULTI/EXEC round trip. Cache readers compare the version key against what they built from.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

var _ portssvc.LedgerChangeNotifier = (*RedisNotifier)(nil)

// NewRedisNotifier creates a notifier publishing on channel (DefaultChannel when empty).
func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisNotifier{client: client, channel: channel}
}

// VersionKey returns the Redis key holding the client's ledger version counter.
func VersionKey(clientID string) string {
	return versionKeyPrefix + clientID
}

// NotifyLedgerChanged implements portssvc.LedgerChangeNotifier.
func (n *RedisNotifier) NotifyLedgerChanged(ctx context.Context, event domain.LedgerChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode ledger change event: %w", err)
	}

	_, err = n.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, VersionKey(event.ClientID))
		pipe.Publish(ctx, n.channel, payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish ledger change for client %s: %w", event.ClientID, err)
	}
	return nil
}
