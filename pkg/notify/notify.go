package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/votascan/votascan/pkg/indexer/types"
	"go.uber.org/zap"
)

// Pub/Sub channels for downstream consumers (explorer frontends, bots).
const (
	ChannelRounds       = "votascan:rounds"
	ChannelTransactions = "votascan:txs"
)

// Notifier publishes best-effort notifications about newly indexed entities
// over Redis Pub/Sub. A nil Notifier is valid and publishes nothing, so the
// pipeline runs unchanged when Redis is not configured. Publish failures are
// logged and swallowed; indexing never depends on the notifier.
type Notifier struct {
	client *redis.Client
	logger *zap.Logger
}

// New connects to Redis and returns a Notifier. An empty addr returns
// (nil, nil): notifications disabled.
func New(ctx context.Context, logger *zap.Logger, addr, password string, db int) (*Notifier, error) {
	if addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		PoolSize:     10,
		MinIdleConns: 2,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	logger.Info("Connected to Redis", zap.String("addr", addr), zap.Int("db", db))
	return &Notifier{client: rdb, logger: logger}, nil
}

// Close closes the Redis connection.
func (n *Notifier) Close() error {
	if n == nil {
		return nil
	}
	return n.client.Close()
}

type roundNotification struct {
	Event           string    `json:"event"`
	ContractAddress string    `json:"contractAddress"`
	RoundID         string    `json:"roundId"`
	Status          string    `json:"status"`
	Period          string    `json:"period"`
	Timestamp       time.Time `json:"timestamp"`
}

type txNotification struct {
	Event       string    `json:"event"`
	TxHash      string    `json:"txHash"`
	Type        string    `json:"type"`
	BlockHeight uint64    `json:"blockHeight"`
	Timestamp   time.Time `json:"timestamp"`
}

// RoundCreated announces a newly instantiated round.
func (n *Notifier) RoundCreated(ctx context.Context, round *types.Round) {
	n.publishRound(ctx, "round.created", round)
}

// RoundUpdated announces a lifecycle or projection mutation of a round.
func (n *Notifier) RoundUpdated(ctx context.Context, round *types.Round) {
	n.publishRound(ctx, "round.updated", round)
}

// TransactionIndexed announces a newly recorded transaction.
func (n *Notifier) TransactionIndexed(ctx context.Context, tx *types.Transaction) {
	if n == nil {
		return
	}
	n.publish(ctx, ChannelTransactions, txNotification{
		Event:       "tx.indexed",
		TxHash:      tx.TxHash,
		Type:        tx.Type,
		BlockHeight: tx.BlockHeight,
		Timestamp:   time.Now().UTC(),
	})
}

func (n *Notifier) publishRound(ctx context.Context, event string, round *types.Round) {
	if n == nil {
		return
	}
	n.publish(ctx, ChannelRounds, roundNotification{
		Event:           event,
		ContractAddress: round.ContractAddress,
		RoundID:         round.RoundID,
		Status:          string(round.Status),
		Period:          string(round.Period),
		Timestamp:       time.Now().UTC(),
	})
}

func (n *Notifier) publish(ctx context.Context, channel string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Warn("Failed to encode notification", zap.Error(err))
		return
	}
	if err := n.client.Publish(ctx, channel, body).Err(); err != nil {
		n.logger.Warn("Failed to publish notification",
			zap.String("channel", channel),
			zap.Error(err))
	}
}
