package feed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	abci "github.com/cometbft/cometbft/abci/types"
	rpchttp "github.com/cometbft/cometbft/rpc/client/http"
	"github.com/votascan/votascan/pkg/indexer/types"
	"go.uber.org/zap"
)

// ExecuteMsg is a decoded contract execute call, before the feed attaches
// its transaction envelope. Action is the single key of the execute payload.
type ExecuteMsg struct {
	Contract string
	Sender   string
	Action   string
}

// InstantiateCall is a decoded contract instantiation.
type InstantiateCall struct {
	CodeID uint64
	Sender string
	Msg    types.InstantiateMsg
}

// DecodedMsg is one message decoded out of a raw transaction. Exactly one
// field is set.
type DecodedMsg struct {
	Execute     *ExecuteMsg
	Instantiate *InstantiateCall
}

// Decoder turns raw transaction bytes into ordered contract messages.
// Decoding Cosmos transactions requires the chain's protobuf registry, which
// is deployment-specific; the feed stays agnostic behind this interface.
type Decoder interface {
	DecodeTx(txBytes []byte) ([]DecodedMsg, error)
}

// Comet is a live Source backed by a CometBFT RPC node. It polls blocks and
// block results from a start height, converts ABCI events to the feed's
// attribute model, and asks the Decoder for the message side.
type Comet struct {
	client   *rpchttp.HTTP
	decoder  Decoder
	logger   *zap.Logger
	interval time.Duration

	nextHeight int64
	queue      []*Item
}

var _ Source = (*Comet)(nil)

// NewComet connects to a CometBFT RPC endpoint. The decoder may be nil, in
// which case only the event side of the feed is produced.
func NewComet(rpcURL string, startHeight uint64, interval time.Duration, decoder Decoder, logger *zap.Logger) (*Comet, error) {
	client, err := rpchttp.New(rpcURL, "/websocket")
	if err != nil {
		return nil, fmt.Errorf("connect to chain rpc %s: %w", rpcURL, err)
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if startHeight == 0 {
		startHeight = 1
	}
	return &Comet{
		client:     client,
		decoder:    decoder,
		logger:     logger,
		interval:   interval,
		nextHeight: int64(startHeight),
	}, nil
}

// Next returns the next item in chain order, blocking across block
// boundaries until the node produces the next height.
func (c *Comet) Next(ctx context.Context) (*Item, error) {
	for len(c.queue) == 0 {
		if err := c.fetchBlock(ctx); err != nil {
			return nil, err
		}
	}
	item := c.queue[0]
	c.queue = c.queue[1:]
	return item, nil
}

// Close is a no-op; the RPC client holds no persistent connection state
// outside in-flight requests.
func (c *Comet) Close() error { return nil }

// fetchBlock waits for nextHeight to exist, then converts its transactions
// into feed items appended to the queue. Empty blocks advance the cursor
// without queueing anything, so Next loops.
func (c *Comet) fetchBlock(ctx context.Context) error {
	if err := c.waitForHeight(ctx); err != nil {
		return err
	}

	height := c.nextHeight
	block, err := c.client.Block(ctx, &height)
	if err != nil {
		return fmt.Errorf("fetch block %d: %w", height, err)
	}
	results, err := c.client.BlockResults(ctx, &height)
	if err != nil {
		return fmt.Errorf("fetch block results %d: %w", height, err)
	}

	for i, rawTx := range block.Block.Txs {
		result := results.TxsResults[i]
		if result.Code != 0 {
			// Failed transactions emit no contract events and mutate nothing.
			continue
		}

		txCtx := types.TxContext{
			Hash:        fmt.Sprintf("%X", rawTx.Hash()),
			BlockHeight: uint64(height),
			BlockTime:   block.Block.Time,
			Events:      convertEvents(result.Events),
			GasUsed:     uint64(result.GasUsed),
			GasWanted:   uint64(result.GasWanted),
		}

		if c.decoder != nil {
			decoded, err := c.decoder.DecodeTx(rawTx)
			if err != nil {
				return fmt.Errorf("decode tx %s at height %d: %w", txCtx.Hash, height, err)
			}
			for _, msg := range decoded {
				switch {
				case msg.Instantiate != nil:
					c.queue = append(c.queue, &Item{Instantiate: &types.Instantiate{
						Tx:     txCtx,
						CodeID: msg.Instantiate.CodeID,
						Sender: msg.Instantiate.Sender,
						Msg:    msg.Instantiate.Msg,
					}})
				case msg.Execute != nil:
					c.queue = append(c.queue, &Item{Message: &types.Message{
						Tx:       txCtx,
						Contract: msg.Execute.Contract,
						Sender:   msg.Execute.Sender,
						Action:   msg.Execute.Action,
					}})
				}
			}
		}

		c.queue = append(c.queue, contractEvents(txCtx, result.Events)...)
	}

	c.nextHeight++
	return nil
}

// waitForHeight polls the node status until nextHeight is available.
func (c *Comet) waitForHeight(ctx context.Context) error {
	for {
		status, err := c.client.Status(ctx)
		if err != nil {
			return fmt.Errorf("chain status: %w", err)
		}
		if status.SyncInfo.LatestBlockHeight >= c.nextHeight {
			return nil
		}
		c.logger.Debug("Waiting for next block",
			zap.Int64("next", c.nextHeight),
			zap.Int64("head", status.SyncInfo.LatestBlockHeight))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.interval):
		}
	}
}

func convertEvents(events []abci.Event) []types.TxEvent {
	out := make([]types.TxEvent, 0, len(events))
	for _, ev := range events {
		converted := types.TxEvent{Type: ev.Type, Attributes: make([]types.Attribute, 0, len(ev.Attributes))}
		for _, attr := range ev.Attributes {
			converted.Attributes = append(converted.Attributes, types.Attribute{Key: attr.Key, Value: attr.Value})
		}
		out = append(out, converted)
	}
	return out
}

// contractEvents extracts wasm-typed events as feed items. The sdk stamps
// each event with the index of the message that emitted it; events within a
// message keep their emission order.
func contractEvents(txCtx types.TxContext, events []abci.Event) []*Item {
	items := make([]*Item, 0)
	var eventIdx uint32
	for _, ev := range events {
		if ev.Type != "wasm" {
			continue
		}
		attrs := make([]types.Attribute, 0, len(ev.Attributes))
		var msgIdx uint32
		for _, attr := range ev.Attributes {
			if attr.Key == "msg_index" {
				if n, err := strconv.ParseUint(attr.Value, 10, 32); err == nil {
					msgIdx = uint32(n)
				}
				continue
			}
			attrs = append(attrs, types.Attribute{Key: attr.Key, Value: attr.Value})
		}
		items = append(items, &Item{Event: &types.Event{
			Tx:         txCtx,
			MsgIndex:   msgIdx,
			Index:      eventIdx,
			Attributes: attrs,
		}})
		eventIdx++
	}
	return items
}
