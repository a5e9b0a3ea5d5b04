// Package feed delivers decoded messages and contract events in strict chain
// order: block height, then transaction index, then message/event index. The
// pipeline dispatches one item at a time and runs each handler to completion,
// so ordering here is the only concurrency control the system needs.
package feed

import (
	"context"

	"github.com/votascan/votascan/pkg/indexer/types"
)

// Item is one unit of the feed. Exactly one field is set.
type Item struct {
	Message     *types.Message     `json:"message,omitempty"`
	Instantiate *types.Instantiate `json:"instantiate,omitempty"`
	Event       *types.Event       `json:"event,omitempty"`
}

// Height reports the block height of whichever payload the item carries.
func (it *Item) Height() uint64 {
	switch {
	case it.Message != nil:
		return it.Message.Tx.BlockHeight
	case it.Instantiate != nil:
		return it.Instantiate.Tx.BlockHeight
	case it.Event != nil:
		return it.Event.Tx.BlockHeight
	}
	return 0
}

// Source yields feed items in chain order. Next blocks until an item is
// available, returns io.EOF when the source is exhausted (bounded replays),
// or ctx.Err() on cancellation. Live sources never return io.EOF.
type Source interface {
	Next(ctx context.Context) (*Item, error)
	Close() error
}
