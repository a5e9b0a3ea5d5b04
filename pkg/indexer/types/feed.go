package types

import (
	"strconv"
	"time"
)

// Attribute is one key/value pair attached to a decoded contract event.
// Keys may repeat across merged sub-messages; readers take the first match.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TxEvent is a transaction-level event (type "tx", "instantiate", "wasm", ...)
// as emitted by the chain, before any contract-specific interpretation.
type TxEvent struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

// TxContext carries the transaction envelope shared by every message and
// event decoded out of it.
type TxContext struct {
	Hash        string    `json:"hash"`
	BlockHeight uint64    `json:"block_height"`
	BlockTime   time.Time `json:"block_time"`
	Events      []TxEvent `json:"events"`
	GasUsed     uint64    `json:"gas_used"`
	GasWanted   uint64    `json:"gas_wanted"`
}

// Timestamp returns the block time as a millisecond string, the format all
// derived records store.
func (tx TxContext) Timestamp() string {
	return strconv.FormatInt(tx.BlockTime.UnixMilli(), 10)
}

// FeeEvent looks up the fee attribute of the tx-typed transaction event.
// Returns false when the transaction carries no fee, which the recorder
// treats as a soft failure rather than an abort.
func (tx TxContext) FeeEvent() (string, bool) {
	for _, ev := range tx.Events {
		if ev.Type != "tx" {
			continue
		}
		for _, attr := range ev.Attributes {
			if attr.Key == "fee" {
				return attr.Value, true
			}
		}
		return "", false
	}
	return "", false
}

// Message is a decoded contract execute call. Action is the single key of the
// execute payload; the payload body itself is not needed for indexing.
type Message struct {
	Tx       TxContext `json:"tx"`
	Contract string    `json:"contract"`
	Sender   string    `json:"sender"`
	Action   string    `json:"action"`
}

// RoundInfo is the instantiate template's display metadata.
type RoundInfo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// VotingTime is the optional voting window of the instantiate template.
// Nil bounds mean the window opens/closes by operator action later.
type VotingTime struct {
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

// CoordinatorPubKey is the coordinator's public key point.
type CoordinatorPubKey struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// CircuitParams are the structural parameters of the proving circuit.
type CircuitParams struct {
	StateTreeDepth      string `json:"state_tree_depth"`
	IntStateTreeDepth   string `json:"int_state_tree_depth"`
	VoteOptionTreeDepth string `json:"vote_option_tree_depth"`
	MessageBatchSize    string `json:"message_batch_size"`
}

// InstantiateMsg is the round contract's instantiate template.
type InstantiateMsg struct {
	RoundInfo      RoundInfo         `json:"round_info"`
	VotingTime     *VotingTime       `json:"voting_time"`
	Coordinator    CoordinatorPubKey `json:"coordinator"`
	MaxVoteOptions string            `json:"max_vote_options"`
	CircuitType    string            `json:"circuit_type"`
	Parameters     CircuitParams     `json:"parameters"`
}

// Instantiate is a decoded contract instantiation. CodeID identifies the
// uploaded contract template; only allow-listed ids are indexed.
type Instantiate struct {
	Tx     TxContext      `json:"tx"`
	CodeID uint64         `json:"code_id"`
	Sender string         `json:"sender"`
	Msg    InstantiateMsg `json:"msg"`
}

// Event is one contract-emitted event. The target contract and the action
// name travel inside Attributes (_contract_address, action).
type Event struct {
	Tx         TxContext   `json:"tx"`
	MsgIndex   uint32      `json:"msg_index"`
	Index      uint32      `json:"index"`
	Attributes []Attribute `json:"attributes"`
}
