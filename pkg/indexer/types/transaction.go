package types

// TxStatus marks whether fee resolution succeeded for a recorded transaction.
type TxStatus string

const (
	TxPending TxStatus = "Pending"
	TxSuccess TxStatus = "Success"
	TxFail    TxStatus = "Fail"
)

// Transaction is the normalized ledger record derived from one processed
// message. Keyed by transaction hash; immutable once written. RoundID and
// CircuitName are denormalized from the Round so transaction lists render
// without a join.
type Transaction struct {
	ID          string `ch:"id" json:"id"`
	BlockHeight uint64 `ch:"block_height" json:"block_height"`
	TxHash      string `ch:"tx_hash" json:"tx_hash"`
	Timestamp   string `ch:"timestamp" json:"timestamp"`

	// Type is the operation code (OpDeploy, OpVote, ...), not the raw
	// contract action name.
	Type   string   `ch:"type" json:"type"`
	Status TxStatus `ch:"status" json:"status"`

	RoundID     string `ch:"round_id" json:"round_id"`
	CircuitName string `ch:"circuit_name" json:"circuit_name"`

	// Fee is the chain fee string, e.g. "20000peaka". Zero-amount sentinel
	// when fee lookup fails.
	Fee       string `ch:"fee" json:"fee"`
	GasUsed   uint64 `ch:"gas_used" json:"gas_used"`
	GasWanted uint64 `ch:"gas_wanted" json:"gas_wanted"`

	Caller          string `ch:"caller" json:"caller"`
	ContractAddress string `ch:"contract_address" json:"contract_address"`
}
