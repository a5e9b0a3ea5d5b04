package types

import "fmt"

// EventID builds the `{txHash}-{msgIndex}-{eventIndex}` key shared by all
// per-event projections. The two indexes keep ids unique when one transaction
// carries several contract calls.
func EventID(txHash string, msgIndex, eventIndex uint32) string {
	return fmt.Sprintf("%s-%d-%d", txHash, msgIndex, eventIndex)
}

// SignUpEvent records a voter registration. Append-only.
type SignUpEvent struct {
	ID          string `ch:"id" json:"id"`
	BlockHeight uint64 `ch:"block_height" json:"block_height"`
	Timestamp   string `ch:"timestamp" json:"timestamp"`
	TxHash      string `ch:"tx_hash" json:"tx_hash"`

	// StateIdx is the voter's leaf index in the contract's state tree.
	StateIdx uint64 `ch:"state_idx" json:"state_idx"`
	PubKey   string `ch:"pub_key" json:"pub_key"`
	Balance  string `ch:"balance" json:"balance"`

	ContractAddress string `ch:"contract_address" json:"contract_address"`
}

// PublishMessageEvent records one encrypted vote message. Append-only.
type PublishMessageEvent struct {
	ID          string `ch:"id" json:"id"`
	BlockHeight uint64 `ch:"block_height" json:"block_height"`
	Timestamp   string `ch:"timestamp" json:"timestamp"`
	TxHash      string `ch:"tx_hash" json:"tx_hash"`

	MsgChainLength uint64 `ch:"msg_chain_length" json:"msg_chain_length"`
	Message        string `ch:"message" json:"message"`
	EncPubKey      string `ch:"enc_pub_key" json:"enc_pub_key"`

	ContractAddress string `ch:"contract_address" json:"contract_address"`
}

// Proof phases, carried on ProcessProof.ActionType.
const (
	ProofPhaseMessage = "message"
	ProofPhaseTally   = "tally"
)

// ProcessProof records a confirmed zero-knowledge proof for a message batch
// or a tally batch. Only written when the contract reported zk_verify=true;
// rejected proofs leave no trace. Append-only.
type ProcessProof struct {
	ID          string `ch:"id" json:"id"`
	BlockHeight uint64 `ch:"block_height" json:"block_height"`
	Timestamp   string `ch:"timestamp" json:"timestamp"`
	TxHash      string `ch:"tx_hash" json:"tx_hash"`

	// ActionType is ProofPhaseMessage or ProofPhaseTally.
	ActionType string `ch:"action_type" json:"action_type"`

	PiA        string `ch:"pi_a" json:"pi_a"`
	PiB        string `ch:"pi_b" json:"pi_b"`
	PiC        string `ch:"pi_c" json:"pi_c"`
	Commitment string `ch:"commitment" json:"commitment"`

	ContractAddress string `ch:"contract_address" json:"contract_address"`
}
