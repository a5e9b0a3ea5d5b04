package types

// RoundStatus is the coarse lifecycle view of a round, the one explorers filter on.
type RoundStatus string

const (
	RoundCreated  RoundStatus = "Created"
	RoundOngoing  RoundStatus = "Ongoing"
	RoundTallying RoundStatus = "Tallying"
	RoundClosed   RoundStatus = "Closed"
)

// PeriodStatus is the phase-grained lifecycle view defined by the contract itself.
type PeriodStatus string

const (
	PeriodPending    PeriodStatus = "Pending"
	PeriodVoting     PeriodStatus = "Voting"
	PeriodProcessing PeriodStatus = "Processing"
	PeriodTallying   PeriodStatus = "Tallying"
	PeriodEnded      PeriodStatus = "Ended"
)

// Round is one instance of a voting process governed by a deployed contract.
// Keyed by contract address. Monetary and result fields are kept as the
// contract's decimal strings; arithmetic on them goes through pkg/indexer's
// decimal helpers, never through float parsing.
type Round struct {
	// Primary key: the chain-assigned contract address.
	ID string `ch:"id" json:"id"`

	BlockHeight uint64 `ch:"block_height" json:"block_height"`
	TxHash      string `ch:"tx_hash" json:"tx_hash"`
	// Timestamp is the block time in milliseconds, stored as a string.
	Timestamp string `ch:"timestamp" json:"timestamp"`

	Operator        string `ch:"operator" json:"operator"`
	ContractAddress string `ch:"contract_address" json:"contract_address"`

	// RoundID is the denomination-scoped sequence number, assigned once at
	// creation and never recomputed.
	RoundID string `ch:"round_id" json:"round_id"`

	RoundTitle       string `ch:"round_title" json:"round_title"`
	RoundDescription string `ch:"round_description" json:"round_description"`
	RoundLink        string `ch:"round_link" json:"round_link"`

	CircuitName  string `ch:"circuit_name" json:"circuit_name"`
	CircuitType  string `ch:"circuit_type" json:"circuit_type"`
	CircuitPower string `ch:"circuit_power" json:"circuit_power"`

	CoordinatorPubkeyX string `ch:"coordinator_pubkey_x" json:"coordinator_pubkey_x"`
	CoordinatorPubkeyY string `ch:"coordinator_pubkey_y" json:"coordinator_pubkey_y"`

	// Voting window bounds, millisecond strings. "0" until the contract sets them.
	VotingStart string `ch:"voting_start" json:"voting_start"`
	VotingEnd   string `ch:"voting_end" json:"voting_end"`

	Status RoundStatus  `ch:"status" json:"status"`
	Period PeriodStatus `ch:"period" json:"period"`

	// ActionType is the operation code of the message that created the round.
	ActionType string `ch:"action_type" json:"action_type"`

	// VoteOptionMap is a JSON array of option labels, sized at creation.
	VoteOptionMap string `ch:"vote_option_map" json:"vote_option_map"`
	Results       string `ch:"results" json:"results"`
	AllResult     string `ch:"all_result" json:"all_result"`

	// Settlement denomination the round accounts in.
	Denom string `ch:"denom" json:"denom"`

	// Gas-station accounting.
	GasStationEnable bool   `ch:"gas_station_enable" json:"gas_station_enable"`
	TotalGrant       string `ch:"total_grant" json:"total_grant"`
	BaseGrant        string `ch:"base_grant" json:"base_grant"`
	TotalBond        string `ch:"total_bond" json:"total_bond"`
}
