package types

// Contract action names as they appear in execute payloads and in the
// `action` attribute of contract events.
const (
	ActionSetRoundInfo      = "set_round_info"
	ActionSetWhitelists     = "set_whitelists"
	ActionSetVoteOptionsMap = "set_vote_options_map"
	ActionStartVoting       = "start_voting_period"
	ActionSignUp            = "sign_up"
	ActionPublishMessage    = "publish_message"
	ActionStopVoting        = "stop_voting_period"
	ActionStartProcess      = "start_process_period"
	ActionProcessMessage    = "process_message"
	ActionStopProcessing    = "stop_processing_period"
	ActionProcessTally      = "process_tally"
	ActionStopTallying      = "stop_tallying_period"
	ActionSetVoteOption     = "set_vote_option"
	ActionGrant             = "grant"
	ActionRevoke            = "revoke"
	ActionBond              = "bond"
	ActionWithdraw          = "withdraw"
)

// Operation codes classify transactions for downstream consumers. They are a
// flat taxonomy, independent of the lifecycle automaton's state labels.
const (
	OpDeploy             = "op:deploy"
	OpSettings           = "op:settings"
	OpEnableGasStation   = "op:enableGS"
	OpDisableGasStation  = "op:disableGS"
	OpFundGasStation     = "op:fundGS"
	OpWithdrawGasStation = "op:withdrawGS"
	OpSignUp             = "signup"
	OpVote               = "msg:vote"
	OpVerify             = "op:verify"
	OpStartVoting        = "op:kickoff"
	OpStopVoting         = "op:end"
	OpStartProcessing    = "op:startProcessing"
	OpStopProcessing     = "op:stopProcessing"
	OpStopTallying       = "op:stopTallying"
)
