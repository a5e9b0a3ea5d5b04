package indexer

import "github.com/votascan/votascan/pkg/indexer/types"

// State is the (Period, Status) pair the lifecycle automaton advances.
type State struct {
	Period types.PeriodStatus
	Status types.RoundStatus
}

// InitialState is a round's state at instantiation.
var InitialState = State{Period: types.PeriodPending, Status: types.RoundCreated}

// transitions maps contract action names to the state they force the round
// into. Several actions collapse onto the same state on purpose: consumers
// only need phase-level granularity. Actions absent from the table leave the
// state untouched.
var transitions = map[string]State{
	types.ActionStartVoting:    {types.PeriodVoting, types.RoundOngoing},
	types.ActionSignUp:         {types.PeriodVoting, types.RoundOngoing},
	types.ActionPublishMessage: {types.PeriodVoting, types.RoundOngoing},
	types.ActionStopVoting:     {types.PeriodProcessing, types.RoundTallying},
	types.ActionStartProcess:   {types.PeriodProcessing, types.RoundTallying},
	types.ActionProcessMessage: {types.PeriodProcessing, types.RoundTallying},
	types.ActionStopProcessing: {types.PeriodTallying, types.RoundTallying},
	types.ActionProcessTally:   {types.PeriodTallying, types.RoundTallying},
	types.ActionStopTallying:   {types.PeriodEnded, types.RoundClosed},
}

// Transition applies action to current and returns the resulting state.
// Pure; (PeriodEnded, RoundClosed) is terminal because no listed action maps
// anywhere else once reached and unlisted actions are identity.
func Transition(current State, action string) State {
	if next, ok := transitions[action]; ok {
		return next
	}
	return current
}

// operations classifies action names into transaction operation codes. This
// is a separate taxonomy from the transition table: settings changes and
// gas-station actions never move the automaton but still classify.
var operations = map[string]string{
	types.ActionSetRoundInfo:      types.OpSettings,
	types.ActionSetWhitelists:     types.OpSettings,
	types.ActionSetVoteOptionsMap: types.OpSettings,
	types.ActionStartVoting:       types.OpStartVoting,
	types.ActionSignUp:            types.OpSignUp,
	types.ActionPublishMessage:    types.OpVote,
	types.ActionStopVoting:        types.OpStopVoting,
	types.ActionStartProcess:      types.OpStartProcessing,
	types.ActionProcessMessage:    types.OpVerify,
	types.ActionStopProcessing:    types.OpStopProcessing,
	types.ActionProcessTally:      types.OpVerify,
	types.ActionStopTallying:      types.OpStopTallying,
	types.ActionGrant:             types.OpEnableGasStation,
	types.ActionRevoke:            types.OpDisableGasStation,
	types.ActionBond:              types.OpFundGasStation,
	types.ActionWithdraw:          types.OpWithdrawGasStation,
}

// OperationFor returns the operation code for a contract action name, or the
// empty string for actions outside the taxonomy. Unrecognized actions still
// produce a transaction record, just an unclassified one.
func OperationFor(action string) string {
	return operations[action]
}
