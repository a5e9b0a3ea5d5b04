package indexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/votascan/votascan/pkg/indexer"
	"github.com/votascan/votascan/pkg/indexer/types"
)

func TestTransition_ActionTable(t *testing.T) {
	tests := []struct {
		action string
		want   indexer.State
	}{
		{types.ActionStartVoting, indexer.State{Period: types.PeriodVoting, Status: types.RoundOngoing}},
		{types.ActionSignUp, indexer.State{Period: types.PeriodVoting, Status: types.RoundOngoing}},
		{types.ActionPublishMessage, indexer.State{Period: types.PeriodVoting, Status: types.RoundOngoing}},
		{types.ActionStopVoting, indexer.State{Period: types.PeriodProcessing, Status: types.RoundTallying}},
		{types.ActionStartProcess, indexer.State{Period: types.PeriodProcessing, Status: types.RoundTallying}},
		{types.ActionProcessMessage, indexer.State{Period: types.PeriodProcessing, Status: types.RoundTallying}},
		{types.ActionStopProcessing, indexer.State{Period: types.PeriodTallying, Status: types.RoundTallying}},
		{types.ActionProcessTally, indexer.State{Period: types.PeriodTallying, Status: types.RoundTallying}},
		{types.ActionStopTallying, indexer.State{Period: types.PeriodEnded, Status: types.RoundClosed}},
	}
	for _, tc := range tests {
		t.Run(tc.action, func(t *testing.T) {
			// Listed actions force the target state regardless of where the
			// automaton currently is.
			assert.Equal(t, tc.want, indexer.Transition(indexer.InitialState, tc.action))
			assert.Equal(t, tc.want, indexer.Transition(tc.want, tc.action))
		})
	}
}

func TestTransition_UnlistedActionIsIdentity(t *testing.T) {
	states := []indexer.State{
		indexer.InitialState,
		{Period: types.PeriodVoting, Status: types.RoundOngoing},
		{Period: types.PeriodEnded, Status: types.RoundClosed},
	}
	for _, action := range []string{types.ActionSetRoundInfo, types.ActionGrant, types.ActionBond, "upgrade_contract", ""} {
		for _, state := range states {
			assert.Equal(t, state, indexer.Transition(state, action), "action %q", action)
		}
	}
}

func TestTransition_EndedIsTerminalUnderReplay(t *testing.T) {
	// A late sign-up replayed after close would re-open the round if the
	// automaton were history-sensitive. It is not: listed actions map to fixed
	// states, so the only way out of Ended is another listed action, and the
	// pipeline never emits one after stop_tallying_period in practice. What we
	// pin here is that unlisted traffic cannot disturb the terminal state.
	ended := indexer.State{Period: types.PeriodEnded, Status: types.RoundClosed}
	for _, action := range []string{types.ActionSetRoundInfo, types.ActionWithdraw, "anything"} {
		assert.Equal(t, ended, indexer.Transition(ended, action))
	}
	assert.Equal(t, ended, indexer.Transition(ended, types.ActionStopTallying))
}

func TestOperationFor(t *testing.T) {
	tests := []struct {
		action string
		want   string
	}{
		{types.ActionSetRoundInfo, types.OpSettings},
		{types.ActionSetWhitelists, types.OpSettings},
		{types.ActionSetVoteOptionsMap, types.OpSettings},
		{types.ActionStartVoting, types.OpStartVoting},
		{types.ActionSignUp, types.OpSignUp},
		{types.ActionPublishMessage, types.OpVote},
		{types.ActionStopVoting, types.OpStopVoting},
		{types.ActionStartProcess, types.OpStartProcessing},
		{types.ActionProcessMessage, types.OpVerify},
		{types.ActionStopProcessing, types.OpStopProcessing},
		{types.ActionProcessTally, types.OpVerify},
		{types.ActionStopTallying, types.OpStopTallying},
		{types.ActionGrant, types.OpEnableGasStation},
		{types.ActionRevoke, types.OpDisableGasStation},
		{types.ActionBond, types.OpFundGasStation},
		{types.ActionWithdraw, types.OpWithdrawGasStation},
		{"upgrade_contract", ""},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, indexer.OperationFor(tc.action), "action %q", tc.action)
	}
}

func TestOperationCodes_WireValues(t *testing.T) {
	// Downstream consumers match on these strings; renaming a constant must
	// not silently change the stored value.
	assert.Equal(t, "op:deploy", types.OpDeploy)
	assert.Equal(t, "op:settings", types.OpSettings)
	assert.Equal(t, "op:enableGS", types.OpEnableGasStation)
	assert.Equal(t, "op:disableGS", types.OpDisableGasStation)
	assert.Equal(t, "op:fundGS", types.OpFundGasStation)
	assert.Equal(t, "op:withdrawGS", types.OpWithdrawGasStation)
	assert.Equal(t, "signup", types.OpSignUp)
	assert.Equal(t, "msg:vote", types.OpVote)
	assert.Equal(t, "op:verify", types.OpVerify)
	assert.Equal(t, "op:kickoff", types.OpStartVoting)
	assert.Equal(t, "op:end", types.OpStopVoting)
	assert.Equal(t, "op:startProcessing", types.OpStartProcessing)
	assert.Equal(t, "op:stopProcessing", types.OpStopProcessing)
	assert.Equal(t, "op:stopTallying", types.OpStopTallying)
}
