package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenarioTag(t *testing.T) {
	tag, ok := ParseScenarioTag("intro-trading")
	assert.True(t, ok)
	assert.Equal(t, ScenarioIntroTrading, tag)

	_, ok = ParseScenarioTag("speedrun")
	assert.False(t, ok)
}

func TestNewScenarioState(t *testing.T) {
	state, err := NewScenarioState(ScenarioIntroTrading)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, state.StartingBalances[TokenUSDC])
	assert.Empty(t, state.ProposalIDs)

	state, err = NewScenarioState(ScenarioGovernance)
	require.NoError(t, err)
	assert.Equal(t, []string{"DIP-1", "DIP-2", "DIP-3"}, state.ProposalIDs)

	_, err = NewScenarioState(ScenarioTag("bogus"))
	assert.Error(t, err)
}

func TestEveryScenarioHasState(t *testing.T) {
	for _, tag := range AllScenarios() {
		state, err := NewScenarioState(tag)
		require.NoError(t, err, "scenario %s", tag)
		assert.NotEmpty(t, state.Name)
		assert.NotEmpty(t, state.StartingBalances)
	}
}

func TestParseToken(t *testing.T) {
	token, ok := ParseToken("vETH")
	assert.True(t, ok)
	assert.Equal(t, TokenETH, token)

	_, ok = ParseToken("DOGE")
	assert.False(t, ok)
}

func TestAccountCloneIsDeep(t *testing.T) {
	account := NewAccount("0xplayer-1")
	account.Balances[TokenUSDC] = 100
	account.Achievements["first-trade"] = true

	clone := account.Clone()
	clone.Balances[TokenUSDC] = 999
	clone.Achievements["first-stake"] = true
	clone.TradeHistory["intro-trading"] = 5

	assert.Equal(t, 100.0, account.Balances[TokenUSDC])
	assert.False(t, account.Achievements["first-stake"])
	assert.Zero(t, account.TradeHistory["intro-trading"])
}
