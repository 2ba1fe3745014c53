package model

import "fmt"

// ScenarioTag identifies one of the game's teaching scenarios. Trades
// recorded under a tag feed the per-scenario progress counters.
type ScenarioTag string

const (
	ScenarioIntroTrading ScenarioTag = "intro-trading"
	ScenarioStaking      ScenarioTag = "staking"
	ScenarioLending      ScenarioTag = "lending"
	ScenarioFlashLoans   ScenarioTag = "flash-loans"
	ScenarioGovernance   ScenarioTag = "governance"
)

// AllScenarios returns the defined scenario tags in curriculum order
func AllScenarios() []ScenarioTag {
	return []ScenarioTag{
		ScenarioIntroTrading,
		ScenarioStaking,
		ScenarioLending,
		ScenarioFlashLoans,
		ScenarioGovernance,
	}
}

// ParseScenarioTag converts a request string into a ScenarioTag
func ParseScenarioTag(s string) (ScenarioTag, bool) {
	switch ScenarioTag(s) {
	case ScenarioIntroTrading, ScenarioStaking, ScenarioLending,
		ScenarioFlashLoans, ScenarioGovernance:
		return ScenarioTag(s), true
	}
	return "", false
}

// ScenarioState describes the starting conditions a scenario grants a
// player: seed balances and, for governance, the proposals open to vote.
type ScenarioState struct {
	Tag              ScenarioTag       `json:"tag"`
	Name             string            `json:"name"`
	StartingBalances map[Token]float64 `json:"starting_balances"`
	ProposalIDs      []string          `json:"proposal_ids,omitempty"`
}

// NewScenarioState builds the state for a scenario tag
func NewScenarioState(tag ScenarioTag) (*ScenarioState, error) {
	switch tag {
	case ScenarioIntroTrading:
		return &ScenarioState{
			Tag:  tag,
			Name: "Intro to Trading",
			StartingBalances: map[Token]float64{
				TokenUSDC: 10000,
			},
		}, nil
	case ScenarioStaking:
		return &ScenarioState{
			Tag:  tag,
			Name: "Staking Basics",
			StartingBalances: map[Token]float64{
				TokenETH: 10,
			},
		}, nil
	case ScenarioLending:
		return &ScenarioState{
			Tag:  tag,
			Name: "Lending and Borrowing",
			StartingBalances: map[Token]float64{
				TokenETH:  5,
				TokenUSDC: 5000,
				TokenDAI:  5000,
			},
		}, nil
	case ScenarioFlashLoans:
		return &ScenarioState{
			Tag:  tag,
			Name: "Flash Loans",
			StartingBalances: map[Token]float64{
				TokenUSDC: 20000,
			},
		}, nil
	case ScenarioGovernance:
		return &ScenarioState{
			Tag:  tag,
			Name: "Governance",
			StartingBalances: map[Token]float64{
				TokenUSDC: 1000,
			},
			ProposalIDs: []string{"DIP-1", "DIP-2", "DIP-3"},
		}, nil
	}
	return nil, fmt.Errorf("unknown scenario tag: %s", tag)
}
