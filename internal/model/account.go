package model

import "time"

// Account is the full per-player ledger record. It is the unit of
// atomicity: every trading operation reads and writes exactly one
// Account, and the whole record is what gets snapshotted to Redis.
type Account struct {
	Address         string            `json:"address"`
	Registered      bool              `json:"registered"`
	Balances        map[Token]float64 `json:"balances"`
	Collateral      map[Token]float64 `json:"collateral"`
	Debt            map[Token]float64 `json:"debt"`
	Staked          map[Token]float64 `json:"staked"`
	TradesCompleted uint64            `json:"trades_completed"`
	TotalVolume     float64           `json:"total_volume"`
	TradeHistory    map[string]uint64 `json:"trade_history"` // scenario tag -> trade count
	Achievements    map[string]bool   `json:"achievements"`  // achievement id -> unlocked
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// NewAccount creates an empty, unregistered account
func NewAccount(address string) *Account {
	now := time.Now()
	return &Account{
		Address:      address,
		Balances:     make(map[Token]float64),
		Collateral:   make(map[Token]float64),
		Debt:         make(map[Token]float64),
		Staked:       make(map[Token]float64),
		TradeHistory: make(map[string]uint64),
		Achievements: make(map[string]bool),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Clone returns a deep copy of the account. The ledger mutates clones
// and swaps them in only after the whole operation has succeeded.
func (a *Account) Clone() *Account {
	c := *a
	c.Balances = cloneAmounts(a.Balances)
	c.Collateral = cloneAmounts(a.Collateral)
	c.Debt = cloneAmounts(a.Debt)
	c.Staked = cloneAmounts(a.Staked)
	c.TradeHistory = make(map[string]uint64, len(a.TradeHistory))
	for k, v := range a.TradeHistory {
		c.TradeHistory[k] = v
	}
	c.Achievements = make(map[string]bool, len(a.Achievements))
	for k, v := range a.Achievements {
		c.Achievements[k] = v
	}
	return &c
}

func cloneAmounts(m map[Token]float64) map[Token]float64 {
	out := make(map[Token]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// PlayerInfo is the aggregate view consumed by the UI and leaderboard
type PlayerInfo struct {
	Address         string  `json:"address"`
	Registered      bool    `json:"registered"`
	TradesCompleted uint64  `json:"trades_completed"`
	TotalVolume     float64 `json:"total_volume"`
}

// ToPlayerInfo converts an account snapshot to its aggregate view
func (a *Account) ToPlayerInfo() *PlayerInfo {
	return &PlayerInfo{
		Address:         a.Address,
		Registered:      a.Registered,
		TradesCompleted: a.TradesCompleted,
		TotalVolume:     a.TotalVolume,
	}
}

// LeaderboardEntry is one row of the volume leaderboard
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	Address     string  `json:"address"`
	TotalVolume float64 `json:"total_volume"`
}

// Request payloads for the trading API. Token fields are validated
// against the fixed token set in the handlers.

// SessionRequest opens a demo session for a wallet-like address
type SessionRequest struct {
	Address string `json:"address" binding:"required,min=3,max=64"`
}

// SessionResponse carries the bearer token for the opened session
type SessionResponse struct {
	Address     string `json:"address"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
}

// TradeRequest covers buy, sell, stake, unstake, lend, yield-farm and
// flash-loan calls: a single token plus an amount
type TradeRequest struct {
	Token  string  `json:"token" binding:"required"`
	Amount float64 `json:"amount" binding:"required"`
}

// SwapRequest converts one token into another
type SwapRequest struct {
	FromToken string  `json:"from_token" binding:"required"`
	ToToken   string  `json:"to_token" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
}

// BorrowRequest opens a collateralized debt position
type BorrowRequest struct {
	BorrowToken      string  `json:"borrow_token" binding:"required"`
	BorrowAmount     float64 `json:"borrow_amount" binding:"required"`
	CollateralToken  string  `json:"collateral_token" binding:"required"`
	CollateralAmount float64 `json:"collateral_amount" binding:"required"`
}

// RepayRequest pays down outstanding debt, capped at the open amount
type RepayRequest struct {
	Token  string  `json:"token" binding:"required"`
	Amount float64 `json:"amount" binding:"required"`
}

// VoteRequest records a governance vote, no balance effect
type VoteRequest struct {
	ProposalID string `json:"proposal_id" binding:"required"`
	Support    bool   `json:"support"`
}

// RecordTradeRequest books a completed trade against a scenario
type RecordTradeRequest struct {
	ScenarioTag string  `json:"scenario_tag" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
}

// UnlockAchievementRequest mints the reward token for an achievement
type UnlockAchievementRequest struct {
	AchievementID string  `json:"achievement_id" binding:"required"`
	TokenAmount   float64 `json:"token_amount" binding:"required"`
}
