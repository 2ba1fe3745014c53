package handler

import (
	"context"
	"net/http"

	"defidojo/backend/internal/middleware"
	"defidojo/backend/internal/model"
	"defidojo/backend/internal/service"
	"defidojo/backend/internal/util"

	"github.com/gin-gonic/gin"
)

// TradingHandler handles the trading operation endpoints
type TradingHandler struct {
	tradingService *service.TradingService
}

// NewTradingHandler creates a new trading handler
func NewTradingHandler(tradingService *service.TradingService) *TradingHandler {
	return &TradingHandler{
		tradingService: tradingService,
	}
}

func parseToken(c *gin.Context, raw string) (model.Token, bool) {
	token, ok := model.ParseToken(raw)
	if !ok {
		util.SendError(c, util.NewAppError(http.StatusBadRequest,
			util.ErrCodeUnsupportedToken, "Unknown token: "+raw))
		return "", false
	}
	return token, true
}

// Buy purchases tokens against the vUSDC balance
// POST /api/v1/trade/buy
func (h *TradingHandler) Buy(c *gin.Context) {
	address := middleware.PlayerAddress(c)

	var req model.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.SendValidationError(c, err.Error())
		return
	}
	token, ok := parseToken(c, req.Token)
	if !ok {
		return
	}

	outcome, err := h.tradingService.Buy(c.Request.Context(), address, token, req.Amount)
	if err != nil {
		util.SendError(c, err)
		return
	}

	util.SendSuccess(c, gin.H{
		"token":    outcome.Token,
		"amount":   outcome.Amount,
		"cost":     outcome.Cost,
		"balances": outcome.Account.Balances,
	})
}

// Sell disposes tokens for vUSDC
// POST /api/v1/trade/sell
func (h *TradingHandler) Sell(c *gin.Context) {
	address := middleware.PlayerAddress(c)

	var req model.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.SendValidationError(c, err.Error())
		return
	}
	token, ok := parseToken(c, req.Token)
	if !ok {
		return
	}

	outcome, err := h.tradingService.Sell(c.Request.Context(), address, token, req.Amount)
	if err != nil {
		util.SendError(c, err)
		return
	}

	util.SendSuccess(c, gin.H{
		"token":    outcome.Token,
		"amount":   outcome.Amount,
		"proceeds": outcome.Proceeds,
		"balances": outcome.Account.Balances,
	})
}

// Swap converts one token into another
// POST /api/v1/trade/swap
func (h *TradingHandler) Swap(c *gin.Context) {
	address := middleware.PlayerAddress(c)

	var req model.SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.SendValidationError(c, err.Error())
		return
	}
	fromToken, ok := parseToken(c, req.FromToken)
	if !ok {
		return
	}
	toToken, ok := parseToken(c, req.ToToken)
	if !ok {
		return
	}

	outcome, err := h.tradingService.Swap(c.Request.Context(), address, fromToken, toToken, req.Amount)
	if err != nil {
		util.SendError(c, err)
		return
	}

	util.SendSuccess(c, gin.H{
		"from_token": outcome.FromToken,
		"to_token":   outcome.ToToken,
		"amount_in":  outcome.AmountIn,
		"amount_out": outcome.AmountOut,
		"balances":   outcome.Account.Balances,
	})
}

// Stake locks tokens for yield
// POST /api/v1/stake
func (h *TradingHandler) Stake(c *gin.Context) {
	h.balanceOp(c, h.tradingService.Stake)
}

// Unstake releases staked tokens
// POST /api/v1/unstake
func (h *TradingHandler) Unstake(c *gin.Context) {
	h.balanceOp(c, h.tradingService.Unstake)
}

// Lend supplies tokens to the lending pool
// POST /api/v1/lend
func (h *TradingHandler) Lend(c *gin.Context) {
	h.balanceOp(c, h.tradingService.Lend)
}

// YieldFarm locks tokens into the farm
// POST /api/v1/yield-farm
func (h *TradingHandler) YieldFarm(c *gin.Context) {
	h.balanceOp(c, h.tradingService.YieldFarm)
}

// Borrow opens a collateralized debt position
// POST /api/v1/borrow
func (h *TradingHandler) Borrow(c *gin.Context) {
	address := middleware.PlayerAddress(c)

	var req model.BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.SendValidationError(c, err.Error())
		return
	}
	borrowToken, ok := parseToken(c, req.BorrowToken)
	if !ok {
		return
	}
	collateralToken, ok := parseToken(c, req.CollateralToken)
	if !ok {
		return
	}

	outcome, err := h.tradingService.Borrow(c.Request.Context(), address,
		borrowToken, req.BorrowAmount, collateralToken, req.CollateralAmount)
	if err != nil {
		util.SendError(c, err)
		return
	}

	util.SendSuccess(c, gin.H{
		"borrow_token":      outcome.BorrowToken,
		"borrow_amount":     outcome.BorrowAmount,
		"collateral_token":  outcome.CollateralToken,
		"collateral_amount": outcome.CollateralAmount,
		"balances":          outcome.Account.Balances,
		"collateral":        outcome.Account.Collateral,
		"debt":              outcome.Account.Debt,
	})
}

// Repay pays down outstanding debt, capped at the open amount
// POST /api/v1/repay
func (h *TradingHandler) Repay(c *gin.Context) {
	address := middleware.PlayerAddress(c)

	var req model.RepayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.SendValidationError(c, err.Error())
		return
	}
	token, ok := parseToken(c, req.Token)
	if !ok {
		return
	}

	outcome, err := h.tradingService.Repay(c.Request.Context(), address, token, req.Amount)
	if err != nil {
		util.SendError(c, err)
		return
	}

	util.SendSuccess(c, gin.H{
		"token":          outcome.Token,
		"repaid":         outcome.Repaid,
		"remaining_debt": outcome.RemainingDebt,
		"balances":       outcome.Account.Balances,
		"debt":           outcome.Account.Debt,
	})
}

// FlashLoan settles a same-step borrow-and-repay for a fee
// POST /api/v1/flash-loan
func (h *TradingHandler) FlashLoan(c *gin.Context) {
	address := middleware.PlayerAddress(c)

	var req model.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.SendValidationError(c, err.Error())
		return
	}
	token, ok := parseToken(c, req.Token)
	if !ok {
		return
	}

	outcome, err := h.tradingService.FlashLoan(c.Request.Context(), address, token, req.Amount)
	if err != nil {
		util.SendError(c, err)
		return
	}

	util.SendSuccess(c, gin.H{
		"token":    outcome.Token,
		"amount":   outcome.Amount,
		"fee":      outcome.Fee,
		"balances": outcome.Account.Balances,
	})
}

// Vote records a governance vote
// POST /api/v1/governance/vote
func (h *TradingHandler) Vote(c *gin.Context) {
	address := middleware.PlayerAddress(c)

	var req model.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.SendValidationError(c, err.Error())
		return
	}

	if err := h.tradingService.Vote(c.Request.Context(), address, req.ProposalID, req.Support); err != nil {
		util.SendError(c, err)
		return
	}

	util.SendSuccessWithMessage(c, gin.H{
		"proposal_id": req.ProposalID,
		"support":     req.Support,
	}, "Vote recorded")
}

// RecordTrade books a completed trade against a scenario tag
// POST /api/v1/trades/record
func (h *TradingHandler) RecordTrade(c *gin.Context) {
	address := middleware.PlayerAddress(c)

	var req model.RecordTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.SendValidationError(c, err.Error())
		return
	}
	tag, ok := model.ParseScenarioTag(req.ScenarioTag)
	if !ok {
		util.SendError(c, util.ErrBadRequest("Unknown scenario tag: "+req.ScenarioTag))
		return
	}

	account, err := h.tradingService.RecordTrade(c.Request.Context(), address, tag, req.Amount)
	if err != nil {
		util.SendError(c, err)
		return
	}

	util.SendSuccess(c, gin.H{
		"trades_completed": account.TradesCompleted,
		"total_volume":     account.TotalVolume,
		"trade_history":    account.TradeHistory,
	})
}

// UnlockAchievement mints the reward token for an achievement
// POST /api/v1/achievements/unlock
func (h *TradingHandler) UnlockAchievement(c *gin.Context) {
	address := middleware.PlayerAddress(c)

	var req model.UnlockAchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.SendValidationError(c, err.Error())
		return
	}

	account, err := h.tradingService.UnlockAchievement(c.Request.Context(), address, req.AchievementID, req.TokenAmount)
	if err != nil {
		util.SendError(c, err)
		return
	}

	util.SendSuccess(c, gin.H{
		"achievement_id": req.AchievementID,
		"token_amount":   req.TokenAmount,
		"balances":       account.Balances,
	})
}

// balanceOp handles the single-token operations that return the new balances
func (h *TradingHandler) balanceOp(c *gin.Context, op func(ctx context.Context, address string, token model.Token, amount float64) (*model.Account, error)) {
	address := middleware.PlayerAddress(c)

	var req model.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.SendValidationError(c, err.Error())
		return
	}
	token, ok := parseToken(c, req.Token)
	if !ok {
		return
	}

	account, err := op(c.Request.Context(), address, token, req.Amount)
	if err != nil {
		util.SendError(c, err)
		return
	}

	util.SendSuccess(c, gin.H{
		"balances": account.Balances,
		"staked":   account.Staked,
	})
}
