package service

import (
	"context"

	"defidojo/backend/internal/engine"
	"defidojo/backend/internal/model"
	"defidojo/backend/internal/repository"
	"defidojo/backend/pkg/logger"

	"github.com/google/uuid"
)

// TradingService drives the trading engine and mirrors every committed
// operation out to the document store and the WebSocket hub. The engine
// and ledger stay authoritative; persistence or broadcast failures are
// logged, never rolled back into the ledger.
type TradingService struct {
	engine       *engine.Engine
	achievements *engine.AchievementController
	accountRepo  *repository.AccountRepository
	hub          *WSHub
	log          *logger.Logger
}

// NewTradingService creates a trading service
func NewTradingService(
	eng *engine.Engine,
	achievements *engine.AchievementController,
	accountRepo *repository.AccountRepository,
	hub *WSHub,
) *TradingService {
	return &TradingService{
		engine:       eng,
		achievements: achievements,
		accountRepo:  accountRepo,
		hub:          hub,
		log:          logger.GetLogger(),
	}
}

// Buy purchases tokens against the vUSDC balance
func (s *TradingService) Buy(ctx context.Context, address string, token model.Token, amount float64) (*engine.TradeOutcome, error) {
	outcome, err := s.engine.Buy(address, token, amount)
	if err != nil {
		return nil, toAppError(err)
	}
	s.committed(ctx, outcome.Account, &model.WSTradePayload{
		EventID:   uuid.New().String(),
		Address:   address,
		Operation: "buy",
		Token:     token,
		Amount:    amount,
		Cost:      outcome.Cost,
		Balances:  outcome.Account.Balances,
	})
	return outcome, nil
}

// Sell disposes tokens for vUSDC
func (s *TradingService) Sell(ctx context.Context, address string, token model.Token, amount float64) (*engine.TradeOutcome, error) {
	outcome, err := s.engine.Sell(address, token, amount)
	if err != nil {
		return nil, toAppError(err)
	}
	s.committed(ctx, outcome.Account, &model.WSTradePayload{
		EventID:   uuid.New().String(),
		Address:   address,
		Operation: "sell",
		Token:     token,
		Amount:    amount,
		Proceeds:  outcome.Proceeds,
		Balances:  outcome.Account.Balances,
	})
	return outcome, nil
}

// Swap converts one token into another
func (s *TradingService) Swap(ctx context.Context, address string, from, to model.Token, amount float64) (*engine.SwapOutcome, error) {
	outcome, err := s.engine.Swap(address, from, to, amount)
	if err != nil {
		return nil, toAppError(err)
	}
	s.committed(ctx, outcome.Account, &model.WSTradePayload{
		EventID:   uuid.New().String(),
		Address:   address,
		Operation: "swap",
		Token:     to,
		Amount:    outcome.AmountOut,
		Balances:  outcome.Account.Balances,
	})
	return outcome, nil
}

// Stake locks tokens for yield
func (s *TradingService) Stake(ctx context.Context, address string, token model.Token, amount float64) (*model.Account, error) {
	account, err := s.engine.Stake(address, token, amount)
	if err != nil {
		return nil, toAppError(err)
	}
	s.committed(ctx, account, nil)
	return account, nil
}

// Unstake releases staked tokens back to the spendable balance
func (s *TradingService) Unstake(ctx context.Context, address string, token model.Token, amount float64) (*model.Account, error) {
	account, err := s.engine.Unstake(address, token, amount)
	if err != nil {
		return nil, toAppError(err)
	}
	s.committed(ctx, account, nil)
	return account, nil
}

// Lend supplies tokens to the external lending pool
func (s *TradingService) Lend(ctx context.Context, address string, token model.Token, amount float64) (*model.Account, error) {
	account, err := s.engine.Lend(address, token, amount)
	if err != nil {
		return nil, toAppError(err)
	}
	s.committed(ctx, account, nil)
	return account, nil
}

// Borrow opens a collateralized debt position
func (s *TradingService) Borrow(ctx context.Context, address string, borrowToken model.Token, borrowAmount float64, collateralToken model.Token, collateralAmount float64) (*engine.BorrowOutcome, error) {
	outcome, err := s.engine.Borrow(address, borrowToken, borrowAmount, collateralToken, collateralAmount)
	if err != nil {
		return nil, toAppError(err)
	}
	s.committed(ctx, outcome.Account, nil)
	return outcome, nil
}

// Repay pays down debt, capped at the outstanding amount
func (s *TradingService) Repay(ctx context.Context, address string, token model.Token, amount float64) (*engine.RepayOutcome, error) {
	outcome, err := s.engine.Repay(address, token, amount)
	if err != nil {
		return nil, toAppError(err)
	}
	s.committed(ctx, outcome.Account, nil)
	return outcome, nil
}

// FlashLoan settles a same-step borrow-and-repay, net of the fee
func (s *TradingService) FlashLoan(ctx context.Context, address string, token model.Token, amount float64) (*engine.FlashLoanOutcome, error) {
	outcome, err := s.engine.FlashLoan(address, token, amount)
	if err != nil {
		return nil, toAppError(err)
	}
	s.committed(ctx, outcome.Account, &model.WSTradePayload{
		EventID:   uuid.New().String(),
		Address:   address,
		Operation: "flash_loan",
		Token:     token,
		Amount:    amount,
		Cost:      outcome.Fee,
		Balances:  outcome.Account.Balances,
	})
	return outcome, nil
}

// YieldFarm locks tokens into the external farm
func (s *TradingService) YieldFarm(ctx context.Context, address string, token model.Token, amount float64) (*model.Account, error) {
	account, err := s.engine.YieldFarm(address, token, amount)
	if err != nil {
		return nil, toAppError(err)
	}
	s.committed(ctx, account, nil)
	return account, nil
}

// Vote records a governance vote
func (s *TradingService) Vote(ctx context.Context, address, proposalID string, support bool) error {
	if err := s.engine.Vote(ctx, address, proposalID, support); err != nil {
		return toAppError(err)
	}
	return nil
}

// RecordTrade books a completed trade against a scenario tag
func (s *TradingService) RecordTrade(ctx context.Context, address string, tag model.ScenarioTag, amount float64) (*model.Account, error) {
	account, err := s.engine.RecordTrade(address, tag, amount)
	if err != nil {
		return nil, toAppError(err)
	}
	s.committed(ctx, account, nil)
	return account, nil
}

// UnlockAchievement mints the reward token for a fresh achievement
func (s *TradingService) UnlockAchievement(ctx context.Context, address, achievementID string, tokenAmount float64) (*model.Account, error) {
	account, err := s.achievements.Unlock(address, achievementID, tokenAmount)
	if err != nil {
		return nil, toAppError(err)
	}
	s.committed(ctx, account, nil)
	if s.hub != nil {
		s.hub.SendToPlayer(address, model.WSMessage{
			Type: model.MessageTypeAchievementUnlock,
			Payload: &model.WSAchievementPayload{
				Address:       address,
				AchievementID: achievementID,
				TokenAmount:   tokenAmount,
			},
		})
	}
	return account, nil
}

// committed mirrors a committed account state out to Redis and,
// optionally, to the player's WebSocket connections
func (s *TradingService) committed(ctx context.Context, account *model.Account, trade *model.WSTradePayload) {
	if err := s.accountRepo.Save(ctx, account); err != nil {
		s.log.WithFields(map[string]interface{}{
			"address": account.Address,
		}).Error("Failed to persist account snapshot", err)
	}

	if s.hub == nil {
		return
	}
	if trade != nil {
		s.hub.SendToPlayer(account.Address, model.WSMessage{
			Type:    model.MessageTypeTradeUpdate,
			Payload: trade,
		})
	} else {
		s.hub.SendToPlayer(account.Address, model.WSMessage{
			Type: model.MessageTypeBalanceUpdate,
			Payload: &model.WSTradePayload{
				Address:  account.Address,
				Balances: account.Balances,
			},
		})
	}
}
