package service

import (
	"context"

	"defidojo/backend/internal/ledger"
	"defidojo/backend/internal/model"
	"defidojo/backend/internal/repository"
	"defidojo/backend/internal/util"
	"defidojo/backend/pkg/jwt"
	"defidojo/backend/pkg/logger"
)

// PlayerService handles sessions, registration, queries and scenario
// funding for players
type PlayerService struct {
	ledger         *ledger.Ledger
	accountRepo    *repository.AccountRepository
	governanceRepo *repository.GovernanceRepository
	sessions       *jwt.Manager
	log            *logger.Logger
}

// NewPlayerService creates a player service
func NewPlayerService(
	l *ledger.Ledger,
	accountRepo *repository.AccountRepository,
	governanceRepo *repository.GovernanceRepository,
	sessions *jwt.Manager,
) *PlayerService {
	return &PlayerService{
		ledger:         l,
		accountRepo:    accountRepo,
		governanceRepo: governanceRepo,
		sessions:       sessions,
		log:            logger.GetLogger(),
	}
}

// OpenSession issues a demo session token for a wallet-like address.
// There is no password: the game trusts the address the UI presents.
func (s *PlayerService) OpenSession(address string) (*model.SessionResponse, error) {
	token, err := s.sessions.Generate(address)
	if err != nil {
		return nil, util.ErrInternalServer("Failed to issue session token")
	}
	return &model.SessionResponse{
		Address:     address,
		AccessToken: token,
		ExpiresIn:   int64(s.sessions.TokenDuration().Seconds()),
	}, nil
}

// ValidateSession resolves a bearer token to a player address
func (s *PlayerService) ValidateSession(token string) (string, error) {
	claims, err := s.sessions.Validate(token)
	if err != nil {
		return "", util.ErrUnauthorized("Invalid or expired session token")
	}
	return claims.Address, nil
}

// Register activates an account. Fails if it is already registered.
func (s *PlayerService) Register(ctx context.Context, address string) (*model.PlayerInfo, error) {
	account, err := s.ledger.Register(ledger.CallerSystem, address)
	if err != nil {
		return nil, toAppError(err)
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		s.log.WithFields(map[string]interface{}{
			"address": address,
		}).Error("Failed to persist registered account", err)
	}

	s.log.Infof("Player registered: %s", address)
	return account.ToPlayerInfo(), nil
}

// GetPlayerInfo returns the aggregate player view
func (s *PlayerService) GetPlayerInfo(address string) *model.PlayerInfo {
	return s.ledger.Snapshot(address).ToPlayerInfo()
}

// GetAccount returns the full committed account snapshot
func (s *PlayerService) GetAccount(address string) *model.Account {
	return s.ledger.Snapshot(address)
}

// GetBalance returns the spendable balance for one token
func (s *PlayerService) GetBalance(address string, token model.Token) float64 {
	return s.ledger.Snapshot(address).Balances[token]
}

// GetCollateral returns the locked collateral for one token
func (s *PlayerService) GetCollateral(address string, token model.Token) float64 {
	return s.ledger.Snapshot(address).Collateral[token]
}

// GetDebt returns the outstanding debt for one token
func (s *PlayerService) GetDebt(address string, token model.Token) float64 {
	return s.ledger.Snapshot(address).Debt[token]
}

// GetStaked returns the staked amount for one token
func (s *PlayerService) GetStaked(address string, token model.Token) float64 {
	return s.ledger.Snapshot(address).Staked[token]
}

// Leaderboard returns the top players by total trade volume
func (s *PlayerService) Leaderboard(ctx context.Context, limit int64) ([]*model.LeaderboardEntry, error) {
	entries, err := s.accountRepo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, util.ErrInternalServer("Failed to load leaderboard")
	}
	return entries, nil
}

// StartScenario funds a player with a scenario's starting balances.
// Each scenario can be started once per player.
func (s *PlayerService) StartScenario(ctx context.Context, address string, tag model.ScenarioTag) (*model.ScenarioState, error) {
	state, err := model.NewScenarioState(tag)
	if err != nil {
		return nil, util.ErrBadRequest("Unknown scenario tag")
	}

	started, err := s.accountRepo.ScenarioStarted(ctx, address, tag)
	if err != nil {
		return nil, util.ErrInternalServer("Failed to check scenario state")
	}
	if started {
		return nil, util.ErrConflict("Scenario already started")
	}

	account, err := s.ledger.Update(ledger.CallerSystem, address, func(tx *ledger.Tx) error {
		for token, amount := range state.StartingBalances {
			if err := tx.Credit(token, amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, toAppError(err)
	}

	if err := s.accountRepo.MarkScenarioStarted(ctx, address, tag); err != nil {
		s.log.Error("Failed to mark scenario started", err)
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		s.log.Error("Failed to persist scenario funding", err)
	}

	if len(state.ProposalIDs) > 0 {
		if err := s.governanceRepo.SeedProposals(ctx, state.ProposalIDs...); err != nil {
			s.log.Error("Failed to seed scenario proposals", err)
		}
	}

	s.log.WithFields(map[string]interface{}{
		"address":  address,
		"scenario": tag,
	}).Info("Scenario started")

	return state, nil
}

// ListScenarios returns every defined scenario state
func (s *PlayerService) ListScenarios() []*model.ScenarioState {
	tags := model.AllScenarios()
	states := make([]*model.ScenarioState, 0, len(tags))
	for _, tag := range tags {
		state, err := model.NewScenarioState(tag)
		if err != nil {
			continue
		}
		states = append(states, state)
	}
	return states
}

// ListProposals returns the open governance proposals
func (s *PlayerService) ListProposals(ctx context.Context) ([]string, error) {
	proposals, err := s.governanceRepo.ListProposals(ctx)
	if err != nil {
		return nil, util.ErrInternalServer("Failed to load proposals")
	}
	return proposals, nil
}
