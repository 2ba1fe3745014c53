package repository

import (
	"context"
	"fmt"

	"defidojo/backend/pkg/redis"
)

// GovernanceRepository stores the open proposal set and recorded votes.
// It implements the trading engine's ProposalStore.
type GovernanceRepository struct {
	redis *redis.Client
}

// NewGovernanceRepository creates a new governance repository
func NewGovernanceRepository(redisClient *redis.Client) *GovernanceRepository {
	return &GovernanceRepository{
		redis: redisClient,
	}
}

// SeedProposals registers proposal ids as open for voting
func (r *GovernanceRepository) SeedProposals(ctx context.Context, proposalIDs ...string) error {
	for _, id := range proposalIDs {
		if err := r.redis.SAdd(ctx, redis.ProposalsKey(), id); err != nil {
			return err
		}
	}
	return nil
}

// ListProposals returns the open proposal ids
func (r *GovernanceRepository) ListProposals(ctx context.Context) ([]string, error) {
	return r.redis.SMembers(ctx, redis.ProposalsKey())
}

// Exists checks whether a proposal id is open for voting
func (r *GovernanceRepository) Exists(ctx context.Context, proposalID string) (bool, error) {
	return r.redis.SIsMember(ctx, redis.ProposalsKey(), proposalID)
}

// RecordVote stores one vote per voter per proposal. Re-voting
// overwrites the previous choice.
func (r *GovernanceRepository) RecordVote(ctx context.Context, proposalID, address string, support bool) error {
	return r.redis.HSet(ctx, redis.ProposalVotesKey(proposalID), address, fmt.Sprintf("%t", support))
}

// Votes returns every recorded vote on a proposal, keyed by voter
func (r *GovernanceRepository) Votes(ctx context.Context, proposalID string) (map[string]string, error) {
	return r.redis.HGetAll(ctx, redis.ProposalVotesKey(proposalID))
}
