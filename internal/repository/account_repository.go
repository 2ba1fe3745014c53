// Package repository provides the document-store collaborator: full
// Account records snapshotted to Redis after each committed operation,
// plus the volume leaderboard the UI reads. The in-memory ledger stays
// authoritative; this layer only mirrors committed state.
package repository

import (
	"context"
	"errors"

	"defidojo/backend/internal/model"
	"defidojo/backend/pkg/redis"

	redislib "github.com/redis/go-redis/v9"
)

// ErrAccountNotFound is returned when no snapshot exists for an address
var ErrAccountNotFound = errors.New("account snapshot not found")

// AccountRepository persists account snapshots
type AccountRepository struct {
	redis *redis.Client
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(redisClient *redis.Client) *AccountRepository {
	return &AccountRepository{
		redis: redisClient,
	}
}

// Save stores the full account record and refreshes the leaderboard
func (r *AccountRepository) Save(ctx context.Context, account *model.Account) error {
	key := redis.AccountKey(account.Address)
	if err := r.redis.SetJSON(ctx, key, account, 0); err != nil {
		return err
	}

	if err := r.redis.SAdd(ctx, redis.AllAccountsKey(), account.Address); err != nil {
		return err
	}

	return r.redis.ZAdd(ctx, redis.VolumeLeaderboardKey(), redislib.Z{
		Score:  account.TotalVolume,
		Member: account.Address,
	})
}

// Get loads an account snapshot by address
func (r *AccountRepository) Get(ctx context.Context, address string) (*model.Account, error) {
	key := redis.AccountKey(address)

	var account model.Account
	if err := r.redis.GetJSON(ctx, key, &account); err != nil {
		if err == redislib.Nil {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	return &account, nil
}

// List loads every snapshotted account
func (r *AccountRepository) List(ctx context.Context) ([]*model.Account, error) {
	addresses, err := r.redis.SMembers(ctx, redis.AllAccountsKey())
	if err != nil {
		return nil, err
	}

	accounts := make([]*model.Account, 0, len(addresses))
	for _, address := range addresses {
		account, err := r.Get(ctx, address)
		if err != nil {
			continue // Skip stale index entries
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}

// Leaderboard returns the top accounts by total trade volume
func (r *AccountRepository) Leaderboard(ctx context.Context, limit int64) ([]*model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.redis.ZRevRangeWithScores(ctx, redis.VolumeLeaderboardKey(), 0, limit-1)
	if err != nil {
		return nil, err
	}

	entries := make([]*model.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		address, ok := row.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, &model.LeaderboardEntry{
			Rank:        i + 1,
			Address:     address,
			TotalVolume: row.Score,
		})
	}

	return entries, nil
}

// MarkScenarioStarted records that a player has begun a scenario
func (r *AccountRepository) MarkScenarioStarted(ctx context.Context, address string, tag model.ScenarioTag) error {
	return r.redis.SAdd(ctx, redis.AccountScenariosKey(address), string(tag))
}

// ScenarioStarted checks whether a player has already begun a scenario
func (r *AccountRepository) ScenarioStarted(ctx context.Context, address string, tag model.ScenarioTag) (bool, error) {
	return r.redis.SIsMember(ctx, redis.AccountScenariosKey(address), string(tag))
}
