package redis

import "fmt"

// Redis key patterns for the application
// Following the pattern: entity:id or entity:id:attribute

// Account keys

func AccountKey(address string) string {
	return fmt.Sprintf("account:%s", address)
}

func AllAccountsKey() string {
	return "accounts:all"
}

// Leaderboard key: sorted set scored by total trade volume
func VolumeLeaderboardKey() string {
	return "rank:total_volume"
}

// Governance keys

func ProposalsKey() string {
	return "governance:proposals"
}

func ProposalVotesKey(proposalID string) string {
	return fmt.Sprintf("governance:votes:%s", proposalID)
}

// Scenario keys

func AccountScenariosKey(address string) string {
	return fmt.Sprintf("account_scenarios:%s", address)
}

// Rate limit keys
func RateLimitKey(identifier, prefix string) string {
	return fmt.Sprintf("rate_limit:%s:%s", prefix, identifier)
}
