package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"defidojo/backend/internal/config"
	"defidojo/backend/internal/ledger"
	"defidojo/backend/internal/model"
	"defidojo/backend/internal/repository"
	"defidojo/backend/pkg/redis"

	"github.com/joho/godotenv"
)

// Seeds demo players, their starting balances and the open governance
// proposals into Redis so a fresh install has something to show.
func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize Redis
	redisClient, err := redis.New(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	ctx := context.Background()
	accountRepo := repository.NewAccountRepository(redisClient)
	governanceRepo := repository.NewGovernanceRepository(redisClient)

	// Open the standing governance proposals
	proposals := []string{"DIP-1", "DIP-2", "DIP-3"}
	if err := governanceRepo.SeedProposals(ctx, proposals...); err != nil {
		log.Fatalf("Failed to seed proposals: %v", err)
	}
	fmt.Printf("Seeded %d governance proposals\n", len(proposals))

	// Demo players, funded with the intro scenario balances
	demoAddresses := []string{"0xdemo-alice", "0xdemo-bob"}
	bank := ledger.New()

	for _, address := range demoAddresses {
		if _, err := bank.Register(ledger.CallerSystem, address); err != nil {
			log.Fatalf("Failed to register %s: %v", address, err)
		}

		state, err := model.NewScenarioState(model.ScenarioIntroTrading)
		if err != nil {
			log.Fatalf("Failed to build scenario state: %v", err)
		}

		account, err := bank.Update(ledger.CallerSystem, address, func(tx *ledger.Tx) error {
			for token, amount := range state.StartingBalances {
				if err := tx.Credit(token, amount); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			log.Fatalf("Failed to fund %s: %v", address, err)
		}

		if err := accountRepo.Save(ctx, account); err != nil {
			log.Fatalf("Failed to persist %s: %v", address, err)
		}
		if err := accountRepo.MarkScenarioStarted(ctx, address, model.ScenarioIntroTrading); err != nil {
			log.Fatalf("Failed to mark scenario for %s: %v", address, err)
		}

		fmt.Printf("Seeded demo player %s\n", address)
	}

	fmt.Println("Seed complete")
}
