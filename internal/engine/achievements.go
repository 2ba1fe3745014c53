package engine

import (
	"defidojo/backend/internal/ledger"
	"defidojo/backend/internal/model"
	"defidojo/backend/pkg/logger"
)

// AchievementController gates the one-shot achievement token mint.
// This is the only path that mints ACH.
type AchievementController struct {
	ledger *ledger.Ledger
	log    *logger.Logger
}

// NewAchievementController creates an achievement controller
func NewAchievementController(l *ledger.Ledger) *AchievementController {
	return &AchievementController{
		ledger: l,
		log:    logger.GetLogger(),
	}
}

// Unlock grants an achievement and mints its reward. A second unlock
// of the same achievement fails with ErrAlreadyUnlocked and mints
// nothing.
func (c *AchievementController) Unlock(address, achievementID string, tokenAmount float64) (*model.Account, error) {
	if tokenAmount <= 0 {
		return nil, ledger.ErrInvalidAmount
	}

	snap, err := c.ledger.Update(ledger.CallerAchievements, address, func(tx *ledger.Tx) error {
		if tx.HasAchievement(achievementID) {
			return ErrAlreadyUnlocked
		}
		tx.GrantAchievement(achievementID)
		return tx.Credit(model.TokenACH, tokenAmount)
	})
	if err != nil {
		return nil, err
	}

	c.log.WithFields(map[string]interface{}{
		"address":      address,
		"achievement":  achievementID,
		"token_amount": tokenAmount,
	}).Info("Achievement unlocked")

	return snap, nil
}
