package repo

import (
	"botfolio/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewBotSettingsRepo(db *gorm.DB) *BotSettingsRepo {
	return &BotSettingsRepo{
		Repository: orz.NewRepository[models.BotSettings, string](db),
	}
}

type BotSettingsRepo struct {
	orz.Repository[models.BotSettings, string]
}
