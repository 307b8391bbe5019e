package service

import (
	"context"
	"fmt"
	"time"

	"arcade/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// ShopItem is a purchasable personal booster
type ShopItem struct {
	ID         string              `json:"id" validate:"required"`
	Name       string              `json:"name" validate:"required"`
	Price      int64               `json:"price" validate:"gt=0"`
	Kind       models.ModifierKind `json:"kind" validate:"required,oneof=experience_boost currency_boost both"`
	Multiplier decimal.Decimal     `json:"multiplier"`
	Duration   time.Duration       `json:"duration" validate:"gt=0"`
}

// Purchase is the result of a successful purchase
type Purchase struct {
	Item     ShopItem
	Modifier *models.Modifier
	Balance  int64
}

// DefaultCatalog is the booster lineup sold when no catalog is configured
func DefaultCatalog() []ShopItem {
	return []ShopItem{
		{ID: "exp-boost-30m", Name: "EXP Booster (30 min)", Price: 500, Kind: models.ModifierKindExperienceBoost, Multiplier: decimal.NewFromInt(2), Duration: 30 * time.Minute},
		{ID: "exp-boost-2h", Name: "EXP Booster (2 h)", Price: 1500, Kind: models.ModifierKindExperienceBoost, Multiplier: decimal.NewFromInt(2), Duration: 2 * time.Hour},
		{ID: "coin-boost-30m", Name: "Coin Booster (30 min)", Price: 750, Kind: models.ModifierKindCurrencyBoost, Multiplier: decimal.RequireFromString("1.5"), Duration: 30 * time.Minute},
		{ID: "mega-boost-1h", Name: "Mega Booster (1 h)", Price: 3000, Kind: models.ModifierKindBoth, Multiplier: decimal.RequireFromString("1.5"), Duration: time.Hour},
	}
}

type catalog struct {
	Items []ShopItem `validate:"required,min=1,unique=ID,dive"`
}

type shopService struct {
	uowFactory UnitOfWorkFactory
	items      []ShopItem
	byID       map[string]ShopItem
	now        func() time.Time
}

// NewShopService validates the catalog and creates the shop
func NewShopService(uowFactory UnitOfWorkFactory, items []ShopItem) (ShopService, error) {
	if err := validator.New().Struct(catalog{Items: items}); err != nil {
		return nil, fmt.Errorf("invalid shop catalog: %w", err)
	}

	byID := make(map[string]ShopItem, len(items))
	for _, item := range items {
		if item.Multiplier.LessThan(one) {
			return nil, fmt.Errorf("invalid shop catalog: item %s multiplier %s is below 1", item.ID, item.Multiplier)
		}
		byID[item.ID] = item
	}

	return &shopService{
		uowFactory: uowFactory,
		items:      items,
		byID:       byID,
		now:        time.Now,
	}, nil
}

func (s *shopService) Catalog() []ShopItem {
	return append([]ShopItem(nil), s.items...)
}

// Purchase debits the price and activates the booster atomically
func (s *shopService) Purchase(ctx context.Context, guildID, playerID int64, itemID string) (*Purchase, error) {
	item, ok := s.byID[itemID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetOrCreateForUpdate(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	metadata := map[string]any{
		"item_id": item.ID,
		"item":    item.Name,
	}
	if err := changeBalance(ctx, uow, player, -item.Price, models.TransactionTypePurchase, metadata); err != nil {
		return nil, err
	}

	modifier, err := activatePersonal(ctx, uow, playerID, item.Kind, item.Multiplier, item.Duration, item.Name, s.now())
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"guildID":  guildID,
		"playerID": playerID,
		"item":     item.ID,
		"balance":  player.Balance,
	}).Info("Booster purchased")

	return &Purchase{
		Item:     item,
		Modifier: modifier,
		Balance:  player.Balance,
	}, nil
}
