package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/aclauto/internal/cache"
	"github.com/example/aclauto/internal/models"
	"github.com/example/aclauto/internal/pricing"
	"github.com/example/aclauto/internal/utils"
)

// PriceStatsHandler serves market price aggregates and the price advisory.
type PriceStatsHandler struct {
	db    *gorm.DB
	stats *cache.PriceStatsCache
}

// NewPriceStatsHandler constructs PriceStatsHandler.
func NewPriceStatsHandler(db *gorm.DB, stats *cache.PriceStatsCache) *PriceStatsHandler {
	return &PriceStatsHandler{db: db, stats: stats}
}

// ListStats returns every market aggregate, cache first.
func (h *PriceStatsHandler) ListStats(c *fiber.Ctx) error {
	stats, err := h.stats.GetAll(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": stats})
}

type upsertStatsRequest struct {
	CarModel    string          `json:"car_model" validate:"required"`
	MinPrice    decimal.Decimal `json:"min_price" validate:"required"`
	AvgPrice    decimal.Decimal `json:"avg_price" validate:"required"`
	MaxPrice    decimal.Decimal `json:"max_price" validate:"required"`
	SampleCount int             `json:"sample_count" validate:"gte=0"`
}

// UpsertStats receives a fresh aggregate from the scraper feed, keyed by car
// model, and drops the stale cache entries.
func (h *PriceStatsHandler) UpsertStats(c *fiber.Ctx) error {
	var req upsertStatsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	stat := models.CarPriceStats{
		CarModel:    req.CarModel,
		MinPrice:    req.MinPrice,
		AvgPrice:    req.AvgPrice,
		MaxPrice:    req.MaxPrice,
		SampleCount: req.SampleCount,
		CollectedAt: models.NewLocalTime(time.Now()),
	}

	if err := h.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "car_model"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"min_price", "avg_price", "max_price", "sample_count", "collected_at", "updated_at",
		}),
	}).Create(&stat).Error; err != nil {
		return err
	}

	h.stats.Invalidate(c.Context(), req.CarModel)

	return c.JSON(fiber.Map{"success": true, "data": stat})
}

// Advisory computes the underselling advisory for a car model, sale type and
// candidate price. Informational only.
func (h *PriceStatsHandler) Advisory(c *fiber.Ctx) error {
	carModel := c.Query("car_model")
	saleType := c.Query("sale_type")
	rawPrice := c.Query("price")
	if carModel == "" || saleType == "" || rawPrice == "" {
		return fiber.NewError(fiber.StatusBadRequest, "car_model, sale_type and price are required")
	}

	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid price")
	}

	stat, err := h.stats.GetByModel(c.Context(), carModel)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "no market stats for this model")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"market_stats": stat,
			"advisory":     pricing.Advise(saleType, stat.MaxPrice, price),
		},
	})
}
