package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/aclauto/internal/cache"
	"github.com/example/aclauto/internal/models"
	"github.com/example/aclauto/internal/pricing"
	"github.com/example/aclauto/internal/services"
	"github.com/example/aclauto/internal/utils"
)

// ReviewHandler drives the admin decision flow: load order + condition +
// market stats, compute the advisory, execute the decision through the
// lifecycle.
type ReviewHandler struct {
	db        *gorm.DB
	lifecycle *services.Lifecycle
	stats     *cache.PriceStatsCache
	telegram  *services.TelegramService
}

// NewReviewHandler constructs ReviewHandler.
func NewReviewHandler(db *gorm.DB, lifecycle *services.Lifecycle, stats *cache.PriceStatsCache, telegram *services.TelegramService) *ReviewHandler {
	return &ReviewHandler{db: db, lifecycle: lifecycle, stats: stats, telegram: telegram}
}

// Review returns everything the decision modal needs: the order, its linked
// condition, the model's market stats and the computed price advisory.
func (h *ReviewHandler) Review(c *fiber.Ctx) error {
	order, err := h.loadOrder(c)
	if err != nil {
		return err
	}

	var condition models.CarSaleCondition
	if err := h.db.First(&condition, "id = ?", order.ConditionID).Error; err != nil && err != gorm.ErrRecordNotFound {
		return err
	}

	response := fiber.Map{
		"order":     order,
		"condition": condition,
	}

	// the advisory is informational; a missing stats row just means no
	// warning is shown
	stat, err := h.stats.GetByModel(c.Context(), condition.CarModel)
	if err == nil {
		price := order.RequiredDeposit()
		response["market_stats"] = stat
		response["advisory"] = pricing.Advise(condition.SaleType, stat.MaxPrice, price)
	}

	return c.JSON(fiber.Map{"success": true, "data": response})
}

type approveRequest struct {
	FinalPrice       decimal.Decimal   `json:"final_price" validate:"required"`
	DeliveryDeadline *models.LocalTime `json:"delivery_deadline"`
	AdminNotes       string            `json:"admin_notes"`
}

// Approve moves a reviewed order to PENDING_PAYMENT: one unit of stock is
// reserved atomically, the tracking code is issued and the final price fixed.
func (h *ReviewHandler) Approve(c *fiber.Ctx) error {
	order, err := h.loadOrder(c)
	if err != nil {
		return err
	}

	var req approveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	approved, err := h.lifecycle.Approve(order.ID, services.ApproveInput{
		FinalPrice:       req.FinalPrice,
		DeliveryDeadline: req.DeliveryDeadline,
		AdminNotes:       req.AdminNotes,
	})
	if err != nil {
		return mapServiceError(err)
	}

	if h.telegram != nil {
		notification := services.OrderNotification{
			TrackingCode: approved.TrackingCode,
			CarName:      approved.CarName,
			BuyerName:    approved.BuyerName,
			FinalPrice:   *approved.FinalPrice,
		}
		go func() {
			if err := h.telegram.NotifyOrderApproved(notification); err != nil {
				log.Printf("[Review] Telegram notification failed: %v", err)
			}
		}()
	}

	return c.JSON(fiber.Map{"success": true, "data": approved})
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// Reject declines an order under review. The lifecycle refuses an empty
// reason; the UI opens a forced sub-dialog on that error.
func (h *ReviewHandler) Reject(c *fiber.Ctx) error {
	order, err := h.loadOrder(c)
	if err != nil {
		return err
	}

	var req reasonRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	rejected, err := h.lifecycle.Reject(order.ID, req.Reason)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": rejected})
}

// FinanceApprove is the finance desk's sign-off on the received deposit.
func (h *ReviewHandler) FinanceApprove(c *fiber.Ctx) error {
	return h.advance(c, h.lifecycle.FinanceApprove)
}

// IssueExitPermit marks the vehicle as entering the factory exit process.
func (h *ReviewHandler) IssueExitPermit(c *fiber.Ctx) error {
	return h.advance(c, h.lifecycle.IssueExitPermit)
}

// Complete closes the order after final handover.
func (h *ReviewHandler) Complete(c *fiber.Ctx) error {
	return h.advance(c, h.lifecycle.Complete)
}

// Cancel voids an order from any active state, returning its reserved unit.
func (h *ReviewHandler) Cancel(c *fiber.Ctx) error {
	order, err := h.loadOrder(c)
	if err != nil {
		return err
	}

	var req reasonRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	cancelled, err := h.lifecycle.Cancel(order.ID, req.Reason)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": cancelled})
}

func (h *ReviewHandler) advance(c *fiber.Ctx, step func(uuid.UUID) (*models.CarOrder, error)) error {
	order, err := h.loadOrder(c)
	if err != nil {
		return err
	}

	moved, err := step(order.ID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": moved})
}

func (h *ReviewHandler) loadOrder(c *fiber.Ctx) (*models.CarOrder, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.CarOrder
	if err := h.db.First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}
