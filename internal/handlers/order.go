package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/aclauto/internal/middleware"
	"github.com/example/aclauto/internal/models"
	"github.com/example/aclauto/internal/orders"
	"github.com/example/aclauto/internal/services"
	"github.com/example/aclauto/internal/utils"
)

// OrderHandler manages the buyer-facing order endpoints. Every status move
// goes through the lifecycle service; the handler only parses, authorizes
// and responds.
type OrderHandler struct {
	db        *gorm.DB
	lifecycle *services.Lifecycle
	telegram  *services.TelegramService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, lifecycle *services.Lifecycle, telegram *services.TelegramService) *OrderHandler {
	return &OrderHandler{db: db, lifecycle: lifecycle, telegram: telegram}
}

type orderRequest struct {
	BuyerName     string          `json:"buyer_name"`
	NationalID    string          `json:"national_id"`
	Phone         string          `json:"phone"`
	City          string          `json:"city"`
	Address       string          `json:"address"`
	PostalCode    string          `json:"postal_code"`
	CarName       string          `json:"car_name" validate:"required"`
	ConditionID   string          `json:"condition_id" validate:"required,uuid4"`
	SelectedColor string          `json:"selected_color"`
	ProposedPrice decimal.Decimal `json:"proposed_price" validate:"required"`
	UserNotes     string          `json:"user_notes"`
	Submit        bool            `json:"submit"`
}

func (r *orderRequest) toInput() (services.OrderInput, error) {
	conditionID, err := uuid.Parse(r.ConditionID)
	if err != nil {
		return services.OrderInput{}, fiber.NewError(fiber.StatusBadRequest, "invalid condition_id")
	}
	return services.OrderInput{
		BuyerName:     r.BuyerName,
		NationalID:    r.NationalID,
		Phone:         r.Phone,
		City:          r.City,
		Address:       r.Address,
		PostalCode:    r.PostalCode,
		CarName:       r.CarName,
		ConditionID:   conditionID,
		SelectedColor: r.SelectedColor,
		ProposedPrice: r.ProposedPrice,
		UserNotes:     r.UserNotes,
	}, nil
}

// CreateOrder stores a new order as a draft, or submits it straight into the
// review queue when submit is set.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req orderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	input, err := req.toInput()
	if err != nil {
		return err
	}

	order, err := h.lifecycle.Create(input, userID, req.Submit)
	if err != nil {
		return mapServiceError(err)
	}

	if req.Submit {
		h.notifySubmitted(order)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    order,
	})
}

// UpdateOrder rewrites buyer fields while the order is a draft or was
// rejected.
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	order, err := h.loadOwnOrder(c)
	if err != nil {
		return err
	}

	var req orderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	input, err := req.toInput()
	if err != nil {
		return err
	}

	updated, err := h.lifecycle.Update(order.ID, input)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": updated})
}

// SubmitOrder moves a draft or edited rejected order into the review queue.
func (h *OrderHandler) SubmitOrder(c *fiber.Ctx) error {
	order, err := h.loadOwnOrder(c)
	if err != nil {
		return err
	}

	submitted, err := h.lifecycle.Submit(order.ID)
	if err != nil {
		return mapServiceError(err)
	}

	h.notifySubmitted(submitted)

	return c.JSON(fiber.Map{"success": true, "data": submitted})
}

type paymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Note   string          `json:"note"`
}

// SubmitPayment records the buyer's deposit proof. The amount must match the
// required deposit exactly; the error message carries the exact figure.
func (h *OrderHandler) SubmitPayment(c *fiber.Ctx) error {
	order, err := h.loadOwnOrder(c)
	if err != nil {
		return err
	}

	var req paymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	paid, err := h.lifecycle.SubmitPayment(order.ID, req.Amount, req.Note)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": paid})
}

// DeleteOrder removes a draft, in-review or rejected order.
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	order, err := h.loadOwnOrder(c)
	if err != nil {
		return err
	}

	if err := h.lifecycle.Delete(order.ID); err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// ListOrders returns orders created by the authenticated user.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.CarOrder{}).Where("created_by = ?", userID)

	if status := c.Query("status"); status != "" {
		if !orders.IsValid(orders.Status(status)) {
			return fiber.NewError(fiber.StatusBadRequest, "unknown status filter")
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var records []models.CarOrder
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&records).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    records,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order owned by the authenticated user. Admins
// can fetch any order.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.loadOwnOrder(c)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

func (h *OrderHandler) loadOwnOrder(c *fiber.Ctx) (*models.CarOrder, error) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

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

	if order.CreatedBy != userID && !middleware.IsAdmin(c) {
		return nil, fiber.NewError(fiber.StatusForbidden, "not your order")
	}
	return &order, nil
}

func (h *OrderHandler) notifySubmitted(order *models.CarOrder) {
	if h.telegram == nil {
		return
	}
	notification := services.OrderNotification{
		CarName:          order.CarName,
		ConditionSummary: order.ConditionSummary,
		BuyerName:        order.BuyerName,
		BuyerPhone:       order.Phone,
		ProposedPrice:    order.ProposedPrice,
		Status:           string(order.Status),
	}
	go func() {
		if err := h.telegram.NotifyOrderSubmitted(notification); err != nil {
			log.Printf("[Order] Telegram notification failed: %v", err)
		}
	}()
}
