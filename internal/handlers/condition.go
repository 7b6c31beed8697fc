package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/aclauto/internal/models"
	"github.com/example/aclauto/internal/orders"
	"github.com/example/aclauto/internal/utils"
)

// ConditionHandler manages the sale-condition CRUD surface. It never touches
// stock on behalf of orders; reservations belong to the lifecycle.
type ConditionHandler struct {
	db *gorm.DB
}

// NewConditionHandler constructs ConditionHandler.
func NewConditionHandler(db *gorm.DB) *ConditionHandler {
	return &ConditionHandler{db: db}
}

// ListConditions returns paginated conditions, optionally filtered by status
// and car model.
func (h *ConditionHandler) ListConditions(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.CarSaleCondition{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if carModel := c.Query("car_model"); carModel != "" {
		query = query.Where("car_model ILIKE ?", "%"+carModel+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var conditions []models.CarSaleCondition
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&conditions).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    conditions,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetCondition returns a single condition by ID.
func (h *ConditionHandler) GetCondition(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var condition models.CarSaleCondition
	if err := h.db.First(&condition, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "condition not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": condition})
}

type conditionRequest struct {
	CarModel       string          `json:"car_model" validate:"required"`
	ModelYear      string          `json:"model_year" validate:"required"`
	SaleType       string          `json:"sale_type" validate:"required,oneof=TRANSFER NEW_MARKET PRE_SALE"`
	PayType        string          `json:"pay_type"`
	DocumentStatus string          `json:"document_status"`
	Colors         []string        `json:"colors"`
	DeliveryTime   string          `json:"delivery_time"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"`
	StockQuantity  int             `json:"stock_quantity" validate:"gte=0"`
	Status         string          `json:"status" validate:"omitempty,oneof=ACTIVE ARCHIVED"`
}

// CreateCondition publishes a new sellable batch.
func (h *ConditionHandler) CreateCondition(c *fiber.Ctx) error {
	var req conditionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	condition := models.CarSaleCondition{
		CarModel:       req.CarModel,
		ModelYear:      req.ModelYear,
		SaleType:       req.SaleType,
		PayType:        req.PayType,
		DocumentStatus: req.DocumentStatus,
		Colors:         pq.StringArray(req.Colors),
		DeliveryTime:   req.DeliveryTime,
		InitialDeposit: req.InitialDeposit,
		StockQuantity:  req.StockQuantity,
		Status:         req.Status,
	}
	if condition.Status == "" {
		condition.Status = models.ConditionActive
	}

	if err := h.db.Create(&condition).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": condition})
}

// UpdateCondition edits a batch's terms. Orders created earlier keep their
// frozen summary; this does not rewrite any snapshot. The write never touches
// stock_quantity unless the request actually changes it, and a stock edit is
// refused while orders hold reserved units, so an admin edit cannot clobber a
// count the lifecycle just moved.
func (h *ConditionHandler) UpdateCondition(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var condition models.CarSaleCondition
	if err := h.db.First(&condition, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "condition not found")
		}
		return err
	}

	var req conditionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var reservingCount int64
	if err := h.db.Model(&models.CarOrder{}).
		Where("condition_id = ? AND status IN ?", id, orders.ReservingStatuses()).
		Count(&reservingCount).Error; err != nil {
		return err
	}
	if stockEditBlocked(reservingCount, condition.StockQuantity, req.StockQuantity) {
		return fiber.NewError(fiber.StatusConflict, "stock cannot be edited while orders hold reserved units")
	}

	updates := map[string]interface{}{
		"car_model":       req.CarModel,
		"model_year":      req.ModelYear,
		"sale_type":       req.SaleType,
		"pay_type":        req.PayType,
		"document_status": req.DocumentStatus,
		"colors":          pq.StringArray(req.Colors),
		"delivery_time":   req.DeliveryTime,
		"initial_deposit": req.InitialDeposit,
		"updated_at":      models.NewLocalTime(time.Now()),
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.StockQuantity != condition.StockQuantity {
		updates["stock_quantity"] = req.StockQuantity
	}

	if err := h.db.Model(&condition).Updates(updates).Error; err != nil {
		return err
	}
	if err := h.db.First(&condition, "id = ?", id).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": condition})
}

// stockEditBlocked reports whether a requested stock_quantity change must be
// refused because orders currently hold reserved units against the condition.
// Unchanged stock is always fine; the column is then left out of the write.
func stockEditBlocked(reserving int64, current, requested int) bool {
	return requested != current && reserving > 0
}

// DeleteCondition removes a batch. Refused while any order still holds a
// reserved unit against it.
func (h *ConditionHandler) DeleteCondition(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var reservingCount int64
	if err := h.db.Model(&models.CarOrder{}).
		Where("condition_id = ? AND status IN ?", id, orders.ReservingStatuses()).
		Count(&reservingCount).Error; err != nil {
		return err
	}
	if reservingCount > 0 {
		return fiber.NewError(fiber.StatusConflict, "condition still has orders holding reserved units")
	}

	var referencingCount int64
	if err := h.db.Model(&models.CarOrder{}).
		Where("condition_id = ?", id).
		Count(&referencingCount).Error; err != nil {
		return err
	}
	if referencingCount > 0 {
		return fiber.NewError(fiber.StatusConflict, "orders still reference this condition; archive it instead")
	}

	res := h.db.Delete(&models.CarSaleCondition{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "condition not found")
	}

	return c.JSON(fiber.Map{"success": true})
}
