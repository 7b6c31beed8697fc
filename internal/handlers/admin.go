package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/aclauto/internal/models"
	"github.com/example/aclauto/internal/orders"
	"github.com/example/aclauto/internal/utils"
)

// AdminHandler manages the admin dashboard and the full order list.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var totalOrders int64
	if err := h.db.Model(&models.CarOrder{}).Count(&totalOrders).Error; err != nil {
		return err
	}

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var statusCounts []statusCount
	if err := h.db.Model(&models.CarOrder{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return err
	}

	ordersByStatus := make(map[string]int64)
	for _, sc := range statusCounts {
		ordersByStatus[sc.Status] = sc.Count
	}

	var pendingReview int64
	if err := h.db.Model(&models.CarOrder{}).
		Where("status = ?", string(orders.StatusPendingAdmin)).
		Count(&pendingReview).Error; err != nil {
		return err
	}

	// revenue counts only units actually sold through, i.e. reserving orders
	var totalRevenue float64
	if err := h.db.Model(&models.CarOrder{}).
		Where("status IN ?", orders.ReservingStatuses()).
		Select("COALESCE(SUM(final_price), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return err
	}

	var totalStock int64
	if err := h.db.Model(&models.CarSaleCondition{}).
		Where("status = ?", models.ConditionActive).
		Select("COALESCE(SUM(stock_quantity), 0)").
		Scan(&totalStock).Error; err != nil {
		return err
	}

	var activeConditions int64
	if err := h.db.Model(&models.CarSaleCondition{}).
		Where("status = ?", models.ConditionActive).
		Count(&activeConditions).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_orders":      totalOrders,
			"orders_by_status":  ordersByStatus,
			"pending_review":    pendingReview,
			"total_revenue":     totalRevenue,
			"remaining_stock":   totalStock,
			"active_conditions": activeConditions,
		},
	})
}

// ListAllOrders returns all orders with pagination, filtering, and creator
// info.
func (h *AdminHandler) ListAllOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.CarOrder{})

	if status := c.Query("status"); status != "" {
		if !orders.IsValid(orders.Status(status)) {
			return fiber.NewError(fiber.StatusBadRequest, "unknown status filter")
		}
		query = query.Where("status = ?", status)
	}

	if search := c.Query("search"); search != "" {
		query = query.Where(
			"tracking_code ILIKE ? OR buyer_name ILIKE ? OR phone ILIKE ? OR car_name ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%", "%"+search+"%",
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var records []models.CarOrder
	if err := query.Preload("User").Preload("Condition").
		Order("created_at desc").
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
