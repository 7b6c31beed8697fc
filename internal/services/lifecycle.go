package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/aclauto/internal/models"
	"github.com/example/aclauto/internal/orders"
)

// OrderStore persists CarOrder records. Save must be a full-record replace
// keyed by id.
type OrderStore interface {
	GetOrder(id uuid.UUID) (*models.CarOrder, error)
	SaveOrder(order *models.CarOrder) error
	DeleteOrder(id uuid.UUID) error
}

// ConditionStore owns stock accounting for sale conditions. ReserveUnit must
// be atomic: either it decrements a positive stock_quantity by one, or it
// fails with ErrOutOfStock and leaves the row untouched.
type ConditionStore interface {
	GetCondition(id uuid.UUID) (*models.CarSaleCondition, error)
	ReserveUnit(id uuid.UUID) error
	ReleaseUnit(id uuid.UUID) error
}

// Lifecycle executes order status transitions. Every call site that moves an
// order between statuses goes through here, so the guards in the transition
// table cannot drift across handlers.
type Lifecycle struct {
	orders     OrderStore
	conditions ConditionStore
}

// NewLifecycle constructs a Lifecycle over the given stores.
func NewLifecycle(orderStore OrderStore, conditionStore ConditionStore) *Lifecycle {
	return &Lifecycle{orders: orderStore, conditions: conditionStore}
}

// OrderInput carries the buyer-editable fields of an order.
type OrderInput struct {
	BuyerName     string
	NationalID    string
	Phone         string
	City          string
	Address       string
	PostalCode    string
	CarName       string
	ConditionID   uuid.UUID
	SelectedColor string
	ProposedPrice decimal.Decimal
	UserNotes     string
}

// Create stores a new order as DRAFT, or directly as PENDING_ADMIN when
// submit is set. Submission requires buyer name and phone; drafts do not.
// The condition's terms are frozen into ConditionSummary here.
func (l *Lifecycle) Create(in OrderInput, createdBy uuid.UUID, submit bool) (*models.CarOrder, error) {
	if submit {
		if err := requireBuyerContact(in); err != nil {
			return nil, err
		}
	}

	cond, err := l.conditions.GetCondition(in.ConditionID)
	if err != nil {
		return nil, err
	}

	order := &models.CarOrder{
		BuyerName:        in.BuyerName,
		NationalID:       in.NationalID,
		Phone:            in.Phone,
		City:             in.City,
		Address:          in.Address,
		PostalCode:       in.PostalCode,
		CarName:          in.CarName,
		ConditionID:      cond.ID,
		ConditionSummary: cond.Summary(),
		SelectedColor:    in.SelectedColor,
		ProposedPrice:    in.ProposedPrice,
		UserNotes:        in.UserNotes,
		Status:           orders.StatusDraft,
		CreatedBy:        createdBy,
	}
	if submit {
		order.Status = orders.StatusPendingAdmin
	}

	if err := l.orders.SaveOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

// Update rewrites buyer-editable fields while the order is still DRAFT or
// REJECTED. The condition snapshot is refreshed only if the buyer picks a
// different condition.
func (l *Lifecycle) Update(id uuid.UUID, in OrderInput) (*models.CarOrder, error) {
	order, err := l.orders.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if !orders.Editable(order.Status) {
		return nil, fmt.Errorf("%w: order in status %s is not editable", ErrValidation, order.Status)
	}

	if in.ConditionID != order.ConditionID {
		cond, err := l.conditions.GetCondition(in.ConditionID)
		if err != nil {
			return nil, err
		}
		order.ConditionID = cond.ID
		order.ConditionSummary = cond.Summary()
	}

	order.BuyerName = in.BuyerName
	order.NationalID = in.NationalID
	order.Phone = in.Phone
	order.City = in.City
	order.Address = in.Address
	order.PostalCode = in.PostalCode
	order.CarName = in.CarName
	order.SelectedColor = in.SelectedColor
	order.ProposedPrice = in.ProposedPrice
	order.UserNotes = in.UserNotes

	if err := l.orders.SaveOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

// Submit moves a DRAFT or edited REJECTED order into the admin review queue.
// Resubmission reuses the same order id and strips everything a previous
// approval or payment stamped on it; an order waiting for review carries no
// tracking code, final price or deposit record.
func (l *Lifecycle) Submit(id uuid.UUID) (*models.CarOrder, error) {
	order, err := l.orders.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if !orders.CanTransition(order.Status, orders.StatusPendingAdmin) {
		return nil, &TransitionError{From: order.Status, To: orders.StatusPendingAdmin}
	}
	if order.BuyerName == "" || order.Phone == "" {
		return nil, fmt.Errorf("%w: buyer name and phone are required", ErrValidation)
	}

	order.RejectReason = ""
	order.TrackingCode = ""
	order.FinalPrice = nil
	order.PaidAmount = nil
	order.PaymentNote = ""
	order.DeliveryDeadline = nil
	order.Status = orders.StatusPendingAdmin
	if err := l.orders.SaveOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

// ApproveInput carries the admin decision attached to an approval.
type ApproveInput struct {
	FinalPrice       decimal.Decimal
	DeliveryDeadline *models.LocalTime
	AdminNotes       string
}

// Approve moves a reviewed order to PENDING_PAYMENT: reserves one unit of the
// condition's stock, issues the tracking code and fixes the final price. A
// reservation failure aborts with the order unchanged.
func (l *Lifecycle) Approve(id uuid.UUID, in ApproveInput) (*models.CarOrder, error) {
	order, err := l.orders.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if !orders.CanTransition(order.Status, orders.StatusPendingPayment) {
		return nil, &TransitionError{From: order.Status, To: orders.StatusPendingPayment}
	}
	if !in.FinalPrice.IsPositive() {
		return nil, fmt.Errorf("%w: final price must be positive", ErrValidation)
	}

	if err := l.conditions.ReserveUnit(order.ConditionID); err != nil {
		return nil, err
	}

	code, err := orders.NewTrackingCode()
	if err != nil {
		_ = l.conditions.ReleaseUnit(order.ConditionID)
		return nil, err
	}

	finalPrice := in.FinalPrice
	order.FinalPrice = &finalPrice
	order.TrackingCode = code
	order.DeliveryDeadline = in.DeliveryDeadline
	if in.AdminNotes != "" {
		order.AdminNotes = in.AdminNotes
	}
	order.Status = orders.StatusPendingPayment

	if err := l.orders.SaveOrder(order); err != nil {
		// hand the unit back so a failed write does not leak stock
		_ = l.conditions.ReleaseUnit(order.ConditionID)
		return nil, err
	}
	return order, nil
}

// Reject declines an order under admin review. A non-empty reason is
// mandatory; there is no reservation to return at this stage.
func (l *Lifecycle) Reject(id uuid.UUID, reason string) (*models.CarOrder, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: rejection requires a reason", ErrValidation)
	}

	order, err := l.orders.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if order.Status != orders.StatusPendingAdmin {
		return nil, &TransitionError{From: order.Status, To: orders.StatusRejected}
	}

	order.RejectReason = reason
	order.Status = orders.StatusRejected
	if err := l.orders.SaveOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

// SubmitPayment records the buyer's deposit proof. The amount must equal the
// required deposit exactly; a mismatch fails locally without any store call.
func (l *Lifecycle) SubmitPayment(id uuid.UUID, amount decimal.Decimal, note string) (*models.CarOrder, error) {
	order, err := l.orders.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if !orders.CanTransition(order.Status, orders.StatusPendingFinance) {
		return nil, &TransitionError{From: order.Status, To: orders.StatusPendingFinance}
	}

	required := order.RequiredDeposit()
	if !amount.Equal(required) {
		return nil, &PaymentMismatchError{Required: required}
	}

	order.PaidAmount = &amount
	order.PaymentNote = note
	order.Status = orders.StatusPendingFinance
	if err := l.orders.SaveOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

// FinanceApprove is the finance desk's sign-off on a received deposit.
func (l *Lifecycle) FinanceApprove(id uuid.UUID) (*models.CarOrder, error) {
	return l.advance(id, orders.StatusReadyForDelivery)
}

// IssueExitPermit marks the vehicle as entering the factory exit process.
func (l *Lifecycle) IssueExitPermit(id uuid.UUID) (*models.CarOrder, error) {
	return l.advance(id, orders.StatusExitProcess)
}

// Complete closes the order after final handover.
func (l *Lifecycle) Complete(id uuid.UUID) (*models.CarOrder, error) {
	return l.advance(id, orders.StatusCompleted)
}

func (l *Lifecycle) advance(id uuid.UUID, to orders.Status) (*models.CarOrder, error) {
	order, err := l.orders.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if !orders.CanTransition(order.Status, to) {
		return nil, &TransitionError{From: order.Status, To: to}
	}

	order.Status = to
	if err := l.orders.SaveOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel voids an order from any state that allows it, recording the reason
// and returning the reserved unit if the order was holding one. Like Reject,
// it refuses to proceed without a reason.
func (l *Lifecycle) Cancel(id uuid.UUID, reason string) (*models.CarOrder, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: cancellation requires a reason", ErrValidation)
	}

	order, err := l.orders.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if !orders.CanTransition(order.Status, orders.StatusRejected) {
		return nil, &TransitionError{From: order.Status, To: orders.StatusRejected}
	}

	wasReserving := orders.HoldsReservation(order.Status)

	order.RejectReason = reason
	order.Status = orders.StatusRejected
	if err := l.orders.SaveOrder(order); err != nil {
		return nil, err
	}

	if wasReserving {
		if err := l.conditions.ReleaseUnit(order.ConditionID); err != nil {
			return order, fmt.Errorf("order cancelled but stock not returned: %w", err)
		}
	}
	return order, nil
}

// Delete removes an order that never reached, or has already left, the
// reserving statuses. The release call is defensive; for deletable statuses
// it is a no-op.
func (l *Lifecycle) Delete(id uuid.UUID) error {
	order, err := l.orders.GetOrder(id)
	if err != nil {
		return err
	}
	if !orders.Deletable(order.Status) {
		return fmt.Errorf("%w: order in status %s must be cancelled before deletion", ErrValidation, order.Status)
	}

	wasReserving := orders.HoldsReservation(order.Status)

	if err := l.orders.DeleteOrder(id); err != nil {
		return err
	}
	if wasReserving {
		return l.conditions.ReleaseUnit(order.ConditionID)
	}
	return nil
}

func requireBuyerContact(in OrderInput) error {
	if in.BuyerName == "" || in.Phone == "" {
		return fmt.Errorf("%w: buyer name and phone are required", ErrValidation)
	}
	return nil
}
