package services

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/aclauto/internal/models"
	"github.com/example/aclauto/internal/orders"
)

type memOrderStore struct {
	records map[uuid.UUID]models.CarOrder
	saves   int
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{records: make(map[uuid.UUID]models.CarOrder)}
}

func (s *memOrderStore) GetOrder(id uuid.UUID) (*models.CarOrder, error) {
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := rec
	return &copied, nil
}

func (s *memOrderStore) SaveOrder(order *models.CarOrder) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.records[order.ID] = *order
	s.saves++
	return nil
}

func (s *memOrderStore) DeleteOrder(id uuid.UUID) error {
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

type memConditionStore struct {
	records  map[uuid.UUID]models.CarSaleCondition
	releases int
}

func newMemConditionStore() *memConditionStore {
	return &memConditionStore{records: make(map[uuid.UUID]models.CarSaleCondition)}
}

func (s *memConditionStore) GetCondition(id uuid.UUID) (*models.CarSaleCondition, error) {
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := rec
	return &copied, nil
}

func (s *memConditionStore) ReserveUnit(id uuid.UUID) error {
	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	if rec.StockQuantity <= 0 {
		return ErrOutOfStock
	}
	rec.StockQuantity--
	s.records[id] = rec
	return nil
}

func (s *memConditionStore) ReleaseUnit(id uuid.UUID) error {
	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.StockQuantity++
	s.records[id] = rec
	s.releases++
	return nil
}

type fixture struct {
	lc     *Lifecycle
	orders *memOrderStore
	conds  *memConditionStore
	condID uuid.UUID
}

func newFixture(t *testing.T, stock int) *fixture {
	t.Helper()
	conds := newMemConditionStore()
	condID := uuid.New()
	conds.records[condID] = models.CarSaleCondition{
		BaseModel:      models.BaseModel{ID: condID},
		CarModel:       "Tara",
		ModelYear:      "1404",
		SaleType:       models.SaleTypeTransfer,
		PayType:        "cash",
		DocumentStatus: "ready",
		DeliveryTime:   "30 days",
		InitialDeposit: decimal.NewFromInt(500),
		StockQuantity:  stock,
		Status:         models.ConditionActive,
	}

	ordersStore := newMemOrderStore()
	return &fixture{
		lc:     NewLifecycle(ordersStore, conds),
		orders: ordersStore,
		conds:  conds,
		condID: condID,
	}
}

func (f *fixture) stock(t *testing.T) int {
	t.Helper()
	cond, err := f.conds.GetCondition(f.condID)
	if err != nil {
		t.Fatalf("get condition: %v", err)
	}
	return cond.StockQuantity
}

func (f *fixture) submitted(t *testing.T, price int64) *models.CarOrder {
	t.Helper()
	order, err := f.lc.Create(OrderInput{
		BuyerName:     "Reza Karimi",
		NationalID:    "0012345678",
		Phone:         "09120000000",
		City:          "Tehran",
		Address:       "Valiasr St. 12",
		PostalCode:    "1234567890",
		CarName:       "Tara",
		ConditionID:   f.condID,
		SelectedColor: "white",
		ProposedPrice: decimal.NewFromInt(price),
	}, uuid.New(), true)
	if err != nil {
		t.Fatalf("create submitted order: %v", err)
	}
	return order
}

func localTimePtr(t *testing.T, value string) *models.LocalTime {
	t.Helper()
	parsed, err := time.ParseInLocation(models.TimeLayout, value, time.Local)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	lt := models.NewLocalTime(parsed)
	return &lt
}

var trackingPattern = regexp.MustCompile(`^ACL-\d{6}$`)

func TestCreateDraftAllowsMissingBuyerContact(t *testing.T) {
	f := newFixture(t, 1)

	order, err := f.lc.Create(OrderInput{
		CarName:       "Tara",
		ConditionID:   f.condID,
		ProposedPrice: decimal.NewFromInt(1000),
	}, uuid.New(), false)
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if order.Status != orders.StatusDraft {
		t.Errorf("status = %s, want DRAFT", order.Status)
	}
	if order.ConditionSummary == "" {
		t.Error("draft must still snapshot the condition terms")
	}
	if f.stock(t) != 1 {
		t.Error("drafts must not touch stock")
	}
}

func TestCreateSubmitRequiresBuyerContact(t *testing.T) {
	f := newFixture(t, 1)

	_, err := f.lc.Create(OrderInput{
		CarName:       "Tara",
		ConditionID:   f.condID,
		ProposedPrice: decimal.NewFromInt(1000),
	}, uuid.New(), true)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if len(f.orders.records) != 0 {
		t.Error("nothing must be stored on a failed submission")
	}
}

func TestApproveSetsCodePriceAndReservesStock(t *testing.T) {
	f := newFixture(t, 2)
	order := f.submitted(t, 1000)

	if order.TrackingCode != "" || order.FinalPrice != nil {
		t.Fatal("tracking code and final price must be absent before approval")
	}

	approved, err := f.lc.Approve(order.ID, ApproveInput{FinalPrice: decimal.NewFromInt(1000)})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != orders.StatusPendingPayment {
		t.Errorf("status = %s, want PENDING_PAYMENT", approved.Status)
	}
	if !trackingPattern.MatchString(approved.TrackingCode) {
		t.Errorf("tracking code %q does not match ACL-NNNNNN", approved.TrackingCode)
	}
	if approved.FinalPrice == nil || !approved.FinalPrice.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("final price = %v, want 1000", approved.FinalPrice)
	}
	if f.stock(t) != 1 {
		t.Errorf("stock = %d, want 1 after reservation", f.stock(t))
	}
}

func TestApproveOutOfStockLeavesOrderUnchanged(t *testing.T) {
	f := newFixture(t, 0)
	order := f.submitted(t, 1000)

	_, err := f.lc.Approve(order.ID, ApproveInput{FinalPrice: decimal.NewFromInt(1000)})
	if !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("err = %v, want ErrOutOfStock", err)
	}

	stored, _ := f.orders.GetOrder(order.ID)
	if stored.Status != orders.StatusPendingAdmin {
		t.Errorf("status = %s, want PENDING_ADMIN", stored.Status)
	}
	if stored.TrackingCode != "" || stored.FinalPrice != nil {
		t.Error("a refused approval must not stamp the order")
	}
	if f.stock(t) != 0 {
		t.Errorf("stock = %d, want 0", f.stock(t))
	}
}

func TestApproveRequiresReviewStatus(t *testing.T) {
	f := newFixture(t, 2)
	order := f.submitted(t, 1000)

	if _, err := f.lc.Approve(order.ID, ApproveInput{FinalPrice: decimal.NewFromInt(1000)}); err != nil {
		t.Fatalf("first approve: %v", err)
	}

	// double-click on the approve button: second call must refuse and not
	// take a second unit
	var te *TransitionError
	_, err := f.lc.Approve(order.ID, ApproveInput{FinalPrice: decimal.NewFromInt(1000)})
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransitionError", err)
	}
	if f.stock(t) != 1 {
		t.Errorf("stock = %d, want 1 after duplicate approval attempt", f.stock(t))
	}
}

func TestRejectRequiresReason(t *testing.T) {
	f := newFixture(t, 1)
	order := f.submitted(t, 1000)

	saves := f.orders.saves
	_, err := f.lc.Reject(order.ID, "   ")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if f.orders.saves != saves {
		t.Error("a blocked rejection must not write")
	}

	rejected, err := f.lc.Reject(order.ID, "incomplete documents")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != orders.StatusRejected {
		t.Errorf("status = %s, want REJECTED", rejected.Status)
	}
	if rejected.RejectReason != "incomplete documents" {
		t.Errorf("reason = %q", rejected.RejectReason)
	}
	if f.stock(t) != 1 {
		t.Error("rejection from review holds no reservation to return")
	}
}

func TestResubmitAfterRejection(t *testing.T) {
	f := newFixture(t, 1)
	order := f.submitted(t, 1000)

	if _, err := f.lc.Reject(order.ID, "wrong national id"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	in := OrderInput{
		BuyerName:     "Reza Karimi",
		NationalID:    "0087654321",
		Phone:         "09120000000",
		CarName:       "Tara",
		ConditionID:   f.condID,
		ProposedPrice: decimal.NewFromInt(1000),
	}
	if _, err := f.lc.Update(order.ID, in); err != nil {
		t.Fatalf("update rejected order: %v", err)
	}

	resubmitted, err := f.lc.Submit(order.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resubmitted.ID != order.ID {
		t.Error("resubmission must reuse the same order id")
	}
	if resubmitted.Status != orders.StatusPendingAdmin {
		t.Errorf("status = %s, want PENDING_ADMIN", resubmitted.Status)
	}
	if resubmitted.RejectReason != "" {
		t.Error("resubmission must clear the old rejection reason")
	}
}

// An order that went through approval, got cancelled and is resubmitted must
// arrive in the review queue bare: no tracking code, final price, deposit or
// deadline from the first pass. A second approval then mints everything fresh.
func TestResubmitClearsApprovalArtifacts(t *testing.T) {
	f := newFixture(t, 2)
	order := f.submitted(t, 1000)

	approved, err := f.lc.Approve(order.ID, ApproveInput{
		FinalPrice:       decimal.NewFromInt(1000),
		DeliveryDeadline: localTimePtr(t, "2026-10-01 12:00:00"),
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	firstCode := approved.TrackingCode
	if _, err := f.lc.SubmitPayment(order.ID, decimal.NewFromInt(1000), "receipt 101"); err != nil {
		t.Fatalf("payment: %v", err)
	}
	if _, err := f.lc.Cancel(order.ID, "buyer changed their mind"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	resubmitted, err := f.lc.Submit(order.ID)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if resubmitted.Status != orders.StatusPendingAdmin {
		t.Fatalf("status = %s, want PENDING_ADMIN", resubmitted.Status)
	}
	if resubmitted.TrackingCode != "" {
		t.Errorf("tracking code %q survived resubmission", resubmitted.TrackingCode)
	}
	if resubmitted.FinalPrice != nil {
		t.Errorf("final price %s survived resubmission", resubmitted.FinalPrice)
	}
	if resubmitted.PaidAmount != nil || resubmitted.PaymentNote != "" {
		t.Error("deposit record survived resubmission")
	}
	if resubmitted.DeliveryDeadline != nil {
		t.Error("delivery deadline survived resubmission")
	}
	if resubmitted.RejectReason != "" {
		t.Error("cancellation reason survived resubmission")
	}

	reapproved, err := f.lc.Approve(order.ID, ApproveInput{FinalPrice: decimal.NewFromInt(1100)})
	if err != nil {
		t.Fatalf("second approve: %v", err)
	}
	if !trackingPattern.MatchString(reapproved.TrackingCode) {
		t.Errorf("second tracking code %q does not match ACL-NNNNNN", reapproved.TrackingCode)
	}
	if reapproved.TrackingCode == firstCode && firstCode != "" {
		// random collision is possible but a stale code would reproduce it
		// deterministically; flag it
		t.Logf("second approval reused code %q", firstCode)
	}
	if f.stock(t) != 1 {
		t.Errorf("stock = %d, want 1 after cancel returned the first unit", f.stock(t))
	}
}

func TestCancelRequiresReason(t *testing.T) {
	f := newFixture(t, 1)
	order := f.submitted(t, 1000)
	if _, err := f.lc.Approve(order.ID, ApproveInput{FinalPrice: decimal.NewFromInt(1000)}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	saves := f.orders.saves
	_, err := f.lc.Cancel(order.ID, "  ")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if f.orders.saves != saves {
		t.Error("a blocked cancellation must not write")
	}
	if f.stock(t) != 0 {
		t.Error("a blocked cancellation must not return the unit")
	}
}

func TestUpdateBlockedOutsideEditableStatuses(t *testing.T) {
	f := newFixture(t, 1)
	order := f.submitted(t, 1000)

	_, err := f.lc.Update(order.ID, OrderInput{
		BuyerName:     "Someone Else",
		Phone:         "09120000000",
		ConditionID:   f.condID,
		ProposedPrice: decimal.NewFromInt(1),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation for order under review", err)
	}
}

func TestSubmitPaymentExactAmountOnly(t *testing.T) {
	f := newFixture(t, 1)
	order := f.submitted(t, 1000)
	if _, err := f.lc.Approve(order.ID, ApproveInput{FinalPrice: decimal.NewFromInt(1200)}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	saves := f.orders.saves
	var mismatch *PaymentMismatchError
	_, err := f.lc.SubmitPayment(order.ID, decimal.NewFromInt(1000), "")
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want PaymentMismatchError", err)
	}
	if !mismatch.Required.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("required = %s, want the final price 1200", mismatch.Required)
	}
	if f.orders.saves != saves {
		t.Error("a mismatched payment must not write")
	}

	stored, _ := f.orders.GetOrder(order.ID)
	if stored.Status != orders.StatusPendingPayment {
		t.Errorf("status = %s, want PENDING_PAYMENT", stored.Status)
	}

	paid, err := f.lc.SubmitPayment(order.ID, decimal.NewFromInt(1200), "receipt 552")
	if err != nil {
		t.Fatalf("payment: %v", err)
	}
	if paid.Status != orders.StatusPendingFinance {
		t.Errorf("status = %s, want PENDING_FINANCE", paid.Status)
	}
	if paid.PaidAmount == nil || !paid.PaidAmount.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("paid amount = %v, want 1200", paid.PaidAmount)
	}
}

// Full happy path through cancellation, starting from two units in stock.
func TestLifecycleEndToEndWithCancellation(t *testing.T) {
	f := newFixture(t, 2)
	order := f.submitted(t, 1000)

	approved, err := f.lc.Approve(order.ID, ApproveInput{FinalPrice: decimal.NewFromInt(1000)})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != orders.StatusPendingPayment || !trackingPattern.MatchString(approved.TrackingCode) {
		t.Fatalf("after approval: status=%s code=%q", approved.Status, approved.TrackingCode)
	}
	if f.stock(t) != 1 {
		t.Fatalf("stock = %d, want 1", f.stock(t))
	}

	paid, err := f.lc.SubmitPayment(order.ID, decimal.NewFromInt(1000), "")
	if err != nil {
		t.Fatalf("payment: %v", err)
	}
	if paid.Status != orders.StatusPendingFinance {
		t.Fatalf("status = %s, want PENDING_FINANCE", paid.Status)
	}

	cancelled, err := f.lc.Cancel(order.ID, "buyer walked away")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != orders.StatusRejected {
		t.Errorf("status = %s, want REJECTED", cancelled.Status)
	}
	if f.stock(t) != 2 {
		t.Errorf("stock = %d, want 2 after the unit is returned", f.stock(t))
	}
}

func TestFinanceExitCompleteChain(t *testing.T) {
	f := newFixture(t, 1)
	order := f.submitted(t, 1000)
	if _, err := f.lc.Approve(order.ID, ApproveInput{FinalPrice: decimal.NewFromInt(1000)}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.lc.SubmitPayment(order.ID, decimal.NewFromInt(1000), ""); err != nil {
		t.Fatalf("payment: %v", err)
	}

	ready, err := f.lc.FinanceApprove(order.ID)
	if err != nil {
		t.Fatalf("finance approve: %v", err)
	}
	if ready.Status != orders.StatusReadyForDelivery {
		t.Errorf("status = %s, want READY_FOR_DELIVERY", ready.Status)
	}

	exiting, err := f.lc.IssueExitPermit(order.ID)
	if err != nil {
		t.Fatalf("exit permit: %v", err)
	}
	if exiting.Status != orders.StatusExitProcess {
		t.Errorf("status = %s, want EXIT_PROCESS", exiting.Status)
	}

	done, err := f.lc.Complete(order.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != orders.StatusCompleted {
		t.Errorf("status = %s, want COMPLETED", done.Status)
	}
	if f.stock(t) != 0 {
		t.Errorf("stock = %d, completed orders keep their unit", f.stock(t))
	}

	// completed orders can still be voided, returning the unit
	if _, err := f.lc.Cancel(order.ID, "post-sale void"); err != nil {
		t.Fatalf("cancel completed: %v", err)
	}
	if f.stock(t) != 1 {
		t.Errorf("stock = %d, want 1 after voiding a completed order", f.stock(t))
	}
}

// Stock bookkeeping over N approvals and M returns: initial - N + M.
func TestStockBalanceAcrossApprovalsAndReturns(t *testing.T) {
	const initial = 5
	f := newFixture(t, initial)

	var ids []uuid.UUID
	for i := 0; i < 4; i++ {
		o := f.submitted(t, 1000)
		if _, err := f.lc.Approve(o.ID, ApproveInput{FinalPrice: decimal.NewFromInt(1000)}); err != nil {
			t.Fatalf("approve %d: %v", i, err)
		}
		ids = append(ids, o.ID)
	}
	if f.stock(t) != initial-4 {
		t.Fatalf("stock = %d, want %d", f.stock(t), initial-4)
	}

	for _, id := range ids[:2] {
		if _, err := f.lc.Cancel(id, "returned"); err != nil {
			t.Fatalf("cancel: %v", err)
		}
	}
	if got := f.stock(t); got != initial-4+2 {
		t.Errorf("stock = %d, want %d", got, initial-4+2)
	}

	// drain the rest, then one more approval must be refused, not clamped
	for i := 0; i < 3; i++ {
		o := f.submitted(t, 1000)
		if _, err := f.lc.Approve(o.ID, ApproveInput{FinalPrice: decimal.NewFromInt(1000)}); err != nil {
			t.Fatalf("drain approve %d: %v", i, err)
		}
	}
	if f.stock(t) != 0 {
		t.Fatalf("stock = %d, want 0", f.stock(t))
	}

	o := f.submitted(t, 1000)
	if _, err := f.lc.Approve(o.ID, ApproveInput{FinalPrice: decimal.NewFromInt(1000)}); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("err = %v, want ErrOutOfStock at zero stock", err)
	}
	if f.stock(t) != 0 {
		t.Errorf("stock = %d, must never go negative", f.stock(t))
	}
}

func TestDeleteRules(t *testing.T) {
	f := newFixture(t, 1)

	draft, err := f.lc.Create(OrderInput{CarName: "Tara", ConditionID: f.condID, ProposedPrice: decimal.NewFromInt(1)}, uuid.New(), false)
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if err := f.lc.Delete(draft.ID); err != nil {
		t.Fatalf("delete draft: %v", err)
	}
	if _, err := f.orders.GetOrder(draft.ID); !errors.Is(err, ErrNotFound) {
		t.Error("draft must be gone after deletion")
	}
	if f.conds.releases != 0 {
		t.Error("deleting a draft must not release stock")
	}

	active := f.submitted(t, 1000)
	if _, err := f.lc.Approve(active.ID, ApproveInput{FinalPrice: decimal.NewFromInt(1000)}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := f.lc.Delete(active.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, deleting a reserving order must be refused", err)
	}
	if f.stock(t) != 0 {
		t.Errorf("stock = %d, refused delete must not move stock", f.stock(t))
	}
}
