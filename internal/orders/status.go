package orders

// Status is the lifecycle state of a car order.
type Status string

const (
	StatusDraft            Status = "DRAFT"
	StatusPendingAdmin     Status = "PENDING_ADMIN"
	StatusPendingPayment   Status = "PENDING_PAYMENT"
	StatusPendingFinance   Status = "PENDING_FINANCE"
	StatusReadyForDelivery Status = "READY_FOR_DELIVERY"
	StatusExitProcess      Status = "EXIT_PROCESS"
	StatusCompleted        Status = "COMPLETED"
	StatusRejected         Status = "REJECTED"
)

// validNext holds every legal edge of the lifecycle, including the
// cancellation edges into REJECTED and the buyer resubmission edge back to
// PENDING_ADMIN. Handlers never compare statuses themselves; everything goes
// through this table.
var validNext = map[Status]map[Status]bool{
	StatusDraft:            {StatusPendingAdmin: true},
	StatusPendingAdmin:     {StatusPendingPayment: true, StatusRejected: true},
	StatusPendingPayment:   {StatusPendingFinance: true, StatusRejected: true},
	StatusPendingFinance:   {StatusReadyForDelivery: true, StatusRejected: true},
	StatusReadyForDelivery: {StatusExitProcess: true, StatusRejected: true},
	StatusExitProcess:      {StatusCompleted: true, StatusRejected: true},
	StatusCompleted:        {StatusRejected: true},
	StatusRejected:         {StatusPendingAdmin: true},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// reserving: statuses during which the order holds one reserved unit of its
// linked condition's stock.
var reserving = map[Status]bool{
	StatusPendingPayment:   true,
	StatusPendingFinance:   true,
	StatusReadyForDelivery: true,
	StatusExitProcess:      true,
	StatusCompleted:        true,
}

// HoldsReservation reports whether an order in status s has a unit of stock
// in reserve.
func HoldsReservation(s Status) bool {
	return reserving[s]
}

// ReservingStatuses lists the reserving statuses as strings, for SQL IN
// filters.
func ReservingStatuses() []string {
	out := make([]string, 0, len(reserving))
	for s := range reserving {
		out = append(out, string(s))
	}
	return out
}

// Editable reports whether buyer fields may still be changed.
func Editable(s Status) bool {
	return s == StatusDraft || s == StatusRejected
}

// Deletable reports whether the order may be physically removed. Orders in a
// reserving status must be cancelled first so their unit is returned.
func Deletable(s Status) bool {
	return s == StatusDraft || s == StatusPendingAdmin || s == StatusRejected
}

// IsValid reports whether s is a known status value, for filter parsing.
func IsValid(s Status) bool {
	_, ok := validNext[s]
	return ok
}
