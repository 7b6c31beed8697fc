package orders

import (
	"regexp"
	"testing"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"draft submit", StatusDraft, StatusPendingAdmin, true},
		{"approve", StatusPendingAdmin, StatusPendingPayment, true},
		{"reject from review", StatusPendingAdmin, StatusRejected, true},
		{"payment proof", StatusPendingPayment, StatusPendingFinance, true},
		{"finance sign-off", StatusPendingFinance, StatusReadyForDelivery, true},
		{"exit permit", StatusReadyForDelivery, StatusExitProcess, true},
		{"handover", StatusExitProcess, StatusCompleted, true},
		{"cancel paid order", StatusPendingFinance, StatusRejected, true},
		{"cancel completed order", StatusCompleted, StatusRejected, true},
		{"resubmit after rejection", StatusRejected, StatusPendingAdmin, true},

		{"skip review", StatusDraft, StatusPendingPayment, false},
		{"skip payment", StatusPendingAdmin, StatusPendingFinance, false},
		{"backwards", StatusPendingFinance, StatusPendingPayment, false},
		{"draft cancel", StatusDraft, StatusRejected, false},
		{"rejected straight to payment", StatusRejected, StatusPendingPayment, false},
		{"completed re-complete", StatusCompleted, StatusCompleted, false},
		{"unknown status", Status("SHIPPED"), StatusCompleted, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTransition(tc.from, tc.to); got != tc.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestHoldsReservation(t *testing.T) {
	holding := []Status{StatusPendingPayment, StatusPendingFinance, StatusReadyForDelivery, StatusExitProcess, StatusCompleted}
	free := []Status{StatusDraft, StatusPendingAdmin, StatusRejected}

	for _, s := range holding {
		if !HoldsReservation(s) {
			t.Errorf("HoldsReservation(%s) = false, want true", s)
		}
	}
	for _, s := range free {
		if HoldsReservation(s) {
			t.Errorf("HoldsReservation(%s) = true, want false", s)
		}
	}
}

func TestDeletableAndEditable(t *testing.T) {
	for _, s := range []Status{StatusDraft, StatusPendingAdmin, StatusRejected} {
		if !Deletable(s) {
			t.Errorf("Deletable(%s) = false, want true", s)
		}
	}
	for _, s := range []Status{StatusPendingPayment, StatusPendingFinance, StatusReadyForDelivery, StatusExitProcess, StatusCompleted} {
		if Deletable(s) {
			t.Errorf("Deletable(%s) = true, want false", s)
		}
	}

	if !Editable(StatusDraft) || !Editable(StatusRejected) {
		t.Error("draft and rejected orders must stay editable")
	}
	if Editable(StatusPendingAdmin) {
		t.Error("orders under review must not be editable")
	}
}

func TestNewTrackingCode(t *testing.T) {
	pattern := regexp.MustCompile(`^ACL-\d{6}$`)
	for i := 0; i < 100; i++ {
		code, err := NewTrackingCode()
		if err != nil {
			t.Fatalf("NewTrackingCode: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Fatalf("tracking code %q does not match ACL-NNNNNN", code)
		}
	}
}
