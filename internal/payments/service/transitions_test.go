package service

import (
	"testing"

	"reservo/pkg/model"
)

func TestTransitionFor(t *testing.T) {
	tests := []struct {
		status     string
		wantStatus model.BookingStatus
		wantLedger model.TransactionType
		recognized bool
	}{
		{"succeeded", model.StatusPaid, model.TransactionPayment, true},
		{"canceled", model.StatusConfirmed, model.TransactionRefund, true},
		{"waiting_for_capture", "", "", false},
		{"pending", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run("status "+tt.status, func(t *testing.T) {
			transition, recognized := transitionFor(tt.status)
			if recognized != tt.recognized {
				t.Fatalf("transitionFor(%q) recognized = %v, want %v", tt.status, recognized, tt.recognized)
			}
			if !recognized {
				return
			}
			if transition.status != tt.wantStatus {
				t.Errorf("expected booking status %s, got %s", tt.wantStatus, transition.status)
			}
			if transition.ledger != tt.wantLedger {
				t.Errorf("expected ledger type %s, got %s", tt.wantLedger, transition.ledger)
			}
		})
	}
}
