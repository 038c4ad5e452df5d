package service

import "reservo/pkg/model"

// Provider payment status values that drive booking transitions.
const (
	ProviderStatusSucceeded = "succeeded"
	ProviderStatusCanceled  = "canceled"
)

type paymentTransition struct {
	status model.BookingStatus
	ledger model.TransactionType
}

// transitionFor is the booking state machine for payment-driven transitions.
// A succeeded payment marks the booking paid; a canceled payment refunds it
// back to confirmed. Every other provider status leaves the booking untouched
// and writes no ledger entry.
func transitionFor(providerStatus string) (paymentTransition, bool) {
	switch providerStatus {
	case ProviderStatusSucceeded:
		return paymentTransition{status: model.StatusPaid, ledger: model.TransactionPayment}, true
	case ProviderStatusCanceled:
		return paymentTransition{status: model.StatusConfirmed, ledger: model.TransactionRefund}, true
	default:
		return paymentTransition{}, false
	}
}
