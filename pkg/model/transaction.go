package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionType string

const (
	TransactionPayment TransactionType = "payment"
	TransactionRefund  TransactionType = "refund"
)

type PaymentMethod string

const (
	MethodYookassa PaymentMethod = "yookassa"
	MethodCash     PaymentMethod = "cash"
)

// Transaction is an immutable payment-ledger entry. ExternalPaymentID carries
// the provider's payment identifier and is the idempotency key for webhook
// deliveries; the collection has a unique sparse index on it. Rows are never
// updated or deleted once written.
type Transaction struct {
	ID                string               `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	BookingID         string               `json:"booking_id" bson:"booking_id" validate:"required,mongodb"`
	Amount            primitive.Decimal128 `json:"amount" bson:"amount"`
	Type              TransactionType      `json:"type" bson:"type" validate:"required,oneof=payment refund"`
	PaymentMethod     PaymentMethod        `json:"payment_method" bson:"payment_method" validate:"required,oneof=yookassa cash"`
	ExternalPaymentID string               `json:"external_payment_id,omitempty" bson:"external_payment_id,omitempty" validate:"omitempty,max=255"`
	CreatedAt         time.Time            `json:"created_at" bson:"created_at" validate:"omitempty"`
}
