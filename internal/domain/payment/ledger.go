// internal/domain/payment/ledger.go
package payment

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// SimulatedMethod marks ledger entries with no real gateway behind them.
const SimulatedMethod = "simulated"

// NewEntry builds a completed ledger entry for a lifecycle transition.
// Transaction and invoice identifiers are ULIDs, unique and sortable by
// creation time.
func NewEntry(userID, subscriptionID int64, amount float64, ptype Type, description string, paidDate time.Time) *PaymentHistory {
	return &PaymentHistory{
		UserID:         userID,
		SubscriptionID: subscriptionID,
		TransactionID:  ulid.Make().String(),
		Amount:         amount,
		PaymentMethod:  SimulatedMethod,
		PaymentStatus:  StatusCompleted,
		PaymentType:    ptype,
		Description:    description,
		InvoiceNumber:  "INV-" + ulid.Make().String(),
		PaidDate:       paidDate,
	}
}
