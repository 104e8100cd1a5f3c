// Package store persists customers, invoices and interaction audit records.
//
// Every mutating statement is scoped by customer name and guarded by
// status = 'pending' AND payment_date IS NULL, so re-applying the same
// transition is a no-op and concurrent sessions for different customers do
// not interfere.
package store

import "time"

// Invoice statuses. The set is closed; the decision layer only ever moves
// pending invoices to payment_scheduled or disputed.
const (
	StatusPending          = "pending"
	StatusPaid             = "paid"
	StatusPaymentScheduled = "payment_scheduled"
	StatusDisputed         = "disputed"
)

// DateFormat is how invoice dates are stored.
const DateFormat = "2006-01-02"

// Customer mirrors the customers table.
type Customer struct {
	ID    int64
	Name  string
	Email string
	Phone string
}

// Invoice mirrors the invoices table. Dates are ISO strings.
type Invoice struct {
	ID            int64
	CustomerID    int64
	InvoiceNumber string
	Amount        float64
	IssueDate     string
	DueDate       string
	Status        string
	PaymentDate   string
}

// Store is the invoice query/update collaborator used by the conversation
// actions. Implementations must keep the pending/payment_date-IS-NULL guard
// on both Mark operations.
type Store interface {
	// CountPendingAndSum returns the number of pending invoices and their
	// total amount for the named customer. Zero values when none match.
	CountPendingAndSum(customerName string) (int, float64, error)

	// NearestPendingInvoice returns the pending invoice with the earliest
	// due date, or nil when the customer has none.
	NearestPendingInvoice(customerName string) (*Invoice, error)

	// MarkPaymentScheduled moves all pending, unscheduled invoices of the
	// customer to payment_scheduled with the given date. Returns the number
	// of rows updated; a repeat call updates zero rows.
	MarkPaymentScheduled(customerName, paymentDate string) (int64, error)

	// MarkDisputed moves all pending, unscheduled invoices of the customer
	// to disputed. Returns the number of rows updated.
	MarkDisputed(customerName string) (int64, error)

	// LogInteraction records an audit row. Best-effort at the call sites:
	// failures are logged locally and never surfaced to the caller's user.
	LogInteraction(sessionID, interactionType, data string) error

	// CreateCustomer and CreateInvoice exist for provisioning and seeding;
	// the conversation flow never creates records.
	CreateCustomer(c Customer) (int64, error)
	CreateInvoice(inv Invoice) error

	Close() error
}

func nowTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
