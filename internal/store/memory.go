package store

import "sync"

// Interaction is an audit record as kept by the in-memory store.
type Interaction struct {
	SessionID       string
	InteractionType string
	Data            string
	Timestamp       string
}

// InMemoryStore keeps everything in process memory. It backs tests and the
// demo mode of the session channel, where no database is configured.
type InMemoryStore struct {
	mu           sync.Mutex
	nextID       int64
	customers    []Customer
	invoices     []Invoice
	interactions []Interaction
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1}
}

func (s *InMemoryStore) CountPendingAndSum(customerName string) (int, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	total := 0.0
	for _, inv := range s.invoices {
		if s.ownerName(inv.CustomerID) == customerName && inv.Status == StatusPending {
			count++
			total += inv.Amount
		}
	}
	return count, total, nil
}

func (s *InMemoryStore) NearestPendingInvoice(customerName string) (*Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var nearest *Invoice
	for i := range s.invoices {
		inv := &s.invoices[i]
		if s.ownerName(inv.CustomerID) != customerName || inv.Status != StatusPending {
			continue
		}
		if nearest == nil || inv.DueDate < nearest.DueDate {
			nearest = inv
		}
	}
	if nearest == nil {
		return nil, nil
	}
	out := *nearest
	return &out, nil
}

func (s *InMemoryStore) MarkPaymentScheduled(customerName, paymentDate string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var affected int64
	for i := range s.invoices {
		inv := &s.invoices[i]
		if s.ownerName(inv.CustomerID) != customerName {
			continue
		}
		if inv.Status != StatusPending || inv.PaymentDate != "" {
			continue
		}
		inv.Status = StatusPaymentScheduled
		inv.PaymentDate = paymentDate
		affected++
	}
	return affected, nil
}

func (s *InMemoryStore) MarkDisputed(customerName string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var affected int64
	for i := range s.invoices {
		inv := &s.invoices[i]
		if s.ownerName(inv.CustomerID) != customerName {
			continue
		}
		if inv.Status != StatusPending || inv.PaymentDate != "" {
			continue
		}
		inv.Status = StatusDisputed
		affected++
	}
	return affected, nil
}

func (s *InMemoryStore) LogInteraction(sessionID, interactionType, data string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interactions = append(s.interactions, Interaction{
		SessionID:       sessionID,
		InteractionType: interactionType,
		Data:            data,
		Timestamp:       nowTimestamp(),
	})
	return nil
}

func (s *InMemoryStore) CreateCustomer(c Customer) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID
	s.nextID++
	s.customers = append(s.customers, c)
	return c.ID, nil
}

func (s *InMemoryStore) CreateInvoice(inv Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv.ID = s.nextID
	s.nextID++
	s.invoices = append(s.invoices, inv)
	return nil
}

func (s *InMemoryStore) Close() error { return nil }

// Interactions returns a copy of the audit log, oldest first.
func (s *InMemoryStore) Interactions() []Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Interaction, len(s.interactions))
	copy(out, s.interactions)
	return out
}

// ownerName is called with the mutex held.
func (s *InMemoryStore) ownerName(customerID int64) string {
	for _, c := range s.customers {
		if c.ID == customerID {
			return c.Name
		}
	}
	return ""
}
