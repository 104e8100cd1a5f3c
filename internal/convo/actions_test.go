package convo

import (
	"errors"
	"strings"
	"testing"
	"time"

	"cobranza/internal/store"
)

// fixedNow is a friday; weekday math in the date tests depends on it.
func fixedNow() time.Time {
	return time.Date(2025, time.August, 8, 12, 0, 0, 0, time.UTC)
}

func seededStore(t *testing.T) *store.InMemoryStore {
	t.Helper()
	st := store.NewInMemoryStore()
	id, err := st.CreateCustomer(store.Customer{Name: "Mauricio", Phone: "+56912345678"})
	if err != nil {
		t.Fatal(err)
	}
	invoices := []store.Invoice{
		{CustomerID: id, InvoiceNumber: "INV-2025-001-MM", Amount: 30000,
			IssueDate: "2025-05-01", DueDate: "2025-05-23", Status: store.StatusPending},
		{CustomerID: id, InvoiceNumber: "INV-2025-002-MM", Amount: 25000,
			IssueDate: "2025-05-15", DueDate: "2025-06-10", Status: store.StatusPending},
	}
	for _, inv := range invoices {
		if err := st.CreateInvoice(inv); err != nil {
			t.Fatal(err)
		}
	}
	return st
}

func testRegistry(st store.Store, opts Options) *Registry {
	if opts.DefaultCustomerName == "" {
		opts.DefaultCustomerName = "Mauricio"
	}
	if opts.DefaultInvoiceAmount == 0 {
		opts.DefaultInvoiceAmount = 55000
	}
	if opts.Now == nil {
		opts.Now = fixedNow
	}
	return NewRegistry(st, opts)
}

func runAction(t *testing.T, reg *Registry, name string, tracker *Tracker) (*Dispatcher, []Event) {
	t.Helper()
	action, ok := reg.Get(name)
	if !ok {
		t.Fatalf("action %s not registered", name)
	}
	disp := NewDispatcher()
	events, err := action.Run(disp, tracker, nil)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return disp, events
}

// failingStore simulates a storage outage.
type failingStore struct{}

var errDown = errors.New("connection refused")

func (failingStore) CountPendingAndSum(string) (int, float64, error) { return 0, 0, errDown }
func (failingStore) NearestPendingInvoice(string) (*store.Invoice, error) {
	return nil, errDown
}
func (failingStore) MarkPaymentScheduled(string, string) (int64, error) { return 0, errDown }
func (failingStore) MarkDisputed(string) (int64, error)                 { return 0, errDown }
func (failingStore) LogInteraction(string, string, string) error        { return errDown }
func (failingStore) CreateCustomer(store.Customer) (int64, error)       { return 0, errDown }
func (failingStore) CreateInvoice(store.Invoice) error                  { return errDown }
func (failingStore) Close() error                                       { return nil }

func TestExtractClientNamePrefersEntity(t *testing.T) {
	reg := testRegistry(store.NewInMemoryStore(), Options{})
	tracker := NewTracker("s1")
	tracker.LatestMessage = Message{
		Text:     "soy mauricio",
		Entities: []Entity{{Entity: SlotClientName, Value: "Mauricio Martínez"}},
	}

	_, events := runAction(t, reg, "action_extract_client_name", tracker)

	if len(events) != 1 || events[0].Name != SlotClientName || events[0].Value != "Mauricio Martínez" {
		t.Errorf("events = %v, want client_name slot set to Mauricio Martínez", events)
	}
}

func TestExtractClientNameFromText(t *testing.T) {
	reg := testRegistry(store.NewInMemoryStore(), Options{})
	tracker := NewTracker("s1")
	tracker.LatestMessage = Message{Text: "soy Mauricio"}

	_, events := runAction(t, reg, "action_extract_client_name", tracker)

	if len(events) != 1 || events[0].Value != "Mauricio" {
		t.Errorf("events = %v, want client_name slot set to Mauricio", events)
	}
}

func TestExtractClientNameDefault(t *testing.T) {
	reg := testRegistry(store.NewInMemoryStore(), Options{})
	tracker := NewTracker("s1")
	tracker.LatestMessage = Message{Text: "aló"}

	_, events := runAction(t, reg, "action_extract_client_name", tracker)

	if len(events) != 1 || events[0].Value != "Dennis" {
		t.Errorf("events = %v, want fallback name Dennis", events)
	}
}

func TestCheckIdentityRecordsInteraction(t *testing.T) {
	st := store.NewInMemoryStore()
	reg := testRegistry(st, Options{})
	tracker := NewTracker("s1")
	tracker.LatestMessage = Message{Text: "sí"}

	_, events := runAction(t, reg, "action_check_identity", tracker)

	if len(events) != 1 || events[0].Name != SlotIsDennis || events[0].Value != "true" {
		t.Errorf("events = %v, want is_dennis=true", events)
	}
	logs := st.Interactions()
	if len(logs) != 1 || logs[0].InteractionType != "identity_check" || logs[0].Data != "is_dennis=true" {
		t.Errorf("interactions = %v, want one identity_check record", logs)
	}
}

func TestHandleIdentityResponseWrongPerson(t *testing.T) {
	reg := testRegistry(seededStore(t), Options{})
	tracker := NewTracker("s1")
	tracker.SetSlot(SlotIsDennis, "false")

	disp, _ := runAction(t, reg, "action_handle_identity_response", tracker)

	resps := disp.Responses()
	if len(resps) != 1 || resps[0].Template != "utter_wrong_person" {
		t.Errorf("responses = %v, want utter_wrong_person", resps)
	}
}

func TestHandleIdentityResponsePendingInfo(t *testing.T) {
	reg := testRegistry(seededStore(t), Options{})
	tracker := NewTracker("s1")
	tracker.SetSlot(SlotClientName, "Mauricio")
	tracker.SetSlot(SlotIsDennis, "true")

	disp, events := runAction(t, reg, "action_handle_identity_response", tracker)

	resps := disp.Responses()
	if len(resps) != 1 || resps[0].Template != "utter_invoice_pending_info" {
		t.Fatalf("responses = %v, want utter_invoice_pending_info", resps)
	}
	args := resps[0].Args
	if args[SlotClientName] != "Mauricio" || args[SlotPendingCount] != "2" || args[SlotPendingTotal] != "$55.000" {
		t.Errorf("args = %v, want Mauricio / 2 / $55.000", args)
	}
	if len(events) != 2 {
		t.Errorf("events = %v, want pending count and total slots", events)
	}
}

func TestHandleIdentityResponseStorageFallback(t *testing.T) {
	reg := testRegistry(failingStore{}, Options{})
	tracker := NewTracker("s1")
	tracker.SetSlot(SlotIsDennis, "true")

	disp, _ := runAction(t, reg, "action_handle_identity_response", tracker)

	args := disp.Responses()[0].Args
	if args[SlotPendingCount] != "1" || args[SlotPendingTotal] != "$55.000" {
		t.Errorf("args = %v, want masked fallback of 1 invoice at $55.000", args)
	}
}

func TestHandleIdentityResponseStrictPropagates(t *testing.T) {
	reg := testRegistry(failingStore{}, Options{Strict: true})
	tracker := NewTracker("s1")
	tracker.SetSlot(SlotIsDennis, "true")

	action, _ := reg.Get("action_handle_identity_response")
	if _, err := action.Run(NewDispatcher(), tracker, nil); err == nil {
		t.Error("strict mode returned nil error on storage failure")
	}
}

func TestHandlePaymentResponseBranches(t *testing.T) {
	cases := []struct {
		text         string
		wantTemplate string
		wantFollowup string
	}{
		{"sí, puedo pagar", "utter_ask_payment_date", ""},
		{"no puedo", "utter_ask_reason", ""},
		{"¿de cuándo es la factura?", "", "action_invoice_date_info"},
		{"mmm", "utter_ask_payment_date", ""},
	}
	for _, c := range cases {
		reg := testRegistry(store.NewInMemoryStore(), Options{})
		tracker := NewTracker("s1")
		tracker.LatestMessage = Message{Text: c.text}

		disp, events := runAction(t, reg, "action_handle_payment_response", tracker)

		if c.wantTemplate != "" {
			resps := disp.Responses()
			if len(resps) != 1 || resps[0].Template != c.wantTemplate {
				t.Errorf("%q: responses = %v, want %s", c.text, resps, c.wantTemplate)
			}
		}
		if c.wantFollowup != "" {
			if len(events) != 1 || events[0].Event != "followup" || events[0].Name != c.wantFollowup {
				t.Errorf("%q: events = %v, want followup %s", c.text, events, c.wantFollowup)
			}
		}
	}
}

func TestInvoiceDateInfo(t *testing.T) {
	reg := testRegistry(seededStore(t), Options{})
	tracker := NewTracker("s1")
	tracker.SetSlot(SlotClientName, "Mauricio")

	disp, _ := runAction(t, reg, "action_invoice_date_info", tracker)

	resps := disp.Responses()
	if len(resps) != 2 {
		t.Fatalf("responses = %v, want dynamic sentence plus reason prompt", resps)
	}
	if !strings.Contains(resps[0].Text, "INV-2025-001-MM") ||
		!strings.Contains(resps[0].Text, "1 de mayo de 2025") ||
		!strings.Contains(resps[0].Text, "23 de mayo de 2025") {
		t.Errorf("dynamic sentence = %q, want nearest invoice number and dates", resps[0].Text)
	}
	if resps[1].Template != "utter_ask_reason" {
		t.Errorf("second response = %v, want utter_ask_reason", resps[1])
	}
}

func TestInvoiceDateInfoFallsBackToCannedReply(t *testing.T) {
	reg := testRegistry(failingStore{}, Options{})
	tracker := NewTracker("s1")

	disp, _ := runAction(t, reg, "action_invoice_date_info", tracker)

	resps := disp.Responses()
	if len(resps) != 2 || resps[0].Template != "utter_invoice_date_info" {
		t.Errorf("responses = %v, want canned utter_invoice_date_info first", resps)
	}
}

func TestHandleDateQuestionResolved(t *testing.T) {
	st := seededStore(t)
	reg := testRegistry(st, Options{})
	tracker := NewTracker("s1")
	tracker.SetSlot(SlotClientName, "Mauricio")
	tracker.LatestMessage = Message{Text: "mañana"}

	disp, events := runAction(t, reg, "action_handle_date_question", tracker)

	if len(events) != 1 || events[0].Name != SlotPaymentDate || events[0].Value != "2025-08-09" {
		t.Errorf("events = %v, want payment_date slot 2025-08-09", events)
	}
	args := disp.Responses()[0].Args
	if args[SlotPaymentDate] != "sábado 9 de agosto" {
		t.Errorf("payment_date arg = %q, want prose rendering", args[SlotPaymentDate])
	}
	if count, _, _ := st.CountPendingAndSum("Mauricio"); count != 0 {
		t.Errorf("pending count = %d after scheduling, want 0", count)
	}
}

func TestHandleDateQuestionUnresolvedEchoesText(t *testing.T) {
	st := seededStore(t)
	reg := testRegistry(st, Options{})
	tracker := NewTracker("s1")
	tracker.SetSlot(SlotClientName, "Mauricio")
	tracker.LatestMessage = Message{Text: "cuando pueda"}

	disp, events := runAction(t, reg, "action_handle_date_question", tracker)

	if len(events) != 1 || events[0].Value != "cuando pueda" {
		t.Errorf("events = %v, want raw text stored in payment_date", events)
	}
	if args := disp.Responses()[0].Args; args[SlotPaymentDate] != "cuando pueda" {
		t.Errorf("payment_date arg = %q, want raw text echoed", args[SlotPaymentDate])
	}
	if count, _, _ := st.CountPendingAndSum("Mauricio"); count != 2 {
		t.Errorf("pending count = %d, want invoices untouched", count)
	}
}

type recordingNotifier struct {
	name, date string
	inv        *store.Invoice
}

func (n *recordingNotifier) PaymentScheduled(clientName, formattedDate string, inv *store.Invoice) error {
	n.name, n.date, n.inv = clientName, formattedDate, inv
	return nil
}

func TestHandleDateQuestionNotifies(t *testing.T) {
	notifier := &recordingNotifier{}
	reg := testRegistry(seededStore(t), Options{Notifier: notifier})
	tracker := NewTracker("s1")
	tracker.SetSlot(SlotClientName, "Mauricio")
	tracker.LatestMessage = Message{Text: "mañana"}

	runAction(t, reg, "action_handle_date_question", tracker)

	if notifier.name != "Mauricio" || notifier.date != "sábado 9 de agosto" {
		t.Errorf("notifier got %q/%q, want Mauricio / sábado 9 de agosto", notifier.name, notifier.date)
	}
	if notifier.inv == nil || notifier.inv.InvoiceNumber != "INV-2025-001-MM" {
		t.Errorf("notifier invoice = %v, want the nearest pending invoice", notifier.inv)
	}
}

func TestClassifyReasonDispute(t *testing.T) {
	st := seededStore(t)
	reg := testRegistry(st, Options{})
	tracker := NewTracker("s1")
	tracker.SetSlot(SlotClientName, "Mauricio")
	tracker.LatestMessage = Message{Text: "ya pagué esa factura"}

	disp, events := runAction(t, reg, "action_classify_reason", tracker)

	if resps := disp.Responses(); len(resps) != 1 || resps[0].Template != "utter_payment_dispute" {
		t.Errorf("responses = %v, want utter_payment_dispute", resps)
	}
	if len(events) != 1 || events[0].Value != "payment_dispute" {
		t.Errorf("events = %v, want reason_type=payment_dispute", events)
	}
	if count, _, _ := st.CountPendingAndSum("Mauricio"); count != 0 {
		t.Errorf("pending count = %d, want invoices moved to disputed", count)
	}
}

func TestClassifyReasonOtherKeepsFinancialReply(t *testing.T) {
	reg := testRegistry(seededStore(t), Options{})
	tracker := NewTracker("s1")
	tracker.SetSlot(SlotClientName, "Mauricio")
	tracker.LatestMessage = Message{Text: "se me olvidó"}

	disp, events := runAction(t, reg, "action_classify_reason", tracker)

	// The stored label and the chosen reply disagree on purpose.
	if resps := disp.Responses(); resps[0].Template != "utter_financial_difficulty" {
		t.Errorf("responses = %v, want utter_financial_difficulty", resps)
	}
	if events[0].Value != "other" {
		t.Errorf("reason_type = %q, want other", events[0].Value)
	}
}
