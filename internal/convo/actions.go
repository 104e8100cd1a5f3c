package convo

import (
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"cobranza/internal/classify"
	"cobranza/internal/dates"
	"cobranza/internal/store"
)

// Action is one named decision step. The runtime invokes exactly one action
// per incoming message (plus any followups it requests) and awaits its
// synchronous completion.
type Action interface {
	Name() string
	Run(disp *Dispatcher, tracker *Tracker, domain Domain) ([]Event, error)
}

// Notifier delivers an out-of-band confirmation once a payment date has been
// agreed. The invoice is the nearest pending one at the time of scheduling and
// may be nil. Implementations are best-effort; errors are logged, never
// surfaced.
type Notifier interface {
	PaymentScheduled(clientName, formattedDate string, inv *store.Invoice) error
}

// Options tune the decision layer without coupling it to the config package.
type Options struct {
	// DefaultCustomerName scopes storage queries when no client_name slot
	// has been collected yet.
	DefaultCustomerName string
	// DefaultInvoiceAmount backs the storage-failure fallback reply.
	DefaultInvoiceAmount float64
	// Strict makes storage failures propagate to the runtime instead of
	// being masked by fallback values.
	Strict bool
	// Notifier is optional.
	Notifier Notifier
	// Now is the reference clock for date resolution; defaults to time.Now.
	Now func() time.Time
}

// AuditLog is the shared interaction logger injected into every action.
// Writes are best-effort: a failed audit write is logged locally and the
// conversation continues.
type AuditLog struct {
	store store.Store
}

func NewAuditLog(st store.Store) *AuditLog {
	return &AuditLog{store: st}
}

func (a *AuditLog) Record(sessionID, interactionType, data string) {
	if err := a.store.LogInteraction(sessionID, interactionType, data); err != nil {
		zap.L().Warn("interaction log failed",
			zap.String("session_id", sessionID),
			zap.String("type", interactionType),
			zap.Error(err))
	}
}

// Registry holds the named actions the runtime can invoke.
type Registry struct {
	actions map[string]Action
	opts    Options
}

// NewRegistry wires the full action set against a store.
func NewRegistry(st store.Store, opts Options) *Registry {
	if opts.DefaultCustomerName == "" {
		opts.DefaultCustomerName = "Dennis Kangme"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	audit := NewAuditLog(st)
	r := &Registry{actions: make(map[string]Action), opts: opts}
	for _, a := range []Action{
		&extractClientName{},
		&checkIdentity{audit: audit},
		&handleIdentityResponse{store: st, opts: opts},
		&handlePaymentResponse{audit: audit},
		&invoiceDateInfo{store: st, opts: opts},
		&handleDateQuestion{store: st, audit: audit, opts: opts},
		&classifyReason{store: st, audit: audit, opts: opts},
		&checkSufficientFunds{},
	} {
		r.actions[a.Name()] = a
	}
	return r
}

// Get looks up an action by name.
func (r *Registry) Get(name string) (Action, bool) {
	a, ok := r.actions[name]
	return a, ok
}

// clientName returns the collected client name or the extraction default.
func clientName(tracker *Tracker) string {
	if name := tracker.Slot(SlotClientName); name != "" {
		return name
	}
	return classify.DefaultClientName
}

// customerName scopes storage operations: the collected name when present,
// otherwise the canonical account holder.
func customerName(tracker *Tracker, opts Options) string {
	if name := tracker.Slot(SlotClientName); name != "" {
		return name
	}
	return opts.DefaultCustomerName
}

// extractClientName pulls the caller's name out of the latest message. A
// structured NLU entity wins; then the self-introduction pattern; then the
// default name.
type extractClientName struct{}

func (a *extractClientName) Name() string { return "action_extract_client_name" }

func (a *extractClientName) Run(disp *Dispatcher, tracker *Tracker, domain Domain) ([]Event, error) {
	if v, ok := tracker.Entity(SlotClientName); ok && v != "" {
		return []Event{SlotSet(SlotClientName, v)}, nil
	}
	if name, ok := classify.ClientName(tracker.LatestText()); ok {
		return []Event{SlotSet(SlotClientName, name)}, nil
	}
	return []Event{SlotSet(SlotClientName, classify.DefaultClientName)}, nil
}

// checkIdentity records whether the caller confirmed being the account
// holder. No-match counts as a denial: the check is existence of any
// confirmation keyword.
type checkIdentity struct {
	audit *AuditLog
}

func (a *checkIdentity) Name() string { return "action_check_identity" }

func (a *checkIdentity) Run(disp *Dispatcher, tracker *Tracker, domain Domain) ([]Event, error) {
	confirmed := classify.Identity(tracker.LatestText()) == classify.IdentityConfirmed
	a.audit.Record(tracker.SenderID, "identity_check", fmt.Sprintf("is_dennis=%t", confirmed))
	return []Event{SlotSet(SlotIsDennis, strconv.FormatBool(confirmed))}, nil
}

// handleIdentityResponse branches on the recorded identity outcome. On a
// confirmed identity it reads the pending-invoice aggregate and opens the
// payment conversation; otherwise it closes with the wrong-person reply.
type handleIdentityResponse struct {
	store store.Store
	opts  Options
}

func (a *handleIdentityResponse) Name() string { return "action_handle_identity_response" }

func (a *handleIdentityResponse) Run(disp *Dispatcher, tracker *Tracker, domain Domain) ([]Event, error) {
	if tracker.Slot(SlotIsDennis) != "true" {
		disp.UtterResponse("utter_wrong_person", nil)
		return nil, nil
	}

	name := clientName(tracker)
	count, total, err := a.store.CountPendingAndSum(customerName(tracker, a.opts))
	if err != nil {
		if a.opts.Strict {
			return nil, fmt.Errorf("pending invoice lookup: %w", err)
		}
		// Compatibility fallback: answer as if exactly one invoice at the
		// default amount were pending rather than stalling the call.
		zap.L().Error("pending invoice lookup failed, using fallback",
			zap.String("customer", customerName(tracker, a.opts)), zap.Error(err))
		count, total = 1, a.opts.DefaultInvoiceAmount
	}

	countStr := strconv.Itoa(count)
	totalStr := FormatAmount(total)
	disp.UtterResponse("utter_invoice_pending_info", map[string]string{
		SlotClientName:   name,
		SlotPendingCount: countStr,
		SlotPendingTotal: totalStr,
	})
	return []Event{
		SlotSet(SlotPendingCount, countStr),
		SlotSet(SlotPendingTotal, totalStr),
	}, nil
}

// handlePaymentResponse reads payment willingness. Precedence is
// can-pay > cannot-pay > asking-for-date; anything else follows the can-pay
// path and asks for a date.
type handlePaymentResponse struct {
	audit *AuditLog
}

func (a *handlePaymentResponse) Name() string { return "action_handle_payment_response" }

func (a *handlePaymentResponse) Run(disp *Dispatcher, tracker *Tracker, domain Domain) ([]Event, error) {
	w := classify.ClassifyWillingness(tracker.LatestText())
	a.audit.Record(tracker.SenderID, "payment_response",
		fmt.Sprintf("can_pay=%t, cannot_pay=%t, ask_date=%t", w.CanPay, w.CannotPay, w.AsksDate))

	var events []Event
	switch {
	case w.CanPay:
		disp.UtterResponse("utter_ask_payment_date", nil)
	case w.CannotPay:
		disp.UtterResponse("utter_ask_reason", nil)
	case w.AsksDate:
		events = append(events, Followup("action_invoice_date_info"))
	default:
		disp.UtterResponse("utter_ask_payment_date", nil)
	}
	return events, nil
}

// invoiceDateInfo is the followup target for date inquiries: it answers with
// the issue and due dates of the nearest pending invoice and then still asks
// for the non-payment reason. The double reply is intentional.
type invoiceDateInfo struct {
	store store.Store
	opts  Options
}

func (a *invoiceDateInfo) Name() string { return "action_invoice_date_info" }

func (a *invoiceDateInfo) Run(disp *Dispatcher, tracker *Tracker, domain Domain) ([]Event, error) {
	inv, err := a.store.NearestPendingInvoice(customerName(tracker, a.opts))
	if err != nil && a.opts.Strict {
		return nil, fmt.Errorf("nearest invoice lookup: %w", err)
	}
	if err != nil || inv == nil {
		if err != nil {
			zap.L().Error("nearest invoice lookup failed, using canned reply", zap.Error(err))
		}
		disp.UtterResponse("utter_invoice_date_info", nil)
	} else {
		disp.UtterText(fmt.Sprintf("Su factura %s fue emitida el %s y venció el %s.",
			inv.InvoiceNumber, longDate(inv.IssueDate), longDate(inv.DueDate)))
	}
	disp.UtterResponse("utter_ask_reason", nil)
	return nil, nil
}

// longDate formats a stored ISO date for prose; an unparseable value is
// echoed unchanged instead of failing the reply.
func longDate(iso string) string {
	t, err := time.Parse(dates.ISO, iso)
	if err != nil {
		return iso
	}
	return dates.FormatLong(t)
}

// handleDateQuestion resolves the promised payment date, schedules the
// pending invoices and confirms back in prose. Unresolvable input is echoed
// verbatim into both the reply and the slot.
type handleDateQuestion struct {
	store store.Store
	audit *AuditLog
	opts  Options
}

func (a *handleDateQuestion) Name() string { return "action_handle_date_question" }

func (a *handleDateQuestion) Run(disp *Dispatcher, tracker *Tracker, domain Domain) ([]Event, error) {
	text := tracker.LatestText()
	name := clientName(tracker)

	resolved, ok := dates.Resolve(text, a.opts.Now())
	if !ok {
		a.audit.Record(tracker.SenderID, "payment_date_confirmed", text)
		disp.UtterResponse("utter_payment_confirmed", map[string]string{
			SlotPaymentDate: text,
			SlotClientName:  name,
		})
		return []Event{SlotSet(SlotPaymentDate, text)}, nil
	}

	iso := resolved.Format(dates.ISO)
	prose := dates.FormatProse(resolved)
	a.audit.Record(tracker.SenderID, "payment_date_confirmed", iso)

	// Snapshot before the update flips its status; only the notification
	// wants it.
	nearest, nearestErr := a.store.NearestPendingInvoice(customerName(tracker, a.opts))
	if nearestErr != nil {
		nearest = nil
	}

	affected, err := a.store.MarkPaymentScheduled(customerName(tracker, a.opts), iso)
	if err != nil {
		if a.opts.Strict {
			return nil, fmt.Errorf("schedule payment: %w", err)
		}
		zap.L().Error("payment schedule update failed", zap.Error(err))
	} else {
		zap.L().Info("payment scheduled",
			zap.String("customer", customerName(tracker, a.opts)),
			zap.String("payment_date", iso),
			zap.Int64("invoices", affected))
	}

	if a.opts.Notifier != nil {
		if err := a.opts.Notifier.PaymentScheduled(name, prose, nearest); err != nil {
			zap.L().Warn("payment confirmation notification failed", zap.Error(err))
		}
	}

	disp.UtterResponse("utter_payment_confirmed", map[string]string{
		SlotPaymentDate: prose,
		SlotClientName:  name,
	})
	return []Event{SlotSet(SlotPaymentDate, iso)}, nil
}

// classifyReason categorizes the stated non-payment reason. A dispute writes
// the status transition before replying. Unmatched reasons are stored as
// "other" but answered with the financial-difficulty reply; keep that
// asymmetry, it is load-bearing for the recorded conversations.
type classifyReason struct {
	store store.Store
	audit *AuditLog
	opts  Options
}

func (a *classifyReason) Name() string { return "action_classify_reason" }

func (a *classifyReason) Run(disp *Dispatcher, tracker *Tracker, domain Domain) ([]Event, error) {
	name := clientName(tracker)
	reason := classify.Reason(tracker.LatestText())

	switch reason {
	case classify.ReasonPaymentDispute:
		affected, err := a.store.MarkDisputed(customerName(tracker, a.opts))
		if err != nil {
			if a.opts.Strict {
				return nil, fmt.Errorf("mark disputed: %w", err)
			}
			zap.L().Error("dispute update failed", zap.Error(err))
		} else {
			zap.L().Info("invoices disputed",
				zap.String("customer", customerName(tracker, a.opts)),
				zap.Int64("invoices", affected))
		}
		disp.UtterResponse("utter_payment_dispute", map[string]string{SlotClientName: name})
	default:
		disp.UtterResponse("utter_financial_difficulty", map[string]string{SlotClientName: name})
	}

	a.audit.Record(tracker.SenderID, "reason_classified", string(reason))
	return []Event{SlotSet(SlotReasonType, string(reason))}, nil
}

// checkSufficientFunds predates the collection flow and is kept for
// compatibility with older stories; nothing in the current flow invokes it.
type checkSufficientFunds struct{}

func (a *checkSufficientFunds) Name() string { return "action_check_sufficient_funds" }

func (a *checkSufficientFunds) Run(disp *Dispatcher, tracker *Tracker, domain Domain) ([]Event, error) {
	const balance = 1000
	amount, _ := strconv.ParseFloat(tracker.Slot("amount"), 64)
	return []Event{SlotSet("has_sufficient_funds", strconv.FormatBool(amount <= balance))}, nil
}
