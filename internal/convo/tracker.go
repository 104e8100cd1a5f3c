// Package convo implements the decision layer of the collection dialogue:
// the named actions the runtime invokes per turn, the response templates they
// reference, and the explicit conversation state machine that sequences them.
package convo

import (
	"fmt"
	"strings"
)

// Slot names persisted by the dialogue runtime across turns.
const (
	SlotClientName   = "client_name"
	SlotIsDennis     = "is_dennis"
	SlotPaymentDate  = "payment_date"
	SlotReasonType   = "reason_type"
	SlotPendingCount = "pending_invoice_count"
	SlotPendingTotal = "pending_invoice_total"
	SlotState        = "conversation_state"
)

// Entity is a structured value the NLU layer attached to the message.
type Entity struct {
	Entity string `json:"entity"`
	Value  string `json:"value"`
}

// Message is the latest user message as delivered by the runtime.
type Message struct {
	Text     string   `json:"text"`
	Entities []Entity `json:"entities,omitempty"`
}

// Domain is the runtime's domain descriptor. The actions only pass it
// through; it is kept opaque.
type Domain map[string]interface{}

// Tracker exposes the latest message and the conversation slots for one
// session. Slot values arrive as arbitrary JSON from the runtime and are
// normalized to strings on read.
type Tracker struct {
	SenderID      string                 `json:"sender_id"`
	LatestMessage Message                `json:"latest_message"`
	Slots         map[string]interface{} `json:"slots"`
}

// NewTracker creates an empty tracker for a fresh session.
func NewTracker(senderID string) *Tracker {
	return &Tracker{SenderID: senderID, Slots: make(map[string]interface{})}
}

// Slot returns the named slot as a string, or "" when unset.
func (t *Tracker) Slot(name string) string {
	v, ok := t.Slots[name]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case bool:
		if s {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// SetSlot stores a slot value.
func (t *Tracker) SetSlot(name, value string) {
	if t.Slots == nil {
		t.Slots = make(map[string]interface{})
	}
	t.Slots[name] = value
}

// LatestText returns the case-folded latest message text. Classifiers only
// ever see this form; original casing is never needed downstream.
func (t *Tracker) LatestText() string {
	return strings.ToLower(t.LatestMessage.Text)
}

// Entity returns the value of the first NLU entity with the given name.
func (t *Tracker) Entity(name string) (string, bool) {
	for _, e := range t.LatestMessage.Entities {
		if e.Entity == name {
			return e.Value, true
		}
	}
	return "", false
}
