package convo

import (
	"fmt"

	"go.uber.org/zap"

	"cobranza/internal/classify"
)

// State names the position of a session in the collection flow. The state
// lives in a slot like everything else the runtime persists.
type State string

const (
	StateAwaitingIdentity    State = "awaiting_identity"
	StateAwaitingWillingness State = "awaiting_willingness"
	StateAwaitingPaymentDate State = "awaiting_payment_date"
	StateAwaitingReason      State = "awaiting_reason"
	StateFulfilled           State = "fulfilled"
	StateWrongPerson         State = "wrong_person"
)

// Terminal reports whether no further user input is expected.
func (s State) Terminal() bool {
	return s == StateFulfilled || s == StateWrongPerson
}

// Signal is a classifier outcome used as a transition guard.
type Signal string

const (
	SignalConfirm   Signal = "confirm"
	SignalDeny      Signal = "deny"
	SignalNoMatch   Signal = "no_match"
	SignalCanPay    Signal = "can_pay"
	SignalCannotPay Signal = "cannot_pay"
	SignalAsksDate  Signal = "asks_date"
	SignalDefault   Signal = "default"
	SignalAny       Signal = "any"
)

// Transition is one row of the conversation flow. Actions run in order;
// Respond, when set, is uttered afterwards with the client name bound.
type Transition struct {
	From    State
	On      Signal
	Actions []string
	Respond string
	To      State
}

// Transitions is the whole flow as data. There is deliberately no
// cancellation path besides the wrong-person branch: once a date or a reason
// is recorded the invoice cycle is considered fulfilled.
var Transitions = []Transition{
	{StateAwaitingIdentity, SignalConfirm,
		[]string{"action_check_identity", "action_handle_identity_response"}, "", StateAwaitingWillingness},
	{StateAwaitingIdentity, SignalDeny,
		[]string{"action_check_identity", "action_handle_identity_response"}, "", StateWrongPerson},
	{StateAwaitingIdentity, SignalNoMatch,
		[]string{"action_extract_client_name"}, "utter_confirm_identity", StateAwaitingIdentity},
	{StateAwaitingWillingness, SignalCanPay,
		[]string{"action_handle_payment_response"}, "", StateAwaitingPaymentDate},
	{StateAwaitingWillingness, SignalCannotPay,
		[]string{"action_handle_payment_response"}, "", StateAwaitingReason},
	{StateAwaitingWillingness, SignalAsksDate,
		[]string{"action_handle_payment_response"}, "", StateAwaitingReason},
	{StateAwaitingWillingness, SignalDefault,
		[]string{"action_handle_payment_response"}, "", StateAwaitingPaymentDate},
	{StateAwaitingPaymentDate, SignalAny,
		[]string{"action_handle_date_question"}, "", StateFulfilled},
	{StateAwaitingReason, SignalAny,
		[]string{"action_classify_reason"}, "", StateFulfilled},
}

// SignalFor computes the guard signal for a state from the classifiers.
func SignalFor(state State, text string) Signal {
	switch state {
	case StateAwaitingIdentity:
		switch classify.Identity(text) {
		case classify.IdentityConfirmed:
			return SignalConfirm
		case classify.IdentityDenied:
			return SignalDeny
		default:
			return SignalNoMatch
		}
	case StateAwaitingWillingness:
		w := classify.ClassifyWillingness(text)
		switch {
		case w.CanPay:
			return SignalCanPay
		case w.CannotPay:
			return SignalCannotPay
		case w.AsksDate:
			return SignalAsksDate
		default:
			return SignalDefault
		}
	default:
		return SignalAny
	}
}

// Lookup finds the transition for a state/signal pair.
func Lookup(state State, sig Signal) (Transition, bool) {
	for _, t := range Transitions {
		if t.From == state && t.On == sig {
			return t, true
		}
	}
	return Transition{}, false
}

// followupLimit bounds action chaining within a single turn.
const followupLimit = 5

// Engine drives complete conversations for callers that hold their own
// tracker, such as the websocket session channel. The production runtime
// instead invokes single actions through the webhook and applies events
// itself.
type Engine struct {
	registry *Registry
}

func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// Greeting opens a session.
func (e *Engine) Greeting(tracker *Tracker) []Response {
	if tracker.Slot(SlotState) == "" {
		tracker.SetSlot(SlotState, string(StateAwaitingIdentity))
	}
	return []Response{{
		Template: "utter_greet",
		Args:     map[string]string{SlotClientName: customerName(tracker, e.registry.opts)},
	}}
}

// HandleTurn processes one user message: it selects the transition for the
// current state, runs its actions (applying slot events and chaining
// followups), advances the state and returns the collected responses.
func (e *Engine) HandleTurn(tracker *Tracker, text string) ([]Response, error) {
	tracker.LatestMessage = Message{Text: text}

	state := State(tracker.Slot(SlotState))
	if state == "" {
		state = StateAwaitingIdentity
	}
	if state.Terminal() {
		return []Response{{Template: "utter_goodbye"}}, nil
	}

	sig := SignalFor(state, tracker.LatestText())
	tr, ok := Lookup(state, sig)
	if !ok {
		return nil, fmt.Errorf("no transition from %s on %s", state, sig)
	}
	zap.L().Debug("conversation turn",
		zap.String("sender_id", tracker.SenderID),
		zap.String("state", string(state)),
		zap.String("signal", string(sig)),
		zap.String("next", string(tr.To)))

	disp := NewDispatcher()
	queue := append([]string(nil), tr.Actions...)
	for steps := 0; len(queue) > 0; steps++ {
		if steps >= followupLimit {
			return nil, fmt.Errorf("followup chain exceeded %d actions", followupLimit)
		}
		name := queue[0]
		queue = queue[1:]
		action, ok := e.registry.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown action %s", name)
		}
		events, err := action.Run(disp, tracker, nil)
		if err != nil {
			return nil, err
		}
		for _, ev := range events {
			switch ev.Event {
			case "slot":
				tracker.SetSlot(ev.Name, ev.Value)
			case "followup":
				queue = append(queue, ev.Name)
			}
		}
	}

	if tr.Respond != "" {
		disp.UtterResponse(tr.Respond, map[string]string{SlotClientName: clientName(tracker)})
	}

	tracker.SetSlot(SlotState, string(tr.To))
	return disp.Responses(), nil
}
