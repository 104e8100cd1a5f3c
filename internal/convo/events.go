package convo

// Event is a directive returned by an action to the runtime: set a slot or
// immediately invoke another named action in the same turn.
type Event struct {
	Event string `json:"event"`
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// SlotSet instructs the runtime to store a slot value.
func SlotSet(name, value string) Event {
	return Event{Event: "slot", Name: name, Value: value}
}

// Followup instructs the runtime to run another action before awaiting new
// user input.
func Followup(action string) Event {
	return Event{Event: "followup", Name: action}
}
