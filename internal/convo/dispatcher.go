package convo

import "encoding/json"

// Response is a single directive to the runtime: either a named response
// template with interpolation arguments, or raw literal text for dynamically
// generated sentences.
type Response struct {
	Template string
	Args     map[string]string
	Text     string
}

// MarshalJSON flattens template arguments next to the template key, matching
// the runtime's response directive wire format.
func (r Response) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(r.Args)+1)
	for k, v := range r.Args {
		m[k] = v
	}
	if r.Template != "" {
		m["response"] = r.Template
	} else {
		m["text"] = r.Text
	}
	return json.Marshal(m)
}

// Dispatcher collects the response directives an action emits during one
// invocation.
type Dispatcher struct {
	responses []Response
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// UtterResponse emits a named response template with arguments.
func (d *Dispatcher) UtterResponse(template string, args map[string]string) {
	d.responses = append(d.responses, Response{Template: template, Args: args})
}

// UtterText emits a literal sentence.
func (d *Dispatcher) UtterText(text string) {
	d.responses = append(d.responses, Response{Text: text})
}

// Responses returns the collected directives in emission order.
func (d *Dispatcher) Responses() []Response {
	return d.responses
}
