package convo

import (
	"math"
	"strconv"
	"strings"
)

// templates are the canned Spanish responses the actions reference by name.
// The runtime keeps its own copies; these back the websocket session channel
// and the /templates endpoint. Placeholders use {name} interpolation.
var templates = map[string]string{
	"utter_greet":                "Buenas tardes, le llamamos de Verisure. ¿Hablo con {client_name}?",
	"utter_confirm_identity":     "¿Hablo con {client_name}?",
	"utter_invoice_pending_info": "Gracias {client_name}. Usted registra {pending_invoice_count} factura(s) pendiente(s) por un total de {pending_invoice_total}. ¿Puede realizar el pago?",
	"utter_wrong_person":         "Disculpe la molestia, parece que marcamos un número equivocado. Que tenga buen día.",
	"utter_ask_payment_date":     "Perfecto. ¿En qué fecha podría realizar el pago?",
	"utter_ask_reason":           "Entiendo. ¿Puede indicarnos el motivo por el cual no puede realizar el pago?",
	"utter_invoice_date_info":    "Su factura fue emitida hace algunas semanas y ya se encuentra vencida.",
	"utter_payment_confirmed":    "Perfecto {client_name}, registramos su compromiso de pago para el {payment_date}. Muchas gracias.",
	"utter_financial_difficulty": "Entendemos su situación, {client_name}. Un ejecutivo se contactará con usted para evaluar alternativas de pago.",
	"utter_payment_dispute":      "Gracias por la aclaración, {client_name}. Dejaremos su factura en revisión mientras verificamos el pago.",
	"utter_goodbye":              "Gracias por su tiempo. Que tenga buen día.",
}

// RenderTemplate interpolates a named template. The second return value is
// false for unknown template names.
func RenderTemplate(name string, args map[string]string) (string, bool) {
	text, ok := templates[name]
	if !ok {
		return "", false
	}
	for k, v := range args {
		text = strings.ReplaceAll(text, "{"+k+"}", v)
	}
	return text, true
}

// TemplateNames lists the known response templates.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	return names
}

// FormatAmount renders a peso amount the way invoices print it: "$55.000",
// dot as thousands separator, no decimals.
func FormatAmount(v float64) string {
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte('.')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
