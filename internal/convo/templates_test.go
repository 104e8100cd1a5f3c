package convo

import "testing"

func TestRenderTemplate(t *testing.T) {
	text, ok := RenderTemplate("utter_payment_confirmed", map[string]string{
		"payment_date": "viernes 8 de agosto",
		"client_name":  "Mauricio",
	})
	if !ok {
		t.Fatal("template not found")
	}
	want := "Perfecto Mauricio, registramos su compromiso de pago para el viernes 8 de agosto. Muchas gracias."
	if text != want {
		t.Errorf("got %q, want %q", text, want)
	}
}

func TestRenderTemplateUnknown(t *testing.T) {
	if _, ok := RenderTemplate("utter_nope", nil); ok {
		t.Error("unknown template rendered")
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{55000, "$55.000"},
		{120000, "$120.000"},
		{1234567, "$1.234.567"},
		{500, "$500"},
		{0, "$0"},
	}
	for _, c := range cases {
		if got := FormatAmount(c.in); got != c.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
