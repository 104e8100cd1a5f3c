package classify

import "testing"

func TestIdentity(t *testing.T) {
	cases := []struct {
		text string
		want IdentityResult
	}{
		{"sí", IdentityConfirmed},
		{"si, soy yo", IdentityConfirmed},
		{"correcto", IdentityConfirmed},
		{"soy dennis kangme", IdentityConfirmed},
		{"no soy esa persona", IdentityDenied},
		{"no", IdentityDenied},
		{"incorrecto", IdentityDenied},
		{"", IdentityNoMatch},
		{"soy mauricio", IdentityNoMatch},
	}
	for _, c := range cases {
		if got := Identity(c.text); got != c.want {
			t.Errorf("Identity(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestIdentityEmptyStringIsNotConfirmed(t *testing.T) {
	// The identity check is existence of a confirmation keyword, so the
	// empty utterance must come out as not confirmed.
	if Identity("") == IdentityConfirmed {
		t.Error("Identity(\"\") confirmed, want not confirmed")
	}
}

func TestClassifyWillingnessCanPay(t *testing.T) {
	w := ClassifyWillingness("sí, puedo pagar mañana")
	if !w.CanPay {
		t.Error("CanPay = false, want true")
	}
	if w.CannotPay {
		t.Error("CannotPay = true, want false")
	}
}

func TestClassifyWillingnessCannotPay(t *testing.T) {
	// "puedo" occurs inside "no puedo" but must not count as can-pay.
	w := ClassifyWillingness("no puedo")
	if w.CanPay {
		t.Error("CanPay = true, want false")
	}
	if !w.CannotPay {
		t.Error("CannotPay = false, want true")
	}
}

func TestClassifyWillingnessAsksDate(t *testing.T) {
	for _, text := range []string{"¿qué fecha es?", "cuándo vence", "de cuando es la factura"} {
		w := ClassifyWillingness(text)
		if !w.AsksDate {
			t.Errorf("AsksDate(%q) = false, want true", text)
		}
	}
}

func TestReason(t *testing.T) {
	cases := []struct {
		text string
		want ReasonType
	}{
		{"estoy sin trabajo", ReasonFinancialDifficulty},
		{"estoy cesante", ReasonFinancialDifficulty},
		{"ya pagué esa factura", ReasonPaymentDispute},
		{"no es mi deuda", ReasonPaymentDispute},
		{"se me olvidó", ReasonOther},
		{"", ReasonOther},
	}
	for _, c := range cases {
		if got := Reason(c.text); got != c.want {
			t.Errorf("Reason(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestReasonHardshipPrecedence(t *testing.T) {
	// Both phrase sets match; financial hardship wins.
	if got := Reason("estoy cesante y ya pagué"); got != ReasonFinancialDifficulty {
		t.Errorf("Reason = %v, want %v", got, ReasonFinancialDifficulty)
	}
}

func TestClientName(t *testing.T) {
	name, ok := ClientName("soy mauricio")
	if !ok || name != "Mauricio" {
		t.Errorf("ClientName(soy mauricio) = %q, %t, want Mauricio, true", name, ok)
	}

	name, ok = ClientName("hola soy mauricio martinez")
	if !ok || name != "Mauricio Martinez" {
		t.Errorf("got %q, %t, want Mauricio Martinez, true", name, ok)
	}

	if _, ok := ClientName("aló"); ok {
		t.Error("ClientName(aló) matched, want no match")
	}
}

func TestClientNameLegacy(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"soy mauricio", "Mauricio"},
		{"hablo con juan", "Juan"},
		// The final pattern is a deliberate catch-all over any alphabetic
		// text.
		{"buenas tardes", "Buenas Tardes"},
	}
	for _, c := range cases {
		if got := ClientNameLegacy(c.text); got != c.want {
			t.Errorf("ClientNameLegacy(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}
