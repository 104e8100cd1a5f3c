// Package classify holds the keyword classifiers that turn a caller's
// free-text utterance into conversation signals. Matching is substring
// containment over the lower-cased text, never tokenization, so every rule
// table lists longer phrases before shorter ones sharing a prefix.
package classify

import (
	"regexp"
	"strings"
)

// DefaultClientName is used when no name can be extracted from the utterance.
const DefaultClientName = "Dennis"

// IdentityResult is the outcome of the identity-confirmation classifier.
type IdentityResult int

const (
	IdentityNoMatch IdentityResult = iota
	IdentityConfirmed
	IdentityDenied
)

var identityConfirmPhrases = []string{
	"soy dennis kangme",
	"soy dennis",
	"correcto",
	"correct",
	"sí",
	"si",
	"yes",
}

var identityDenyPhrases = []string{
	"incorrecto",
	"incorrect",
	"no soy",
	"no es",
	"no",
}

// Identity classifies whether the caller confirms being the account holder.
// Confirmation wins over denial; callers downstream map IdentityNoMatch to
// the deny outcome.
func Identity(text string) IdentityResult {
	switch {
	case containsAny(text, identityConfirmPhrases):
		return IdentityConfirmed
	case containsAny(text, identityDenyPhrases):
		return IdentityDenied
	default:
		return IdentityNoMatch
	}
}

// Willingness carries the three independent payment-willingness checks.
// Precedence when acting on it is CanPay > CannotPay > AsksDate, and the
// default branch follows the can-pay path.
type Willingness struct {
	CanPay    bool
	CannotPay bool
	AsksDate  bool
}

var cannotPayPhrases = []string{
	"no puedo pagar",
	"no puedo",
	"no tengo",
	"no",
}

var canPayPhrases = []string{
	"puedo pagar",
	"puedo",
	"claro",
	"sí",
	"si",
	"yes",
}

var askDatePhrases = []string{
	"qué fecha",
	"que fecha",
	"fecha",
	"cuándo",
	"cuando",
}

// ClassifyWillingness evaluates the three willingness checks. The can-pay
// check runs on a copy of the text with the cannot-pay phrases blanked out,
// so "no puedo" does not count as "puedo".
func ClassifyWillingness(text string) Willingness {
	return Willingness{
		CanPay:    containsAny(maskPhrases(text, cannotPayPhrases), canPayPhrases),
		CannotPay: containsAny(text, cannotPayPhrases),
		AsksDate:  containsAny(text, askDatePhrases),
	}
}

// ReasonType labels the caller's stated reason for non-payment.
type ReasonType string

const (
	ReasonFinancialDifficulty ReasonType = "financial_difficulty"
	ReasonPaymentDispute      ReasonType = "payment_dispute"
	ReasonOther               ReasonType = "other"
)

var financialPhrases = []string{
	"sin dinero",
	"sin trabajo",
	"cesante",
	"enfermo",
	"desempleado",
}

var disputePhrases = []string{
	"ya la pagué",
	"ya pagué",
	"ya pague",
	"no es mi deuda",
	"no debo",
}

// Reason classifies the non-payment reason. Financial hardship takes
// precedence when both phrase sets match. Unmatched input is labeled
// ReasonOther but still gets the financial-difficulty response; that
// asymmetry between stored label and reply is inherited behavior.
func Reason(text string) ReasonType {
	switch {
	case containsAny(text, financialPhrases):
		return ReasonFinancialDifficulty
	case containsAny(text, disputePhrases):
		return ReasonPaymentDispute
	default:
		return ReasonOther
	}
}

var namePattern = regexp.MustCompile(`soy\s+([a-zA-Z\s]+)`)

// legacyNamePatterns are tried in order. The last one matches virtually any
// alphabetic text; that catch-all is deliberately permissive so the flow
// always ends up with some name to address the caller by.
var legacyNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`soy\s+([a-zA-Z\s]+)`),
	regexp.MustCompile(`habla\s+con\s+([a-zA-Z\s]+)`),
	regexp.MustCompile(`con\s+([a-zA-Z\s]+)`),
	regexp.MustCompile(`([a-zA-Z\s]+)\s+kangme`),
	regexp.MustCompile(`([a-zA-Z\s]+)`),
}

// ClientName extracts a self-introduced name ("soy mauricio" → "Mauricio").
// A structured entity from the NLU layer, when present, should be preferred
// by the caller; this only looks at the raw text.
func ClientName(text string) (string, bool) {
	m := namePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return "", false
	}
	return titleCase(name), true
}

// ClientNameLegacy is the older, permissive extraction kept for behavioral
// compatibility with recorded conversations.
func ClientNameLegacy(text string) string {
	for _, re := range legacyNamePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if name := strings.TrimSpace(m[1]); name != "" {
			return titleCase(name)
		}
	}
	return DefaultClientName
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func maskPhrases(text string, phrases []string) string {
	for _, p := range phrases {
		text = strings.ReplaceAll(text, p, " ")
	}
	return text
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
