// Package notify sends out-of-band confirmations to the customer.
package notify

import (
	"fmt"

	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"cobranza/internal/store"
)

// PaymentLinker produces a payment URL for one invoice. Satisfied by
// payments.Client.
type PaymentLinker interface {
	InvoiceLink(amount float64, customerName, invoiceNumber string) (url, id string, err error)
}

// SMSNotifier confirms an agreed payment date over Twilio SMS. It satisfies
// the convo.Notifier contract: callers treat failures as best-effort.
type SMSNotifier struct {
	client *twilio.RestClient
	from   string
	to     string
	linker PaymentLinker
}

func NewSMSNotifier(accountSID, authToken, from, to string) *SMSNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSNotifier{client: client, from: from, to: to}
}

// WithPaymentLinks makes the confirmation include a payment link for the
// scheduled invoice.
func (n *SMSNotifier) WithPaymentLinks(linker PaymentLinker) *SMSNotifier {
	n.linker = linker
	return n
}

func (n *SMSNotifier) PaymentScheduled(clientName, formattedDate string, inv *store.Invoice) error {
	body := fmt.Sprintf("Hola %s, confirmamos su compromiso de pago para el %s. Verisure.",
		clientName, formattedDate)

	if n.linker != nil && inv != nil {
		url, _, err := n.linker.InvoiceLink(inv.Amount, clientName, inv.InvoiceNumber)
		if err != nil {
			return fmt.Errorf("payment link for sms: %w", err)
		}
		body += " Puede pagar aquí: " + url
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(n.to)
	params.SetFrom(n.from)
	params.SetBody(body)

	if _, err := n.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("send confirmation sms: %w", err)
	}
	return nil
}
