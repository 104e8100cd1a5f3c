// Package payments creates Stripe payment links for invoices.
package payments

import (
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentlink"
	"github.com/stripe/stripe-go/v72/price"
	"github.com/stripe/stripe-go/v72/product"
)

// Client issues payment links through the package-level stripe key, which the
// caller is responsible for setting.
type Client struct {
	Currency string
}

// InvoiceLink creates a product, a price and a payment link for one invoice.
// Amount is in whole currency units; Stripe wants the minor unit.
func (c *Client) InvoiceLink(amount float64, customerName, invoiceNumber string) (url, id string, err error) {
	prod, err := product.New(&stripe.ProductParams{
		Name: stripe.String("Pago de factura " + invoiceNumber),
	})
	if err != nil {
		return "", "", fmt.Errorf("create stripe product: %w", err)
	}

	p, err := price.New(&stripe.PriceParams{
		Currency:   stripe.String(c.Currency),
		Product:    stripe.String(prod.ID),
		UnitAmount: stripe.Int64(int64(math.Round(amount * 100))),
	})
	if err != nil {
		return "", "", fmt.Errorf("create stripe price: %w", err)
	}

	params := &stripe.PaymentLinkParams{
		LineItems: []*stripe.PaymentLinkLineItemParams{
			{
				Price:    stripe.String(p.ID),
				Quantity: stripe.Int64(1),
			},
		},
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.AddMetadata("customer_name", customerName)
	params.AddMetadata("invoice_number", invoiceNumber)

	link, err := paymentlink.New(params)
	if err != nil {
		return "", "", fmt.Errorf("create payment link: %w", err)
	}
	return link.URL, link.ID, nil
}
