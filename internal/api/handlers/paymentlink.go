package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/stripe/stripe-go/v72"

	"cobranza/internal/config"
	"cobranza/internal/payments"
)

type PaymentLinkRequest struct {
	Amount        float64 `json:"amount"`
	CustomerName  string  `json:"customer_name"`
	InvoiceNumber string  `json:"invoice_number"`
	Currency      string  `json:"currency"`
	Environment   string  `json:"environment"`
}

type PaymentLinkResponse struct {
	PaymentURL    string `json:"payment_url"`
	PaymentLinkID string `json:"payment_link_id"`
	InvoiceNumber string `json:"invoice_number"`
}

// HandleCreatePaymentLink creates a Stripe payment link for a pending
// invoice so the agent can text it to the customer.
func HandleCreatePaymentLink(cfg *config.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var params PaymentLinkRequest
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "invalid request parameters", err)
			return
		}

		// set stripe api key based on environment
		if params.Environment == "production" {
			stripe.Key = cfg.StripeAPIKeyLive
		} else {
			stripe.Key = cfg.StripeAPIKeyTest
		}

		currency := params.Currency
		if currency == "" {
			currency = cfg.PaymentCurrency
		}

		client := &payments.Client{Currency: currency}
		url, id, err := client.InvoiceLink(params.Amount, params.CustomerName, params.InvoiceNumber)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "failed to create payment link", err)
			return
		}

		writeJSON(w, http.StatusOK, PaymentLinkResponse{
			PaymentURL:    url,
			PaymentLinkID: id,
			InvoiceNumber: params.InvoiceNumber,
		})
	})
}
