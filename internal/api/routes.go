package api

import (
	"net/http"

	"github.com/gorilla/websocket"

	h "cobranza/internal/api/handlers"
	"cobranza/internal/config"
	"cobranza/internal/convo"
	"cobranza/internal/middleware"
	"cobranza/internal/store"
)

func NewRouter(cfg *config.Config, registry *convo.Registry, st store.Store, upgrader websocket.Upgrader) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/up", h.HealthCheck)

	// Action server: the dialogue runtime invokes one action per turn.
	mux.Handle("/webhook", h.HandleActionWebhook(registry))

	// Interactive session channel driving the full state machine.
	mux.Handle("/session", h.HandleSession(registry, st, upgrader))

	// Response templates, rendered server-side for the runtime.
	mux.HandleFunc("/templates/", h.HandleRenderTemplate) // Note the trailing slash

	// Stripe
	mux.Handle("/payment-link", h.HandleCreatePaymentLink(cfg))

	// Twilio
	mux.Handle("/send-sms", h.HandleSendSMS(cfg))

	var handler http.Handler = mux
	handler = middleware.Logging(handler)

	return handler
}
