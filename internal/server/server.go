// Package server wires the HTTP surface around the decision layer.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stripe/stripe-go/v72"
	"go.uber.org/zap"

	"cobranza/internal/api"
	"cobranza/internal/config"
	"cobranza/internal/convo"
	"cobranza/internal/notify"
	"cobranza/internal/payments"
	"cobranza/internal/store"
)

type Server struct {
	httpServer *http.Server
	store      store.Store
}

// New opens the configured store, builds the action registry and mounts the
// router.
func New(cfg *config.Config) (*Server, error) {
	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	opts := convo.Options{
		DefaultCustomerName:  cfg.DefaultCustomerName,
		DefaultInvoiceAmount: cfg.DefaultInvoiceAmount,
		Strict:               cfg.StrictStorage,
	}
	if cfg.SMSEnabled() {
		notifier := notify.NewSMSNotifier(
			cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber, cfg.CustomerPhone)
		if key := cfg.StripeKey(); key != "" {
			stripe.Key = key
			notifier.WithPaymentLinks(&payments.Client{Currency: cfg.PaymentCurrency})
		}
		opts.Notifier = notifier
	}
	registry := convo.NewRegistry(st, opts)

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	srv := &Server{
		store: st,
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      api.NewRouter(cfg, registry, st, upgrader),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
	return srv, nil
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "sqlite3":
		st, err := store.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := st.CreateTables(); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	case "memory":
		zap.L().Warn("using in-memory store, data will not survive a restart")
		return store.NewInMemoryStore(), nil
	default:
		return store.NewPostgresStore(cfg.PostgresDSN())
	}
}

func (s *Server) Start() error {
	zap.L().Info("server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	defer s.store.Close()
	return s.httpServer.Shutdown(ctx)
}
