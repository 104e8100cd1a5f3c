package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cobranza/internal/convo"
	"cobranza/internal/store"
)

type sessionInbound struct {
	Message string `json:"message"`
}

type sessionOutbound struct {
	Text  string `json:"text"`
	State string `json:"state"`
}

// HandleSession upgrades to a websocket and drives a full conversation: the
// client sends {"message": ...} per turn and receives one or more rendered
// replies. Each connection is its own session with fresh slots.
func HandleSession(registry *convo.Registry, st store.Store, upgrader websocket.Upgrader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			zap.L().Error("failed to upgrade connection", zap.Error(err))
			return
		}
		defer ws.Close()

		sessionID := uuid.NewString()
		zap.L().Info("session opened", zap.String("session_id", sessionID))
		if err := st.LogInteraction(sessionID, "session_opened", r.RemoteAddr); err != nil {
			zap.L().Warn("interaction log failed", zap.Error(err))
		}

		engine := convo.NewEngine(registry)
		tracker := convo.NewTracker(sessionID)

		send := func(responses []convo.Response) error {
			state := tracker.Slot(convo.SlotState)
			for _, resp := range responses {
				out := sessionOutbound{Text: renderResponse(resp), State: state}
				if err := ws.WriteJSON(out); err != nil {
					return err
				}
			}
			return nil
		}

		if err := send(engine.Greeting(tracker)); err != nil {
			return
		}

		for {
			_, raw, err := ws.ReadMessage()
			if err != nil {
				zap.L().Info("session closed", zap.String("session_id", sessionID))
				return
			}

			var in sessionInbound
			if err := json.Unmarshal(raw, &in); err != nil || in.Message == "" {
				continue
			}

			responses, err := engine.HandleTurn(tracker, in.Message)
			if err != nil {
				// Strict mode can propagate storage errors; the caller still
				// gets a reply so the conversation never stalls.
				zap.L().Error("turn failed", zap.String("session_id", sessionID), zap.Error(err))
				responses = []convo.Response{{Text: "Disculpe, tuvimos un inconveniente. ¿Podría repetirlo?"}}
			}
			if err := send(responses); err != nil {
				return
			}
		}
	})
}

func renderResponse(resp convo.Response) string {
	if resp.Template == "" {
		return resp.Text
	}
	if text, ok := convo.RenderTemplate(resp.Template, resp.Args); ok {
		return text
	}
	return resp.Template
}
