package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"cobranza/internal/convo"
)

// ActionRequest is the runtime's per-turn invocation payload.
type ActionRequest struct {
	NextAction string        `json:"next_action"`
	SenderID   string        `json:"sender_id"`
	Tracker    convo.Tracker `json:"tracker"`
	Domain     convo.Domain  `json:"domain"`
}

// ActionResponse carries the slot/followup events and response directives
// back to the runtime.
type ActionResponse struct {
	Events    []convo.Event    `json:"events"`
	Responses []convo.Response `json:"responses"`
}

// HandleActionWebhook runs one named action against the tracker the runtime
// sent and returns the collected events and responses.
func HandleActionWebhook(registry *convo.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req ActionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "invalid request body", err)
			return
		}
		if req.NextAction == "" {
			writeErrorResponse(w, http.StatusBadRequest, "invalid request body", errors.New("next_action is required"))
			return
		}

		action, ok := registry.Get(req.NextAction)
		if !ok {
			writeErrorResponse(w, http.StatusNotFound, "unknown action", errors.New(req.NextAction))
			return
		}

		tracker := &req.Tracker
		if tracker.SenderID == "" {
			tracker.SenderID = req.SenderID
		}
		if tracker.Slots == nil {
			tracker.Slots = make(map[string]interface{})
		}

		disp := convo.NewDispatcher()
		events, err := action.Run(disp, tracker, req.Domain)
		if err != nil {
			zap.L().Error("action failed",
				zap.String("action", req.NextAction),
				zap.String("sender_id", tracker.SenderID),
				zap.Error(err))
			writeErrorResponse(w, http.StatusInternalServerError, "action failed", err)
			return
		}

		resp := ActionResponse{Events: events, Responses: disp.Responses()}
		if resp.Events == nil {
			resp.Events = []convo.Event{}
		}
		if resp.Responses == nil {
			resp.Responses = []convo.Response{}
		}
		writeJSON(w, http.StatusOK, resp)
	})
}
