package handlers

import (
	"encoding/json"
	"net/http"

	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"cobranza/internal/config"
)

type SMSRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type SMSResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	SID     string `json:"sid,omitempty"`
}

// HandleSendSMS sends a one-off SMS, typically a payment reminder.
func HandleSendSMS(cfg *config.Config) http.HandlerFunc {
	// initialize twilio client
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req SMSRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if req.To == "" || req.Message == "" {
			http.Error(w, "Missing required fields", http.StatusBadRequest)
			return
		}

		params := &openapi.CreateMessageParams{}
		params.SetTo(req.To)
		params.SetFrom(cfg.TwilioPhoneNumber)
		params.SetBody(req.Message)

		resp, err := client.Api.CreateMessage(params)
		if err != nil {
			zap.L().Error("failed to send sms", zap.String("to", req.To), zap.Error(err))
			http.Error(w, "Failed to send SMS", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, SMSResponse{
			Success: true,
			Message: "SMS sent successfully",
			SID:     *resp.Sid,
		})
	}
}
