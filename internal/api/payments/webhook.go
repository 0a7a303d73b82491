// internal/api/payments/webhook.go
package payments

import (
	"io"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chino-hash/turnero-padel/internal/api/apiutil"
)

var (
	processor *Processor
	initOnce  sync.Once
)

// maxWebhookBody bounds how much of a delivery body is read.
const maxWebhookBody = 1 << 20

const (
	headerSignature = "X-Signature"
	headerRequestID = "X-Request-Id"
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(p *Processor) {
	if p == nil {
		return
	}
	initOnce.Do(func() {
		processor = p
	})
}

type webhookError struct {
	Error string `json:"error"`
}

// POST /api/v1/payments/webhook
func HandleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if processor == nil {
		logger.Error().Msg("Webhook processor not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to read webhook body")
		writeWebhookJSON(w, logger, http.StatusBadRequest, webhookError{Error: "failed to read request body"})
		return
	}

	result := processor.Handle(r.Context(), body, r.Header.Get(headerSignature), r.Header.Get(headerRequestID))
	status := statusForResult(result)

	if result.failure != failureNone && result.failure != failureReplay {
		writeWebhookJSON(w, logger, status, webhookError{Error: result.Message})
		return
	}
	writeWebhookJSON(w, logger, status, result)
}

// statusForResult maps a pipeline outcome to an HTTP status. Replays answer
// 200 so the provider stops redelivering an event that was already applied.
func statusForResult(result Result) int {
	switch result.failure {
	case failureNone, failureReplay:
		return http.StatusOK
	case failureValidation:
		return http.StatusBadRequest
	case failureAuthentication:
		return http.StatusUnauthorized
	case failureNotFound:
		return http.StatusNotFound
	case failureConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// GET /api/v1/payments/webhook
//
// Providers check the endpoint for liveness before enabling deliveries. The
// response is static capability info; no state is touched.
func HandleWebhookInfo(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	info := map[string]any{
		"service": "payments-webhook",
		"status":  "ready",
		"accepts": []string{eventTypePayment},
	}
	writeWebhookJSON(w, logger, http.StatusOK, info)
}

func writeWebhookJSON(w http.ResponseWriter, logger *zerolog.Logger, status int, payload any) {
	if err := apiutil.WriteJSON(w, status, payload); err != nil {
		logger.Error().Err(err).Msg("Failed to write webhook response")
	}
}
