package httpapi

import (
	"io"
	"net/http"
)

// maxWebhookBody bounds provider payloads; real events are a few KB.
const maxWebhookBody = 1 << 20

// billingWebhook ingests provider events. Signature verification happens
// inside the provider's parser; events that verify but can't be applied
// are logged and acknowledged so the provider stops retrying them.
func (a *api) billingWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "failed to read webhook payload")
		return
	}

	signature := r.Header.Get("Paddle-Signature")
	event, err := a.deps.Provider.ParseWebhook(r.Context(), payload, signature)
	if err != nil {
		a.deps.Log.WarnContext(r.Context(), "webhook rejected", "error", err)
		respondError(w, http.StatusBadRequest, "invalid_signature", "webhook verification failed")
		return
	}

	a.deps.Reconciler.Process(r.Context(), event)
	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}
