package transport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"tabsplit/persistence"
	"tabsplit/split"
	"tabsplit/storage"
)

// Transport owns the HTTP handlers and their collaborators. The settlement
// engine is stateless, so only the clients live here.
type Transport struct {
	persistenceClient *persistence.Client
	gcsClient         *storage.GCSClient
	visionClient      *storage.VisionClient
}

func NewTransport(persistenceClient *persistence.Client, gcsClient *storage.GCSClient, visionClient *storage.VisionClient) *Transport {
	return &Transport{
		persistenceClient: persistenceClient,
		gcsClient:         gcsClient,
		visionClient:      visionClient,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Response already started, nothing left to send the client.
		slog.Error("failed to encode response", "error", err)
	}
}

// ErrorResponse is the JSON body for every failed request. Kind and Ref are
// set when a settlement rule was violated.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Ref   string `json:"ref,omitempty"`
}

// writeError translates failures into status codes: broken settlement rules
// are the caller's fault (400), a missing receipt is 404, anything else is a
// store failure (500).
func writeError(w http.ResponseWriter, err error) {
	var ruleErr *split.RuleError
	switch {
	case errors.As(err, &ruleErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: ruleErr.Error(),
			Kind:  string(ruleErr.Kind),
			Ref:   ruleErr.Ref,
		})
	case errors.Is(err, persistence.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	default:
		slog.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
