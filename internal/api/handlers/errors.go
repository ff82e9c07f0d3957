package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/voicebridge/internal/pipeline"
	"github.com/nikhilbhutani/voicebridge/internal/speech"
)

type errorBody struct {
	Error          string `json:"error"`
	Kind           string `json:"kind"`
	Stage          string `json:"stage,omitempty"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

// writeSpeechError maps the speech error taxonomy onto HTTP statuses.
func writeSpeechError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error()}
	status := http.StatusInternalServerError

	var (
		invalid *speech.InvalidInputError
		apiErr  *speech.APIError
		parse   *speech.ParseError
		conn    *speech.ConnectionError
		stage   *pipeline.StageError
	)
	if errors.As(err, &stage) {
		body.Stage = stage.Stage
	}

	switch {
	case errors.As(err, &invalid):
		status, body.Kind = http.StatusBadRequest, "invalid_input"
	case errors.As(err, &apiErr):
		status, body.Kind = http.StatusBadGateway, "api_error"
		body.UpstreamStatus = apiErr.StatusCode
	case errors.As(err, &parse):
		status, body.Kind = http.StatusBadGateway, "parse_error"
	case errors.As(err, &conn):
		status, body.Kind = http.StatusGatewayTimeout, "connection_error"
	default:
		body.Kind = "internal"
	}

	if status >= 500 {
		slog.Warn("speech call failed", "kind", body.Kind, "stage", body.Stage, "error", err)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
