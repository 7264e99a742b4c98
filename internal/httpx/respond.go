package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/angelcm/cowork-dashboard/internal/apperr"
	"github.com/angelcm/cowork-dashboard/internal/models"
)

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}

type errorBody struct {
	Error   apperr.Kind `json:"error"`
	Message string      `json:"message"`
	Count   int         `json:"count,omitempty"`
	// Assignments already saved when auto-distribute stopped on an error.
	Assignments []models.Assignment `json:"assignments,omitempty"`
}

func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	code, body := errorResponse(log, err)
	writeJSONStatus(w, code, body)
}

func errorResponse(log *slog.Logger, err error) (int, errorBody) {
	code := apperr.HTTPStatus(err)
	body := errorBody{Error: apperr.KindOf(err), Message: err.Error()}
	var warn *apperr.UnapprovedWarning
	if errors.As(err, &warn) {
		body.Count = warn.Count
	}
	if code >= 500 {
		log.Error("request failed", slog.String("err", err.Error()))
		body.Message = "internal error"
	}
	return code, body
}

// maxBody caps request bodies.
const maxBody = 1 << 20

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.InvalidArgument("invalid JSON body: %v", err)
	}
	return nil
}
