package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

func RespondJSON(w http.ResponseWriter, logger *zap.Logger, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Could not encode JSON body", zap.Error(err))
	}
}

// RespondError writes err as {"error": ...}. Validation errors also carry
// their reason. Anything unclassified is logged and hidden behind fallback.
func RespondError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	status := HTTPStatus(err)

	var verr *ValidationError
	if errors.As(err, &verr) {
		RespondJSON(w, logger, status, verr)
		return
	}

	type response struct {
		Error string `json:"error"`
	}
	if status == http.StatusInternalServerError {
		logger.Error(fallback, zap.Error(err))
		RespondJSON(w, logger, status, response{Error: fallback})
		return
	}
	RespondJSON(w, logger, status, response{Error: err.Error()})
}

// DecodeJSON decodes a bounded request body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return NewError(ErrInvalidInput, "Invalid request body")
	}
	return nil
}
