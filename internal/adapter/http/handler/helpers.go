package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/banca/opledger/internal/adapter/http/dto"
	"github.com/banca/opledger/internal/domain"
)

// Error codes carried in the "error" field of error responses.
const (
	codeValidation = "validation_error"
	codeConflict   = "conflict"
	codeNotFound   = "not_found"
	codeInternal   = "internal_error"
)

const internalErrorMessage = "an unexpected error occurred"

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// mapDomainError maps domain error kinds to HTTP status codes and error codes.
func mapDomainError(err error) (int, string) {
	switch domain.Kind(err) {
	case domain.ErrValidation:
		return http.StatusBadRequest, codeValidation
	case domain.ErrNotFound:
		return http.StatusNotFound, codeNotFound
	case domain.ErrConflict:
		return http.StatusConflict, codeConflict
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// respondError writes err to the client. Internal failures are logged and replaced by a
// generic message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := mapDomainError(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Bool("inconsistent_state", errors.Is(err, domain.ErrInconsistentState)).
			Msg("request failed")
		writeError(w, status, code, internalErrorMessage)
		return
	}

	writeError(w, status, code, err.Error())
}

// decodeJSON decodes the request body into dst and validates its struct tags.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrValidation, err)
	}

	return dto.Validate(dst)
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) (int, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue, nil
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidPagination, key)
	}

	return i, nil
}

func parseAccountID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "accountId")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidAccountID, raw)
	}

	return id, nil
}

func parseOperationID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "operationId")

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: operation id %q", domain.ErrInvalidIDFormat, raw)
	}

	return id, nil
}

// createdOrReplayed returns 200 for a replayed command and 201 otherwise.
func createdOrReplayed(replayed bool) int {
	if replayed {
		return http.StatusOK
	}
	return http.StatusCreated
}
