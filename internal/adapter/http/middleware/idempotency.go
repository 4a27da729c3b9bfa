package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/banca/opledger/internal/infrastructure/metrics"
	"github.com/banca/opledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a response served from the store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"

	pendingMarker = "processing"
)

// storedResponse is what the store keeps for a completed request.
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
	// BodyHash is the hex SHA-256 of the request body that produced the response.
	BodyHash string `json:"bodyHash,omitempty"`
}

// IdempotencyMiddleware replays responses of POST requests that carry an Idempotency-Key header.
type IdempotencyMiddleware struct {
	store   usecase.IdempotencyStore
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{store: store, ttl: usecase.IdempotencyKeyTTL}
}

// WithTTL overrides how long responses are kept.
func (m *IdempotencyMiddleware) WithTTL(ttl time.Duration) *IdempotencyMiddleware {
	if ttl > 0 {
		m.ttl = ttl
	}
	return m
}

// WithMetrics counts replayed responses.
func (m *IdempotencyMiddleware) WithMetrics(mt *metrics.Metrics) *IdempotencyMiddleware {
	m.metrics = mt
	return m
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get(IdempotencyKeyHeader)
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		// The same header value on two routes names two different requests.
		key := r.Method + ":" + r.URL.Path + ":" + header
		logger := zerolog.Ctx(r.Context())

		raw, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "validation_error", "failed to read request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(raw))
		sum := sha256.Sum256(raw)
		bodyHash := hex.EncodeToString(sum[:])

		exists, cached, err := m.store.CheckAndSet(r.Context(), key, nil, m.ttl)
		if err != nil {
			logger.Error().Err(err).Msg("idempotency store unavailable")
			writeJSONError(w, http.StatusInternalServerError, "internal_error", "idempotency check failed")
			return
		}

		if exists {
			if cached == nil || string(cached) == pendingMarker {
				writeJSONError(w, http.StatusConflict, "conflict", "a request with this Idempotency-Key is still in progress")
				return
			}
			m.replay(w, r, cached, bodyHash)
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}

		completed := false
		defer func() {
			if !completed {
				m.release(r.Context(), logger, key)
			}
		}()

		next.ServeHTTP(recorder, r)

		if recorder.statusCode < 200 || recorder.statusCode >= 300 {
			return
		}

		payload, err := json.Marshal(storedResponse{
			Status:      recorder.statusCode,
			ContentType: recorder.Header().Get("Content-Type"),
			Body:        recorder.body.Bytes(),
			BodyHash:    bodyHash,
		})
		if err != nil {
			logger.Error().Err(err).Msg("failed to encode response for idempotent replay")
			return
		}

		if err := m.store.Update(context.WithoutCancel(r.Context()), key, payload, m.ttl); err != nil {
			logger.Warn().Err(err).Msg("failed to store response for idempotent replay")
			return
		}
		completed = true
	})
}

func (m *IdempotencyMiddleware) replay(w http.ResponseWriter, r *http.Request, cached []byte, bodyHash string) {
	var stored storedResponse
	if err := json.Unmarshal(cached, &stored); err != nil || stored.Status == 0 {
		zerolog.Ctx(r.Context()).Warn().Msg("undecodable idempotent response, replaying raw body")
		stored = storedResponse{Status: http.StatusOK, ContentType: "application/json", Body: cached}
	}

	if stored.BodyHash != "" && stored.BodyHash != bodyHash {
		writeJSONError(w, http.StatusUnprocessableEntity, "idempotency_key_mismatch",
			"Idempotency-Key was already used with a different request body")
		return
	}

	if m.metrics != nil {
		m.metrics.IdempotentReplays.Inc()
	}

	if stored.ContentType != "" {
		w.Header().Set("Content-Type", stored.ContentType)
	}
	w.Header().Set(IdempotencyReplayHeader, "true")
	w.WriteHeader(stored.Status)
	w.Write(stored.Body)
}

func (m *IdempotencyMiddleware) release(ctx context.Context, logger *zerolog.Logger, key string) {
	if err := m.store.Release(context.WithoutCancel(ctx), key); err != nil {
		logger.Warn().Err(err).Msg("failed to release idempotency key")
	}
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
