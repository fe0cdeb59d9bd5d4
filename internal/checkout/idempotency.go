package checkout

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"LutStore/pkg/kit"
)

const (
	idempotencyHeader    = "Idempotency-Key"
	maxIdempotencyKeyLen = 255
)

// IdempotencyStore persists replayable responses. *redis.Client from
// pkg/redis satisfies it.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
}

type idempotencyRecord struct {
	Status      int    `json:"status"`
	Body        string `json:"body"`
	ContentType string `json:"content_type,omitempty"`
	RequestHash string `json:"request_hash"`
}

// Idempotent replays the stored response for a repeated Idempotency-Key.
// Requests without the header pass through. A key reused with a different
// body is rejected with 409. Responses with status >= 500 are not stored so
// the client can retry.
func Idempotent(store IdempotencyStore, ttl time.Duration, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if id == "" || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			if len(id) > maxIdempotencyKeyLen {
				kit.WriteError(w, r, http.StatusBadRequest, "Idempotency-Key too long", nil)
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, kit.MaxBodyBytes))
			if err != nil {
				kit.WriteError(w, r, http.StatusBadRequest, "read request", nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			hash := hashBody(body)
			key := store.IdempotencyKey(r.Method+" "+r.URL.Path, id)

			stored, found, err := store.Get(r.Context(), key)
			if err != nil {
				log.Error("idempotency lookup failed", zap.Error(err))
				kit.WriteError(w, r, http.StatusServiceUnavailable, "idempotency store unavailable", nil)
				return
			}
			if found {
				var rec idempotencyRecord
				if err := json.Unmarshal([]byte(stored), &rec); err != nil {
					log.Error("idempotency record corrupt", zap.Error(err), zap.String("key", key))
					kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
					return
				}
				if rec.RequestHash != hash {
					kit.WriteError(w, r, http.StatusConflict, "idempotency key reused with different request body", nil)
					return
				}
				writeStoredResponse(w, rec)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			status := capture.statusOrOK()
			if status >= http.StatusInternalServerError {
				return
			}

			payload, err := json.Marshal(idempotencyRecord{
				Status:      status,
				Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
				ContentType: capture.Header().Get("Content-Type"),
				RequestHash: hash,
			})
			if err != nil {
				log.Error("marshal idempotency record", zap.Error(err))
				return
			}
			if _, err := store.SetNX(r.Context(), key, string(payload), ttl); err != nil {
				log.Error("persist idempotency record", zap.Error(err))
			}
		})
	}
}

func writeStoredResponse(w http.ResponseWriter, rec idempotencyRecord) {
	if rec.ContentType != "" {
		w.Header().Set("Content-Type", rec.ContentType)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(rec.Status)
	if body, err := base64.StdEncoding.DecodeString(rec.Body); err == nil {
		_, _ = w.Write(body)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusOrOK() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

// MemIdempotencyStore keeps records in process memory. Expired records are
// dropped lazily on access.
type MemIdempotencyStore struct {
	mu  sync.Mutex
	m   map[string]memRecord
	now func() time.Time
}

type memRecord struct {
	value     string
	expiresAt time.Time
}

func NewMemIdempotencyStore() *MemIdempotencyStore {
	return &MemIdempotencyStore{m: map[string]memRecord{}, now: time.Now}
}

func (s *MemIdempotencyStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.m[key]
	if !ok {
		return "", false, nil
	}
	if s.expired(rec) {
		delete(s.m, key)
		return "", false, nil
	}
	return rec.value, true, nil
}

func (s *MemIdempotencyStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.m[key]; ok && !s.expired(rec) {
		return false, nil
	}

	var exp time.Time
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	str, _ := value.(string)
	s.m[key] = memRecord{value: str, expiresAt: exp}
	return true, nil
}

func (s *MemIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "idempotency:" + scope + ":" + id
}

func (s *MemIdempotencyStore) expired(rec memRecord) bool {
	return !rec.expiresAt.IsZero() && !s.now().Before(rec.expiresAt)
}
