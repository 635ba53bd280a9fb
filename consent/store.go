// Package consent records the visitor's cookie decision and gates the
// third-party analytics and marketing tags on it.
package consent

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/sessions"
)

// Key is the single storage key holding the serialized decision.
const Key = "jww_cookie_consent"

// Decision is what the visitor chose on the banner.
type Decision struct {
	AnalyticsAllowed bool
	MarketingAllowed bool
	DecidedAt        time.Time
}

type wireDecision struct {
	Analytics bool  `json:"analytics"`
	Marketing bool  `json:"marketing"`
	Timestamp int64 `json:"timestamp"`
}

// MarshalJSON encodes the decision in the storage wire form.
func (d Decision) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireDecision{
		Analytics: d.AnalyticsAllowed,
		Marketing: d.MarketingAllowed,
		Timestamp: d.DecidedAt.UnixMilli(),
	})
}

// UnmarshalJSON decodes the storage wire form.
func (d *Decision) UnmarshalJSON(b []byte) error {
	var w wireDecision
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	d.AnalyticsAllowed = w.Analytics
	d.MarketingAllowed = w.Marketing
	d.DecidedAt = time.UnixMilli(w.Timestamp).UTC()
	return nil
}

// Storage is durable client-side key/value storage.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Store reads and writes the decision. It never reports failures: anything
// that goes wrong reads back as undecided on the next request.
type Store struct {
	storage Storage
	now     func() time.Time
}

// NewStore wraps storage.
func NewStore(storage Storage) *Store {
	return &Store{storage: storage, now: time.Now}
}

// Read returns the stored decision. ok is false when undecided.
func (s *Store) Read() (d Decision, ok bool) {
	raw, found, err := s.storage.Get(Key)
	if err != nil {
		slog.Debug("consent storage read failed", "error", err)
		return Decision{}, false
	}
	if !found || raw == "" {
		return Decision{}, false
	}
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		slog.Debug("consent value unreadable", "error", err)
		return Decision{}, false
	}
	return d, true
}

// Write stores a new decision stamped with the current time, replacing any
// prior value, and returns it.
func (s *Store) Write(analytics, marketing bool) Decision {
	d := Decision{
		AnalyticsAllowed: analytics,
		MarketingAllowed: marketing,
		DecidedAt:        s.now().UTC(),
	}
	b, err := json.Marshal(d)
	if err != nil {
		slog.Debug("consent encode failed", "error", err)
		return d
	}
	if err := s.storage.Set(Key, string(b)); err != nil {
		slog.Debug("consent storage write failed", "error", err)
	}
	return d
}

// HasAnalyticsConsent reports a stored decision allowing analytics.
func (s *Store) HasAnalyticsConsent() bool {
	d, ok := s.Read()
	return ok && d.AnalyticsAllowed
}

// HasMarketingConsent reports a stored decision allowing marketing.
func (s *Store) HasMarketingConsent() bool {
	d, ok := s.Read()
	return ok && d.MarketingAllowed
}

// MemoryStorage keeps values in process memory.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}

// SessionName is the cookie carrying the decision.
const SessionName = "jww_consent"

// SessionMaxAge keeps the decision for a year.
const SessionMaxAge = 60 * 60 * 24 * 365

// SessionStorage keeps values in a signed cookie session.
type SessionStorage struct {
	sess *sessions.Session
	r    *http.Request
	w    http.ResponseWriter
}

// NewSessionStorage binds a session to the request it was loaded from and
// the response Set will write the cookie to.
func NewSessionStorage(sess *sessions.Session, r *http.Request, w http.ResponseWriter) *SessionStorage {
	return &SessionStorage{sess: sess, r: r, w: w}
}

func (s *SessionStorage) Get(key string) (string, bool, error) {
	v, ok := s.sess.Values[key].(string)
	return v, ok, nil
}

func (s *SessionStorage) Set(key, value string) error {
	s.sess.Values[key] = value
	s.sess.Options.MaxAge = SessionMaxAge
	return s.sess.Save(s.r, s.w)
}
