package consent

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Choice names a banner button.
type Choice string

const (
	ChoiceAccept    Choice = "accept"
	ChoiceEssential Choice = "essential"
)

// ParseChoice maps a form value to a Choice.
func ParseChoice(s string) (Choice, bool) {
	switch Choice(s) {
	case ChoiceAccept, ChoiceEssential:
		return Choice(s), true
	}
	return "", false
}

// Record is one stored banner decision. No raw IP is kept.
type Record struct {
	ID          string
	VisitorHash string
	Choice      Choice
	Analytics   bool
	Marketing   bool
	Path        string
	Device      string
	DecidedAt   time.Time
}

// Summary aggregates ledger records over a period.
type Summary struct {
	Period    string     `json:"period"`
	Total     int        `json:"total"`
	Accepted  int        `json:"accepted"`
	Essential int        `json:"essential"`
	Daily     []DayCount `json:"daily"`
}

// AcceptRate returns the share of accept-all decisions, 0 when empty.
func (s Summary) AcceptRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Total)
}

// DayCount is the number of decisions on one day.
type DayCount struct {
	Date      string `json:"date"`
	Accepted  int    `json:"accepted"`
	Essential int    `json:"essential"`
}

// Ledger is the optional audit trail of banner decisions, kept in SQLite.
// decided_at is stored as unix milliseconds, matching the cookie value.
type Ledger struct {
	db   *sql.DB
	salt string
}

// NewLedger opens (or creates) the ledger database at dbPath.
func NewLedger(dbPath string) (*Ledger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open consent ledger: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := l.initSalt(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) ensureSchema() error {
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS consent_records (
			id TEXT PRIMARY KEY,
			visitor_hash TEXT NOT NULL,
			choice TEXT NOT NULL,
			analytics INTEGER NOT NULL,
			marketing INTEGER NOT NULL,
			path TEXT NOT NULL,
			device TEXT NOT NULL,
			decided_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_consent_records_decided_at ON consent_records(decided_at);
		CREATE INDEX IF NOT EXISTS idx_consent_records_choice ON consent_records(choice);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// currentSchemaVersion is the latest schema version. Increment when adding migrations.
const currentSchemaVersion = 1

func (l *Ledger) migrate() error {
	verStr, err := l.GetSetting("schema_version")
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	version := 0
	if verStr != "" {
		version, err = strconv.Atoi(verStr)
		if err != nil {
			return fmt.Errorf("parse schema version %q: %w", verStr, err)
		}
	}
	if version < currentSchemaVersion {
		version = currentSchemaVersion
	}
	return l.SetSetting("schema_version", strconv.Itoa(version))
}

// initSalt loads or generates the per-installation salt for visitor hashes.
func (l *Ledger) initSalt() error {
	s, err := l.GetSetting("hash_salt")
	if err != nil {
		return fmt.Errorf("read hash salt: %w", err)
	}
	if s == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("generate salt: %w", err)
		}
		s = hex.EncodeToString(b)
		if err := l.SetSetting("hash_salt", s); err != nil {
			return fmt.Errorf("store hash salt: %w", err)
		}
	}
	l.salt = s
	return nil
}

// HashVisitor creates a salted visitor hash from IP and User-Agent.
func (l *Ledger) HashVisitor(ip, userAgent string) string {
	h := sha256.New()
	h.Write([]byte(l.salt + ip + "|" + userAgent))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// GetSetting retrieves a setting value by key. Returns empty string if not found.
func (l *Ledger) GetSetting(key string) (string, error) {
	var val string
	err := l.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return val, err
}

// SetSetting stores a setting value by key (upsert).
func (l *Ledger) SetSetting(key, value string) error {
	_, err := l.db.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// Record stores a decision made on path by the visitor at ip with userAgent.
// Crawlers are skipped.
func (l *Ledger) Record(ctx context.Context, d Decision, choice Choice, ip, userAgent, path string) error {
	if IsBot(userAgent) {
		return nil
	}
	rec := Record{
		ID:          uuid.NewString(),
		VisitorHash: l.HashVisitor(ip, userAgent),
		Choice:      choice,
		Analytics:   d.AnalyticsAllowed,
		Marketing:   d.MarketingAllowed,
		Path:        path,
		Device:      DeviceClass(userAgent),
		DecidedAt:   d.DecidedAt.UTC(),
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO consent_records (id, visitor_hash, choice, analytics, marketing, path, device, decided_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.VisitorHash, string(rec.Choice), rec.Analytics, rec.Marketing, rec.Path, rec.Device, rec.DecidedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert consent record: %w", err)
	}
	return nil
}

// Recent returns the newest records first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, visitor_hash, choice, analytics, marketing, path, device, decided_at
		FROM consent_records ORDER BY decided_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent consent records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var choice string
		var decidedAt int64
		if err := rows.Scan(&r.ID, &r.VisitorHash, &choice, &r.Analytics, &r.Marketing, &r.Path, &r.Device, &decidedAt); err != nil {
			return nil, err
		}
		r.Choice = Choice(choice)
		r.DecidedAt = time.UnixMilli(decidedAt).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Summary aggregates the records decided in [from, to).
func (l *Ledger) Summary(ctx context.Context, from, to time.Time) (*Summary, error) {
	s := &Summary{
		Period: from.Format("2006-01-02") + " to " + to.Format("2006-01-02"),
		Daily:  []DayCount{},
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m-%d', decided_at / 1000, 'unixepoch') AS day,
			SUM(CASE WHEN choice = 'accept' THEN 1 ELSE 0 END),
			SUM(CASE WHEN choice = 'essential' THEN 1 ELSE 0 END)
		FROM consent_records
		WHERE decided_at >= ? AND decided_at < ?
		GROUP BY day ORDER BY day`, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("consent summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Date, &dc.Accepted, &dc.Essential); err != nil {
			return nil, err
		}
		s.Accepted += dc.Accepted
		s.Essential += dc.Essential
		s.Daily = append(s.Daily, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.Total = s.Accepted + s.Essential
	return s, nil
}

// PurgeBefore deletes records decided before cutoff and reports how many.
func (l *Ledger) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := l.db.ExecContext(ctx, `DELETE FROM consent_records WHERE decided_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purge consent records: %w", err)
	}
	return res.RowsAffected()
}

// StartCleanupScheduler periodically removes records older than the
// retention period. Returns a stop function.
func (l *Ledger) StartCleanupScheduler(retentionDays int, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
				n, err := l.PurgeBefore(context.Background(), cutoff)
				if err != nil {
					slog.Error("consent ledger cleanup failed", "error", err)
					continue
				}
				if n > 0 {
					slog.Info("consent ledger cleanup", "removed", n)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
