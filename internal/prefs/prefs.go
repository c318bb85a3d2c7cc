package prefs

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Store holds the CLI's local state: the API session token, the last
// calendar an event was created on, and which calendars are selected
// for schedule queries.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS calendars (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	selected INTEGER NOT NULL DEFAULT 1,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const (
	keySessionToken = "session_token"
	keyLastCalendar = "last_calendar"
)

// Calendar is a locally tracked calendar and whether it participates
// in schedule queries.
type Calendar struct {
	ID       string
	Name     string
	Color    string
	Selected bool
}

func Open(dbPath string) (*Store, error) {
	// Enable WAL mode for better concurrency, busy timeout to wait instead of failing,
	// and foreign keys for referential integrity
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open preferences database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping preferences database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize preferences schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SessionToken returns the stored API session token, or "" when the
// user has not signed in on this machine.
func (s *Store) SessionToken() (string, error) {
	return s.getSetting(keySessionToken)
}

func (s *Store) SetSessionToken(token string) error {
	return s.setSetting(keySessionToken, token)
}

func (s *Store) ClearSessionToken() error {
	_, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, keySessionToken)
	if err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}
	return nil
}

// LastCalendar returns the calendar the most recent event was created
// on, defaulting to "primary" when none has been recorded yet.
func (s *Store) LastCalendar() (string, error) {
	id, err := s.getSetting(keyLastCalendar)
	if err != nil {
		return "primary", err
	}
	if id == "" {
		return "primary", nil
	}
	return id, nil
}

func (s *Store) SetLastCalendar(id string) error {
	return s.setSetting(keyLastCalendar, id)
}

// SyncCalendars reconciles the local calendar table with the list the
// server reported. Newly seen calendars start out selected, existing
// rows keep their selection but pick up name/color changes, and rows
// for calendars that no longer exist are removed.
func (s *Store) SyncCalendars(remote []Calendar) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin calendar sync: %w", err)
	}
	defer tx.Rollback()

	for _, cal := range remote {
		_, err := tx.Exec(`
			INSERT INTO calendars (id, name, color)
			VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, color = excluded.color, updated_at = CURRENT_TIMESTAMP
		`, cal.ID, cal.Name, cal.Color)
		if err != nil {
			return fmt.Errorf("failed to upsert calendar %s: %w", cal.ID, err)
		}
	}

	if len(remote) > 0 {
		placeholders := make([]string, len(remote))
		args := make([]interface{}, len(remote))
		for i, cal := range remote {
			placeholders[i] = "?"
			args[i] = cal.ID
		}
		query := fmt.Sprintf(`DELETE FROM calendars WHERE id NOT IN (%s)`, strings.Join(placeholders, ", "))
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to prune stale calendars: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit calendar sync: %w", err)
	}
	return nil
}

// AllCalendars returns every locally tracked calendar, selected or not.
func (s *Store) AllCalendars() ([]Calendar, error) {
	return s.queryCalendars(`SELECT id, name, color, selected FROM calendars ORDER BY name, id`)
}

// SelectedCalendars returns the calendars that participate in schedule
// queries. An empty result on a fresh store just means no sync has
// happened yet; callers treat that as "primary only".
func (s *Store) SelectedCalendars() ([]Calendar, error) {
	return s.queryCalendars(`SELECT id, name, color, selected FROM calendars WHERE selected = 1 ORDER BY name, id`)
}

// SetSelected toggles whether a calendar participates in schedule
// queries. Returns an error when the calendar is not tracked locally.
func (s *Store) SetSelected(id string, selected bool) error {
	result, err := s.db.Exec(`
		UPDATE calendars SET selected = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, selected, id)
	if err != nil {
		return fmt.Errorf("failed to update calendar selection: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check calendar selection update: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("unknown calendar: %s", id)
	}
	return nil
}

func (s *Store) queryCalendars(query string) ([]Calendar, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendars: %w", err)
	}
	defer rows.Close()

	var calendars []Calendar
	for rows.Next() {
		var cal Calendar
		if err := rows.Scan(&cal.ID, &cal.Name, &cal.Color, &cal.Selected); err != nil {
			return nil, fmt.Errorf("failed to scan calendar row: %w", err)
		}
		calendars = append(calendars, cal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate calendar rows: %w", err)
	}
	return calendars, nil
}

func (s *Store) getSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) setSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}
