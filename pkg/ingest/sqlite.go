package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/chatstack/pkg/errors"
)

// SQLiteOptions names the table and columns holding messages.
type SQLiteOptions struct {
	Table string `toml:"table" yaml:"table"`
	From  string `toml:"from" yaml:"from"`
	To    string `toml:"to" yaml:"to"`
	Date  string `toml:"date" yaml:"date"`
	Body  string `toml:"body" yaml:"body"`
}

// DefaultSQLiteOptions reads table "messages" with columns
// sender, recipient, sent_at and body.
func DefaultSQLiteOptions() SQLiteOptions {
	return SQLiteOptions{
		Table: "messages",
		From:  "sender",
		To:    "recipient",
		Date:  "sent_at",
		Body:  "body",
	}
}

func (o *SQLiteOptions) setDefaults() {
	d := DefaultSQLiteOptions()
	if o.Table == "" {
		o.Table = d.Table
	}
	if o.From == "" {
		o.From = d.From
	}
	if o.To == "" {
		o.To = d.To
	}
	if o.Date == "" {
		o.Date = d.Date
	}
	if o.Body == "" {
		o.Body = d.Body
	}
}

func (o SQLiteOptions) query() (string, error) {
	for _, id := range []string{o.Table, o.From, o.To, o.Date, o.Body} {
		if !isIdentifier(id) {
			return "", errors.New(errors.ErrCodeInvalidConfig, "invalid SQL identifier %q", id)
		}
	}
	return fmt.Sprintf("SELECT %s, %s, %s, %s FROM %s ORDER BY %s",
		o.From, o.To, o.Date, o.Body, o.Table, o.Date), nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// ReadSQLite loads every message from the SQLite database at path.
// Dates may be stored as text (RFC 3339 or "2006-01-02 15:04:05"), as
// unix seconds, or as native timestamps.
func ReadSQLite(ctx context.Context, path string, opts SQLiteOptions) ([]Message, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	opts.setDefaults()
	query, err := opts.query()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open database %s", path)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "query %s", opts.Table)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var (
			from, to, body sql.NullString
			date           any
		)
		if err := rows.Scan(&from, &to, &date, &body); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "scan message")
		}
		t, err := parseDate(date)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, Message{From: from.String, To: to.String, Date: t, Body: body.String})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read messages")
	}
	return msgs, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case int64:
		return time.Unix(d, 0).UTC(), nil
	case float64:
		return time.Unix(int64(d), 0).UTC(), nil
	case []byte:
		return parseDateString(string(d))
	case string:
		return parseDateString(d)
	case nil:
		return time.Time{}, errors.New(errors.ErrCodeInvalidInput, "message without date")
	}
	return time.Time{}, errors.New(errors.ErrCodeInvalidInput, "unsupported date value %v (%T)", v, v)
}

func parseDateString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, errors.New(errors.ErrCodeInvalidInput, "unrecognized date %q", s)
}
