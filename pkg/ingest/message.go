// Package ingest turns raw chat logs into a [dataset.Dataset].
//
// Messages come from a JSON lines file ([ReadJSONL]) or a SQLite database
// ([ReadSQLite]). [Summarize] keeps the one-to-one conversations of a single
// account, counts the words each contact exchanged per fixed-width date bin
// and produces the counts matrix the chart stacks.
package ingest

import (
	"bufio"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/matzehuels/chatstack/pkg/errors"
)

// Message is one chat message.
type Message struct {
	From string    `json:"from"`
	To   string    `json:"to"`
	Date time.Time `json:"date"`
	Body string    `json:"body"`
}

// ReadJSONL decodes one JSON message per line. Blank lines are skipped;
// a malformed line fails with its line number.
func ReadJSONL(r io.Reader) ([]Message, error) {
	var msgs []Message
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var m Message
		if err := json.Unmarshal([]byte(text), &m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d", line)
		}
		msgs = append(msgs, m)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read messages")
	}
	return msgs, nil
}

// ReadJSONLFile reads messages from a JSON lines file.
func ReadJSONLFile(path string) ([]Message, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSONL(f)
}

// WriteJSONL encodes msgs one per line.
func WriteJSONL(w io.Writer, msgs []Message) error {
	enc := json.NewEncoder(w)
	for _, m := range msgs {
		if err := enc.Encode(m); err != nil {
			return err
		}
	}
	return nil
}
