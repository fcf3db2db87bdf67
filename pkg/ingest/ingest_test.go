package ingest

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/chatstack/pkg/errors"
)

func day(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleMessages() []Message {
	return []Message{
		{From: "alice", To: "me", Date: day("2014-01-10T12:00:00Z"), Body: "Hello, world!"},
		{From: "me", To: "alice", Date: day("2014-01-11T08:30:00Z"), Body: "hi there friend"},
		{From: "bob", To: "me", Date: day("2014-02-01T21:00:00Z"), Body: "yo"},
		{From: "carol", To: "dave", Date: day("2014-01-15T10:00:00Z"), Body: "not ours"},
	}
}

func TestCountWords(t *testing.T) {
	got := CountWords("Hello, hello!! It's  a\tTEST.")
	want := WordCounter{"hello": 2, "its": 1, "a": 1, "test": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CountWords = %v, want %v", got, want)
	}
	if n := len(CountWords("  ...  ")); n != 0 {
		t.Errorf("punctuation only should count nothing, got %d words", n)
	}
}

func TestWordCounterArithmetic(t *testing.T) {
	wc := WordCounter{"a": 2, "b": 1}
	wc.Add(WordCounter{"b": 2, "c": 1})
	if !reflect.DeepEqual(wc, WordCounter{"a": 2, "b": 3, "c": 1}) {
		t.Fatalf("after Add: %v", wc)
	}
	if wc.Total() != 6 {
		t.Errorf("Total = %d, want 6", wc.Total())
	}

	if err := wc.Sub(WordCounter{"a": 2, "b": 1}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(wc, WordCounter{"b": 2, "c": 1}) {
		t.Errorf("after Sub: %v (zero entries must be dropped)", wc)
	}

	err := wc.Sub(WordCounter{"c": 5})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
	if wc["c"] != 1 {
		t.Error("failed Sub must not modify the counter")
	}
}

func TestWordCounterFilters(t *testing.T) {
	wc := WordCounter{"the": 9, "pizza": 3, "tonight": 1, "and": 4}

	got := wc.WithoutStopwords(Stopwords())
	if _, ok := got["the"]; ok {
		t.Error("stop word kept")
	}
	if got["pizza"] != 3 {
		t.Error("content word dropped")
	}
	if wc["the"] != 9 {
		t.Error("WithoutStopwords modified the receiver")
	}

	if got := wc.WithoutBelow(3); !reflect.DeepEqual(got, WordCounter{"the": 9, "and": 4}) {
		t.Errorf("WithoutBelow(3) = %v", got)
	}
}

func TestTopN(t *testing.T) {
	wc := WordCounter{"d": 1, "c": 5, "b": 5, "a": 2}
	got := wc.TopN(3)
	var words []string
	for _, w := range got {
		words = append(words, w.Word)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(words, want) {
		t.Errorf("TopN(3) = %v, want %v", words, want)
	}
	if len(wc.TopN(10)) != 4 {
		t.Error("TopN beyond size should return everything")
	}
}

func TestBoundsAndDigitize(t *testing.T) {
	bounds := Bounds([]time.Time{day("2014-01-10T12:00:00Z"), day("2014-02-01T21:00:00Z")}, 14)

	var labels []string
	for _, b := range bounds {
		labels = append(labels, ordinalDate(b).Format(time.DateOnly))
	}
	want := []string{"2013-12-27", "2014-01-10", "2014-01-24", "2014-02-07"}
	if !reflect.DeepEqual(labels, want) {
		t.Fatalf("bounds = %v, want %v", labels, want)
	}

	tests := []struct {
		date string
		want int
	}{
		{"2013-12-01T00:00:00Z", 0},
		{"2014-01-09T23:59:00Z", 1},
		{"2014-01-10T00:00:00Z", 2}, // boundary belongs to the next bin
		{"2014-02-01T00:00:00Z", 3},
		{"2015-01-01T00:00:00Z", 3},
	}
	for _, tt := range tests {
		if got := Digitize(ordinal(day(tt.date)), bounds); got != tt.want {
			t.Errorf("Digitize(%s) = %d, want %d", tt.date, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	ds, err := Summarize("me", sampleMessages(), Options{})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if want := []string{"alice", "bob"}; !reflect.DeepEqual(ds.Names, want) {
		t.Errorf("Names = %v, want %v", ds.Names, want)
	}
	if want := []string{"2013-12-27", "2014-01-10", "2014-01-24", "2014-02-07"}; !reflect.DeepEqual(ds.Dates, want) {
		t.Errorf("Dates = %v, want %v", ds.Dates, want)
	}
	if want := []float64{0, 0, 5, 0}; !reflect.DeepEqual(ds.Counts[0], want) {
		t.Errorf("alice = %v, want %v", ds.Counts[0], want)
	}
	if want := []float64{0, 0, 0, 1}; !reflect.DeepEqual(ds.Counts[1], want) {
		t.Errorf("bob = %v, want %v", ds.Counts[1], want)
	}
	if ds.Words != nil {
		t.Error("Words should be omitted by default")
	}
}

func TestSummarizeWords(t *testing.T) {
	ds, err := Summarize("me", sampleMessages(), Options{Words: true, Stopwords: true, TopWords: 2})
	if err != nil {
		t.Fatal(err)
	}
	got := ds.Words[0][2]
	if _, ok := got["there"]; ok {
		t.Error("stop word 'there' kept")
	}
	if len(got) != 2 {
		t.Errorf("kept %d words, want 2: %v", len(got), got)
	}
	// totals still count every word
	if ds.Counts[0][2] != 5 {
		t.Errorf("count = %v, want 5", ds.Counts[0][2])
	}
}

func TestSummarizeUsesWallClock(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	msgs := []Message{
		// 2014-01-09 17:00 UTC, but the tenth on the sender's clock
		{From: "alice", To: "me", Date: time.Date(2014, 1, 10, 2, 0, 0, 0, tokyo), Body: "early"},
	}
	ds, err := Summarize("me", msgs, Options{Interval: 1})
	if err != nil {
		t.Fatal(err)
	}
	if ds.Dates[0] != "2014-01-09" {
		t.Errorf("first bound = %s, want 2014-01-09", ds.Dates[0])
	}
	if ds.Counts[0][2] != 1 {
		t.Errorf("counts = %v, want the word in the bin ending 2014-01-11", ds.Counts[0])
	}
}

func TestSummarizeErrors(t *testing.T) {
	if _, err := Summarize("nobody", sampleMessages(), Options{}); !errors.Is(err, errors.ErrCodeInvalidDataset) {
		t.Errorf("err = %v, want INVALID_DATASET", err)
	}
	if _, err := Summarize("me", sampleMessages(), Options{Interval: -3}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestJSONLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONL(&buf, sampleMessages()); err != nil {
		t.Fatal(err)
	}
	buf.WriteString("\n\n")
	got, err := ReadJSONL(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 || got[2].From != "bob" || !got[0].Date.Equal(sampleMessages()[0].Date) {
		t.Errorf("round trip = %+v", got)
	}
}

func TestReadJSONLBadLine(t *testing.T) {
	_, err := ReadJSONL(strings.NewReader("{\"from\":\"a\"}\n{oops\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("err = %v, want line 2", err)
	}
}

func TestReadSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chats.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	stmts := []string{
		`CREATE TABLE messages (sender TEXT, recipient TEXT, sent_at, body TEXT)`,
		`INSERT INTO messages VALUES ('alice', 'me', '2014-01-10T12:00:00Z', 'Hello, world!')`,
		`INSERT INTO messages VALUES ('me', 'alice', '2014-01-11 08:30:00', 'hi there friend')`,
		`INSERT INTO messages VALUES ('bob', 'me', 1391288400, 'yo')`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}
	db.Close()

	msgs, err := ReadSQLite(context.Background(), path, SQLiteOptions{})
	if err != nil {
		t.Fatalf("ReadSQLite: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}

	ds, err := Summarize("me", msgs, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if ds.Counts[0][2] != 5 || ds.Counts[1][3] != 1 {
		t.Errorf("counts = %v", ds.Counts)
	}
}

func TestReadSQLiteRejectsIdentifiers(t *testing.T) {
	_, err := ReadSQLite(context.Background(), "x.db", SQLiteOptions{Table: "messages; DROP TABLE x"})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}
