package dataset

import (
	"bytes"
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/chatstack/pkg/cache"
	"github.com/matzehuels/chatstack/pkg/errors"
	"github.com/matzehuels/chatstack/pkg/httputil"
	"github.com/matzehuels/chatstack/pkg/numeric"
)

const sampleDoc = `{
  "dates": ["2014-01-12", "2014-01-26", "2014-02-09"],
  "names": ["alice", "bob"],
  "counts": [[2, 4, 6], [1, 1, 1]]
}`

func sample() *Dataset {
	return &Dataset{
		Dates:  []string{"2014-01-12", "2014-01-26", "2014-02-09"},
		Names:  []string{"alice", "bob"},
		Counts: numeric.Matrix{{2, 4, 6}, {1, 1, 1}},
	}
}

func TestRead(t *testing.T) {
	d, err := Read(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if d.NumSeries() != 2 || d.NumDates() != 3 {
		t.Fatalf("shape = %dx%d, want 2x3", d.NumSeries(), d.NumDates())
	}
	if d.Counts[0][2] != 6 || d.Names[1] != "bob" {
		t.Errorf("unexpected content: %+v", d)
	}
	if d.Words != nil {
		t.Error("Words should be nil when absent")
	}
}

func TestReadMalformed(t *testing.T) {
	_, err := Read(strings.NewReader(`{"dates": [`))
	if !errors.Is(err, errors.ErrCodeInvalidDataset) {
		t.Errorf("err = %v, want INVALID_DATASET", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Dataset)
	}{
		{"no names", func(d *Dataset) { d.Names = nil; d.Counts = nil }},
		{"no dates", func(d *Dataset) { d.Dates = nil }},
		{"row count mismatch", func(d *Dataset) { d.Counts = d.Counts[:1] }},
		{"short row", func(d *Dataset) { d.Counts[1] = []float64{1, 1} }},
		{"negative", func(d *Dataset) { d.Counts[0][1] = -1 }},
		{"nan", func(d *Dataset) { d.Counts[0][0] = math.NaN() }},
		{"inf", func(d *Dataset) { d.Counts[1][2] = math.Inf(1) }},
		{"empty name", func(d *Dataset) { d.Names[0] = "" }},
		{"words rows", func(d *Dataset) { d.Words = make([][]map[string]float64, 1) }},
		{"words cols", func(d *Dataset) {
			d.Words = [][]map[string]float64{make([]map[string]float64, 3), make([]map[string]float64, 2)}
		}},
	}

	if err := sample().Validate(); err != nil {
		t.Fatalf("sample should be valid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := sample()
			tt.mutate(d)
			err := d.Validate()
			if !errors.Is(err, errors.ErrCodeInvalidDataset) {
				t.Errorf("Validate() = %v, want INVALID_DATASET", err)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	d := sample()
	d.Words = [][]map[string]float64{
		{{"hi": 2}, nil, {}},
		{{}, {"yo": 1}, {}},
	}
	c := d.Clone()
	c.Counts[0][0] = 99
	c.Names[0] = "carol"
	c.Words[0][0]["hi"] = 10

	if d.Counts[0][0] != 2 || d.Names[0] != "alice" || d.Words[0][0]["hi"] != 2 {
		t.Error("Clone shares storage with the original")
	}
	if c.Words[0][1] != nil {
		t.Error("nil word cells should stay nil")
	}
}

func TestTotalsAndIndex(t *testing.T) {
	d := sample()
	totals := d.Totals()
	if totals[0] != 12 || totals[1] != 3 {
		t.Errorf("Totals = %v, want [12 3]", totals)
	}
	if d.Index("bob") != 1 || d.Index("zed") != -1 {
		t.Error("Index lookup wrong")
	}
}

func TestTopWords(t *testing.T) {
	d := sample()
	if d.TopWords(0, 0, 3) != nil {
		t.Error("TopWords without words should be nil")
	}

	d.Words = [][]map[string]float64{
		{{"lunch": 3, "ok": 5, "beer": 3, "hi": 1}, {}, {}},
		{{}, {}, {}},
	}
	got := d.TopWords(0, 0, 3)
	want := []WordCount{{"ok", 5}, {"beer", 3}, {"lunch", 3}}
	if len(got) != len(want) {
		t.Fatalf("TopWords = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TopWords[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if d.TopWords(5, 0, 3) != nil || d.TopWords(0, 9, 3) != nil || d.TopWords(0, 0, 0) != nil {
		t.Error("out of range TopWords should be nil")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	d := sample()
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Counts[0][1] != 4 || got.Dates[2] != "2014-02-09" {
		t.Errorf("round trip lost data: %+v", got)
	}
}

func TestHashStable(t *testing.T) {
	h1, err := sample().Hash()
	if err != nil {
		t.Fatal(err)
	}
	h2, _ := sample().Hash()
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	d := sample()
	d.Counts[1][1] = 2
	h3, _ := d.Hash()
	if h1 == h3 {
		t.Error("different counts should hash differently")
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chats.json")
	if err := os.WriteFile(path, []byte(sampleDoc), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(path); err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	_, err := ReadFile(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chats.json":
			w.Write([]byte(sampleDoc))
		case "/broken.json":
			w.Write([]byte(`{"dates": ["a"], "names": ["x"], "counts": [[1, 2]]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	ctx := context.Background()

	t.Run("url", func(t *testing.T) {
		d, err := Fetch(ctx, srv.URL+"/chats.json", FetchOptions{})
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if d.NumSeries() != 2 {
			t.Errorf("series = %d, want 2", d.NumSeries())
		}
	})

	t.Run("http failure", func(t *testing.T) {
		_, err := Fetch(ctx, srv.URL+"/nope.json", FetchOptions{})
		if !errors.Is(err, errors.ErrCodeFetchFailed) {
			t.Errorf("err = %v, want FETCH_FAILED", err)
		}
	})

	t.Run("invalid document", func(t *testing.T) {
		_, err := Fetch(ctx, srv.URL+"/broken.json", FetchOptions{})
		if !errors.Is(err, errors.ErrCodeInvalidDataset) {
			t.Errorf("err = %v, want INVALID_DATASET", err)
		}
	})

	t.Run("path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "d.json")
		if err := sample().WriteFile(path); err != nil {
			t.Fatal(err)
		}
		if _, err := Fetch(ctx, path, FetchOptions{}); err != nil {
			t.Errorf("Fetch(path): %v", err)
		}
	})
}

func TestFetchDoesNotCacheInvalidDocument(t *testing.T) {
	var fixed atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fixed.Load() {
			w.Write([]byte(sampleDoc))
			return
		}
		w.Write([]byte(`{"dates": ["a"], "names": ["x"], "counts": [[1, 2]]}`))
	}))
	defer srv.Close()

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts := FetchOptions{Fetcher: &httputil.Fetcher{Cache: c, TTL: time.Hour}}
	ctx := context.Background()

	if _, err := Fetch(ctx, srv.URL, opts); !errors.Is(err, errors.ErrCodeInvalidDataset) {
		t.Fatalf("err = %v, want INVALID_DATASET", err)
	}

	fixed.Store(true)
	d, err := Fetch(ctx, srv.URL, opts)
	if err != nil {
		t.Fatalf("Fetch after upstream fix: %v", err)
	}
	if d.NumSeries() != 2 {
		t.Errorf("series = %d, want 2", d.NumSeries())
	}
	if opts.Fetcher.Accept != nil {
		t.Error("Fetch should not modify the caller's fetcher")
	}
}
