// Package dataset defines the chart's input document and its codec.
//
// A document has three fields:
//
//	{
//	  "dates":  ["2014-01-12", "2014-01-26", ...],        // D labels
//	  "names":  ["alice@example.com", "bob", ...],         // N labels
//	  "counts": [[12, 40, ...], [3, 0, ...], ...]          // N x D
//	}
//
// plus an optional "words" field (N x D maps of word frequencies) written by
// `chatstack ingest` for tooltip detail. A loaded [Dataset] is treated as
// immutable; the view layer works on copies made with [Dataset.Clone].
package dataset

import (
	"bytes"
	"io"
	"math"
	"os"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/matzehuels/chatstack/pkg/cache"
	"github.com/matzehuels/chatstack/pkg/errors"
	"github.com/matzehuels/chatstack/pkg/numeric"
)

// Dataset is the series × date matrix of raw message counts.
type Dataset struct {
	Dates  []string       `json:"dates"`
	Names  []string       `json:"names"`
	Counts numeric.Matrix `json:"counts"`

	// Words holds per-cell word frequencies; nil when the source had none.
	Words [][]map[string]float64 `json:"words,omitempty"`
}

// WordCount is one entry of [Dataset.TopWords].
type WordCount struct {
	Word  string  `json:"word"`
	Count float64 `json:"count"`
}

// NumSeries returns N.
func (d *Dataset) NumSeries() int { return len(d.Names) }

// NumDates returns D.
func (d *Dataset) NumDates() int { return len(d.Dates) }

// Validate checks the shape invariants: one count row per name, one column
// per date, every value finite and non-negative, every name valid.
func (d *Dataset) Validate() error {
	if d == nil {
		return errors.New(errors.ErrCodeInvalidDataset, "dataset is nil")
	}
	if len(d.Names) == 0 {
		return errors.New(errors.ErrCodeInvalidDataset, "dataset has no series")
	}
	if len(d.Dates) == 0 {
		return errors.New(errors.ErrCodeInvalidDataset, "dataset has no dates")
	}
	if len(d.Counts) != len(d.Names) {
		return errors.New(errors.ErrCodeInvalidDataset, "%d names but %d count rows", len(d.Names), len(d.Counts))
	}

	for i, name := range d.Names {
		if err := errors.ValidateSeriesName(name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDataset, err, "series %d", i)
		}
	}
	for i, row := range d.Counts {
		if len(row) != len(d.Dates) {
			return errors.New(errors.ErrCodeInvalidDataset, "series %q has %d counts, want %d", d.Names[i], len(row), len(d.Dates))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.New(errors.ErrCodeInvalidDataset, "series %q date %s: count is not finite", d.Names[i], d.Dates[j])
			}
			if v < 0 {
				return errors.New(errors.ErrCodeInvalidDataset, "series %q date %s: negative count %v", d.Names[i], d.Dates[j], v)
			}
		}
	}

	if d.Words != nil {
		if len(d.Words) != len(d.Names) {
			return errors.New(errors.ErrCodeInvalidDataset, "%d names but %d word rows", len(d.Names), len(d.Words))
		}
		for i, row := range d.Words {
			if len(row) != len(d.Dates) {
				return errors.New(errors.ErrCodeInvalidDataset, "series %q has %d word cells, want %d", d.Names[i], len(row), len(d.Dates))
			}
		}
	}
	return nil
}

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Dates:  append([]string(nil), d.Dates...),
		Names:  append([]string(nil), d.Names...),
		Counts: numeric.Clone(d.Counts),
	}
	if d.Words != nil {
		out.Words = make([][]map[string]float64, len(d.Words))
		for i, row := range d.Words {
			out.Words[i] = make([]map[string]float64, len(row))
			for j, cell := range row {
				if cell == nil {
					continue
				}
				m := make(map[string]float64, len(cell))
				for w, c := range cell {
					m[w] = c
				}
				out.Words[i][j] = m
			}
		}
	}
	return out
}

// Totals returns the sum of every series' raw counts.
func (d *Dataset) Totals() []float64 {
	return numeric.RowSums(d.Counts)
}

// Index returns the position of the series called name, or -1.
func (d *Dataset) Index(name string) int {
	for i, n := range d.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// TopWords returns the n most frequent words of series at date, most
// frequent first. Equal counts are ordered alphabetically. It returns nil when
// the dataset carries no words or the indices are out of range.
func (d *Dataset) TopWords(series, date, n int) []WordCount {
	if d.Words == nil || series < 0 || series >= len(d.Words) || date < 0 || date >= len(d.Words[series]) || n <= 0 {
		return nil
	}
	cell := d.Words[series][date]
	out := make([]WordCount, 0, len(cell))
	for w, c := range cell {
		out = append(out, WordCount{Word: w, Count: c})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Count != out[b].Count {
			return out[a].Count > out[b].Count
		}
		return out[a].Word < out[b].Word
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Hash returns a content hash used to key cached artifacts.
func (d *Dataset) Hash() (string, error) {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return "", err
	}
	return cache.Hash(buf.Bytes()), nil
}

// Read decodes and validates a document.
func Read(r io.Reader) (*Dataset, error) {
	var d Dataset
	dec := json.NewDecoder(r)
	if err := dec.Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode dataset")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ReadFile reads and validates the document at path.
func ReadFile(path string) (*Dataset, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeFetchFailed, err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}

// Write encodes d as a single JSON document.
func (d *Dataset) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	return enc.Encode(d)
}

// WriteFile writes d to path, replacing any existing file.
func (d *Dataset) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
