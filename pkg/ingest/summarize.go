package ingest

import (
	"math"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chatstack/pkg/dataset"
	"github.com/matzehuels/chatstack/pkg/errors"
	"github.com/matzehuels/chatstack/pkg/numeric"
)

// DefaultInterval is the bin width in days.
const DefaultInterval = 14

// DefaultTopWords is how many words per bin are kept when words are requested.
const DefaultTopWords = 20

// binHour is the wall-clock hour the padded range starts and ends at.
const binHour = 5

// Options control [Summarize].
type Options struct {
	Interval  int  // bin width in days; 0 means DefaultInterval
	Words     bool // attach per-bin word counts
	TopWords  int  // words kept per bin; 0 means DefaultTopWords
	Stopwords bool // drop Stopwords() before keeping the top words
	Logger    *log.Logger
}

func (o *Options) setDefaults() {
	if o.Interval == 0 {
		o.Interval = DefaultInterval
	}
	if o.TopWords == 0 {
		o.TopWords = DefaultTopWords
	}
}

// Summarize builds a dataset from the conversations of owner.
//
// A message belongs to the other party when owner is its sender or its
// recipient; messages between two other accounts (group chats) are skipped.
// Series are the other parties in sorted order. Every message adds its word
// count to the bin its wall-clock day falls in.
func Summarize(owner string, msgs []Message, opts Options) (*dataset.Dataset, error) {
	opts.setDefaults()
	if opts.Interval < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "interval must be at least one day, got %d", opts.Interval)
	}

	byPerson := make(map[string][]Message)
	skipped := 0
	for _, m := range msgs {
		var other string
		switch owner {
		case m.To:
			other = m.From
		case m.From:
			other = m.To
		default:
			skipped++
			continue
		}
		if other == "" {
			skipped++
			continue
		}
		m.Date = wallClock(m.Date)
		byPerson[other] = append(byPerson[other], m)
	}
	if len(byPerson) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDataset, "no conversations involving %q", owner)
	}
	if opts.Logger != nil {
		opts.Logger.Debug("grouped messages", "contacts", len(byPerson), "skipped", skipped)
	}

	names := make([]string, 0, len(byPerson))
	var all []time.Time
	for name, ms := range byPerson {
		names = append(names, name)
		sort.SliceStable(ms, func(i, j int) bool { return ms[i].Date.Before(ms[j].Date) })
		for _, m := range ms {
			all = append(all, m.Date)
		}
	}
	sort.Strings(names)

	bounds := Bounds(all, opts.Interval)
	ds := &dataset.Dataset{
		Dates:  make([]string, len(bounds)),
		Names:  names,
		Counts: numeric.Zeros(len(names), len(bounds)),
	}
	for j, b := range bounds {
		ds.Dates[j] = ordinalDate(b).Format(time.DateOnly)
	}

	var stop map[string]bool
	if opts.Stopwords {
		stop = Stopwords()
	}
	if opts.Words {
		ds.Words = make([][]map[string]float64, len(names))
	}
	for i, name := range names {
		bins := make([]WordCounter, len(bounds))
		for _, m := range byPerson[name] {
			j := Digitize(ordinal(m.Date), bounds)
			if bins[j] == nil {
				bins[j] = make(WordCounter)
			}
			bins[j].Add(CountWords(m.Body))
		}
		if opts.Words {
			ds.Words[i] = make([]map[string]float64, len(bounds))
		}
		for j, wc := range bins {
			ds.Counts[i][j] = float64(wc.Total())
			if !opts.Words {
				continue
			}
			kept := wc
			if stop != nil {
				kept = wc.WithoutStopwords(stop)
			}
			top := make(map[string]float64)
			for _, w := range kept.TopN(opts.TopWords) {
				top[w.Word] = w.Count
			}
			ds.Words[i][j] = top
		}
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Bounds returns the bin boundaries, as day ordinals, for dates.
//
// The range starts interval days before the earliest date and ends interval
// days after the latest, both at 05:00. Boundaries run from the start day to
// the end day inclusive in steps of interval.
func Bounds(dates []time.Time, interval int) []int {
	if len(dates) == 0 || interval < 1 {
		return nil
	}
	lo, hi := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(lo) {
			lo = d
		}
		if d.After(hi) {
			hi = d
		}
	}
	start := padded(lo.AddDate(0, 0, -interval))
	end := padded(hi.AddDate(0, 0, interval))

	var out []int
	for d := ordinal(start); d <= ordinal(end); d += interval {
		out = append(out, d)
	}
	return out
}

// Digitize returns j such that bounds[j-1] <= d < bounds[j], with 0 for days
// before the first boundary. Days at or past the last boundary land in the
// last bin.
func Digitize(d int, bounds []int) int {
	j := sort.Search(len(bounds), func(k int) bool { return bounds[k] > d })
	if j >= len(bounds) {
		j = len(bounds) - 1
	}
	return j
}

func padded(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), binHour, 0, 0, 0, time.UTC)
}

// wallClock drops the zone, keeping the local reading of t.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// ordinal returns the day number of t's calendar date, counted from 1970-01-01.
func ordinal(t time.Time) int {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(math.Floor(float64(day.Unix()) / 86400))
}

func ordinalDate(d int) time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}
