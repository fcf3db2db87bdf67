package ingest

import (
	_ "embed"
	"sort"
	"strings"
	"sync"

	"github.com/matzehuels/chatstack/pkg/dataset"
	"github.com/matzehuels/chatstack/pkg/errors"
)

//go:embed stopwords.txt
var stopwordsText string

var (
	stopwordsOnce sync.Once
	stopwords     map[string]bool
)

// Stopwords returns the built-in English stop word set. The map is shared;
// callers must not modify it.
func Stopwords() map[string]bool {
	stopwordsOnce.Do(func() {
		fields := strings.Fields(stopwordsText)
		stopwords = make(map[string]bool, len(fields))
		for _, w := range fields {
			stopwords[w] = true
		}
	})
	return stopwords
}

// WordCounter counts word occurrences. Entries are always positive.
type WordCounter map[string]int

// CountWords returns the unigram counts of text: lower cased, ASCII
// punctuation removed, split on white space.
func CountWords(text string) WordCounter {
	wc := make(WordCounter)
	for _, w := range strings.Fields(stripPunctuation(strings.ToLower(text))) {
		wc[w]++
	}
	return wc
}

// punctuation is the ASCII punctuation set removed before splitting.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, s)
}

// Add adds every count of other to wc.
func (wc WordCounter) Add(other WordCounter) {
	for w, n := range other {
		wc[w] += n
	}
}

// Sub subtracts other from wc and drops entries that reach zero. It fails
// without modifying wc if any count would go negative.
func (wc WordCounter) Sub(other WordCounter) error {
	for w, n := range other {
		if wc[w] < n {
			return errors.New(errors.ErrCodeInvalidInput, "count of %q would go negative", w)
		}
	}
	for w, n := range other {
		wc[w] -= n
		if wc[w] == 0 {
			delete(wc, w)
		}
	}
	return nil
}

// Total returns the sum of all counts.
func (wc WordCounter) Total() int {
	var n int
	for _, c := range wc {
		n += c
	}
	return n
}

// Clone returns a copy of wc.
func (wc WordCounter) Clone() WordCounter {
	out := make(WordCounter, len(wc))
	for w, n := range wc {
		out[w] = n
	}
	return out
}

// WithoutStopwords returns a copy of wc without the words in stop.
func (wc WordCounter) WithoutStopwords(stop map[string]bool) WordCounter {
	out := make(WordCounter, len(wc))
	for w, n := range wc {
		if !stop[w] {
			out[w] = n
		}
	}
	return out
}

// WithoutBelow returns a copy of wc keeping only counts above threshold.
func (wc WordCounter) WithoutBelow(threshold int) WordCounter {
	out := make(WordCounter, len(wc))
	for w, n := range wc {
		if n > threshold {
			out[w] = n
		}
	}
	return out
}

// TopN returns the n most common words sorted alphabetically. Ties at the
// cut-off go to the alphabetically first word.
func (wc WordCounter) TopN(n int) []dataset.WordCount {
	all := make([]dataset.WordCount, 0, len(wc))
	for w, c := range wc {
		all = append(all, dataset.WordCount{Word: w, Count: float64(c)})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Word < all[j].Word
	})
	if n >= 0 && n < len(all) {
		all = all[:n]
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Word < all[j].Word })
	return all
}
