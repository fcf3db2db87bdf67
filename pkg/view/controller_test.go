package view

import (
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/chatstack/pkg/dataset"
	"github.com/matzehuels/chatstack/pkg/errors"
	"github.com/matzehuels/chatstack/pkg/numeric"
	"github.com/matzehuels/chatstack/pkg/preprocess"
)

func sampleDataset() *dataset.Dataset {
	return &dataset.Dataset{
		Dates:  []string{"2014-01-12", "2014-01-26", "2014-02-09"},
		Names:  []string{"alice", "bob", "carol"},
		Counts: numeric.Matrix{{2, 4, 6}, {1, 1, 1}, {0, 3, 0}},
		Words: [][]map[string]float64{
			{{"hi": 2}, {"lunch": 3, "ok": 1}, {"ok": 6}},
			{{"yo": 1}, {"yo": 1}, {"yo": 1}},
			{{}, {"hey": 3}, {}},
		},
	}
}

func TestNewControllerRejectsInvalidDataset(t *testing.T) {
	ds := sampleDataset()
	ds.Counts[0] = ds.Counts[0][:2]
	_, err := NewController(ds, nil, DefaultOptions())
	if !errors.Is(err, errors.ErrCodeInvalidDataset) {
		t.Errorf("err = %v, want INVALID_DATASET", err)
	}
}

func TestControllerKeepsOriginal(t *testing.T) {
	ds := sampleDataset()
	c, err := NewController(ds, preprocess.Default(1), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	ds.Counts[0][0] = 1000
	if c.Model().Dataset().Counts[0][0] != 2 {
		t.Error("controller should hold its own copy of the dataset")
	}
	if steps := c.Model().Steps(); len(steps) != 1 || steps[0] != "blur" {
		t.Errorf("Steps = %v, want [blur]", steps)
	}
}

func TestOnSeriesToggle(t *testing.T) {
	c, err := NewController(sampleDataset(), nil, Options{})
	if err != nil {
		t.Fatal(err)
	}

	var redraws int
	c.OnRedraw(RedrawFunc(func(Bands, Scales) { redraws++ }))

	bands, err := c.OnSeriesToggle(0)
	if err != nil {
		t.Fatal(err)
	}
	if b := bands.BySeries(0); b == nil || !b.Hidden || b.HiddenSlot != 0 {
		t.Fatalf("series 0 after toggle = %+v", b)
	}
	for _, v := range c.Values(0) {
		if v != 0 {
			t.Fatalf("hidden values = %v, want zeros", c.Values(0))
		}
	}

	bands, _ = c.OnSeriesToggle(0)
	if b := bands.BySeries(0); b.Hidden {
		t.Fatal("second toggle should show the series again")
	}
	if redraws != 2 {
		t.Errorf("redraws = %d, want 2", redraws)
	}

	if _, err := c.OnSeriesToggle(7); !errors.Is(err, errors.ErrCodeInvalidSeries) {
		t.Errorf("out-of-range toggle err = %v, want INVALID_SERIES", err)
	}
}

func TestHideShowRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		opts := genOptions(t)
		c, err := NewController(sampleDataset(), preprocess.Default(1), opts)
		if err != nil {
			t.Fatal(err)
		}
		before := c.Current()

		idx := rapid.IntRange(0, 2).Draw(t, "series")
		if _, err := c.Hide(idx); err != nil {
			t.Fatal(err)
		}
		if _, err := c.Hide(idx); err != nil {
			t.Fatal(err)
		}
		shows := rapid.IntRange(1, 3).Draw(t, "shows")
		for range shows {
			if _, err := c.Show(idx); err != nil {
				t.Fatal(err)
			}
		}

		after := c.Current()
		for i := range before {
			for x := range before[i] {
				if before[i][x] != after[i][x] {
					t.Fatalf("[%d][%d] = %v after round trip, want %v", i, x, after[i][x], before[i][x])
				}
			}
		}
	})
}

func TestShowAllAndRestore(t *testing.T) {
	c, _ := NewController(sampleDataset(), nil, DefaultOptions())
	c.Hide(0)
	c.Hide(2)
	if c.State().Visible() != 1 {
		t.Fatalf("visible = %d, want 1", c.State().Visible())
	}
	c.ShowAll()
	if c.State().Visible() != 3 {
		t.Errorf("ShowAll left %d visible", c.State().Visible())
	}

	if err := c.Restore([]bool{true, false, true}); err != nil {
		t.Fatal(err)
	}
	if b := c.Bands().BySeries(1); !b.Hidden {
		t.Error("Restore should hide series 1")
	}
	if err := c.Restore([]bool{true}); err == nil {
		t.Error("Restore with the wrong length should fail")
	}
}

func TestOnHoverAt(t *testing.T) {
	c, _ := NewController(sampleDataset(), nil, DefaultOptions())
	c.Hide(1)

	infos := c.OnHoverAt(1)
	if len(infos) != 2 {
		t.Fatalf("hover infos = %d, want 2 visible", len(infos))
	}
	first := infos[0]
	if first.Name != "alice" || first.Date != "2014-01-26" {
		t.Errorf("first = %+v, want alice at 2014-01-26", first)
	}
	// alice 4 of 8 words at date 1
	if first.Label != "50.0%" {
		t.Errorf("label = %q, want 50.0%%", first.Label)
	}
	if first.Text() != "alice, 2014-01-26: 50.0%" {
		t.Errorf("text = %q", first.Text())
	}
	if len(first.Words) != 2 || first.Words[0].Word != "lunch" {
		t.Errorf("words = %v", first.Words)
	}
}

func TestOnHoverAtClamps(t *testing.T) {
	c, _ := NewController(sampleDataset(), nil, Options{})
	tests := []struct {
		x, want int
	}{
		{-4, 0},
		{0, 0},
		{2, 2},
		{99, 2},
	}
	for _, tt := range tests {
		infos := c.OnHoverAt(tt.x)
		if len(infos) == 0 || infos[0].X != tt.want {
			t.Errorf("OnHoverAt(%d) x = %v, want %d", tt.x, infos, tt.want)
		}
	}
	if !strings.HasSuffix(c.OnHoverAt(0)[0].Label, " words") {
		t.Errorf("raw label should be a word count, got %q", c.OnHoverAt(0)[0].Label)
	}
}

func TestFormatValue(t *testing.T) {
	if got := FormatValue(0.1234, true); got != "12.3%" {
		t.Errorf("FormatValue(share) = %q", got)
	}
	if got := FormatValue(42, false); got != "42.0 words" {
		t.Errorf("FormatValue(count) = %q", got)
	}
}

func TestModelSharedAcrossControllers(t *testing.T) {
	m, err := NewModel(sampleDataset(), nil)
	if err != nil {
		t.Fatal(err)
	}
	a := m.NewController(DefaultOptions())
	b := m.NewController(DefaultOptions())
	a.Hide(0)
	if b.Bands().BySeries(0).Hidden {
		t.Error("controllers sharing a model must not share state")
	}
}
