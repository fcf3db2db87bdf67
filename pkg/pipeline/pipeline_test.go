package pipeline

import (
	"bytes"
	"context"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/chatstack/pkg/cache"
	"github.com/matzehuels/chatstack/pkg/dataset"
	"github.com/matzehuels/chatstack/pkg/errors"
	"github.com/matzehuels/chatstack/pkg/numeric"
)

func sample() *dataset.Dataset {
	return &dataset.Dataset{
		Dates:  []string{"2014-01-12", "2014-01-26", "2014-02-09", "2014-02-23"},
		Names:  []string{"alice", "bob", "carol"},
		Counts: numeric.Matrix{{2, 4, 6, 8}, {1, 1, 1, 1}, {0, 3, 0, 3}},
	}
}

// memCache is a map-backed cache that counts lookups.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	hits int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	data, ok := m.data[key]
	if ok {
		m.hits++
	}
	return data, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memCache) Close() error { return nil }

var _ cache.Cache = (*memCache)(nil)

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Sigma != DefaultSigma {
		t.Errorf("Sigma = %v, want %v", opts.Sigma, DefaultSigma)
	}
	if len(opts.Transforms) != 1 || opts.Transforms[0] != "blur" {
		t.Errorf("Transforms = %v, want [blur]", opts.Transforms)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != "svg" {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight || opts.Scale != DefaultScale {
		t.Errorf("size = %vx%v@%v", opts.Width, opts.Height, opts.Scale)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"bad sigma", Options{Sigma: 0.1}, errors.ErrCodeInvalidSigma},
		{"unknown transform", Options{Transforms: []string{"sharpen"}}, errors.ErrCodeInvalidConfig},
		{"bad format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"negative width", Options{Width: -1}, errors.ErrCodeInvalidInput},
		{"raw ignores sigma", Options{Raw: true, Sigma: 0.1}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := DefaultOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	opts.Width = 123
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Width != 123 {
		t.Errorf("second call changed Width to %v", opts.Width)
	}
}

func TestArtifactKeyOptsDistinguishHidden(t *testing.T) {
	opts := DefaultOptions()
	opts.SetRenderDefaults()
	keyer := cache.NewDefaultKeyer()

	a := keyer.ArtifactKey("h", opts.ArtifactKeyOpts("svg", nil))
	b := keyer.ArtifactKey("h", opts.ArtifactKeyOpts("svg", []int{1}))
	c := keyer.ArtifactKey("h", opts.ArtifactKeyOpts("png", nil))
	if a == b || a == c {
		t.Errorf("keys collide: %s %s %s", a, b, c)
	}
}

func TestExecute(t *testing.T) {
	opts := DefaultOptions()
	opts.Formats = []string{"svg", "json"}

	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), sample(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.Series != 3 || res.Stats.Dates != 4 || res.Stats.Visible != 3 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if !bytes.Contains(res.Artifacts["svg"], []byte("<svg")) {
		t.Error("svg artifact missing <svg")
	}
	if !bytes.Contains(res.Artifacts["json"], []byte(`"bands"`)) {
		t.Error("json artifact missing bands")
	}
	if res.DatasetHash == "" {
		t.Error("DatasetHash empty")
	}
	// alice has the largest smoothed total and sits at the bottom
	if res.Bands[0].Name != "alice" {
		t.Errorf("bottom band = %s, want alice", res.Bands[0].Name)
	}
}

func TestExecuteHidden(t *testing.T) {
	opts := DefaultOptions()
	opts.Hidden = []string{"bob"}

	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), sample(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.Visible != 2 {
		t.Errorf("Visible = %d, want 2", res.Stats.Visible)
	}
	if res.State.IsShown(1) {
		t.Error("bob should be hidden")
	}

	opts.Hidden = []string{"mallory"}
	_, err = NewRunner(nil, nil, nil).Execute(context.Background(), sample(), opts)
	if !errors.Is(err, errors.ErrCodeInvalidSeries) {
		t.Errorf("err = %v, want INVALID_SERIES", err)
	}
}

func TestExecuteUsesArtifactCache(t *testing.T) {
	mc := newMemCache()
	r := NewRunner(mc, nil, nil)
	ctx := context.Background()

	first, err := r.Execute(ctx, sample(), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run should miss")
	}

	second, err := r.Execute(ctx, sample(), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit")
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached artifact differs")
	}

	refresh := DefaultOptions()
	refresh.Refresh = true
	third, err := r.Execute(ctx, sample(), refresh)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestExecuteCachesPNGPerScale(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	ctx := context.Background()

	widths := make(map[float64]int)
	for _, scale := range []float64{1, 3} {
		opts := DefaultOptions()
		opts.Formats = []string{"png"}
		opts.Scale = scale

		res, err := r.Execute(ctx, sample(), opts)
		if err != nil {
			t.Fatalf("Execute(scale=%v): %v", scale, err)
		}
		if res.CacheInfo.RenderHit {
			t.Errorf("scale=%v should miss the cache", scale)
		}
		cfg, err := png.DecodeConfig(bytes.NewReader(res.Artifacts["png"]))
		if err != nil {
			t.Fatalf("decode png: %v", err)
		}
		widths[scale] = cfg.Width
	}
	if widths[3] != 3*widths[1] {
		t.Errorf("png widths = %v, want scale 3 three times scale 1", widths)
	}
}

func TestExecuteRaw(t *testing.T) {
	opts := DefaultOptions()
	opts.Raw = true
	opts.Normalize = false

	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), sample(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if steps := res.Model.Steps(); len(steps) != 0 {
		t.Errorf("Steps = %v, want none", steps)
	}
	// unsmoothed, unnormalized: top of the stack at the last date is 8+1+3
	top := res.Bands[len(res.Bands)-1].Points[3].Top()
	if top != 12 {
		t.Errorf("top = %v, want 12", top)
	}
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), sample(), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.Formats = []string{"bmp"}
	if _, err := Render(context.Background(), res.Chart(""), opts); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}
