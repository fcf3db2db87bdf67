package preprocess

import (
	"testing"

	"github.com/matzehuels/chatstack/pkg/errors"
	"github.com/matzehuels/chatstack/pkg/numeric"
	"github.com/matzehuels/chatstack/pkg/smooth"
)

type scaleBy float64

func (s scaleBy) Name() string { return "scale" }
func (s scaleBy) Apply(m numeric.Matrix) (numeric.Matrix, error) {
	out := numeric.Clone(m)
	for _, row := range out {
		for j := range row {
			row[j] *= float64(s)
		}
	}
	return out, nil
}

type addOne struct{}

func (addOne) Name() string { return "add" }
func (addOne) Apply(m numeric.Matrix) (numeric.Matrix, error) {
	out := numeric.Clone(m)
	for _, row := range out {
		for j := range row {
			row[j]++
		}
	}
	return out, nil
}

func TestPipelineOrder(t *testing.T) {
	m := numeric.Matrix{{1, 2}}

	got, err := New(scaleBy(10), addOne{}).Run(m)
	if err != nil {
		t.Fatal(err)
	}
	if got[0][0] != 11 || got[0][1] != 21 {
		t.Errorf("scale then add = %v, want [[11 21]]", got)
	}

	got, err = New(addOne{}, scaleBy(10)).Run(m)
	if err != nil {
		t.Fatal(err)
	}
	if got[0][0] != 20 || got[0][1] != 30 {
		t.Errorf("add then scale = %v, want [[20 30]]", got)
	}

	if m[0][0] != 1 {
		t.Errorf("Run modified its input: %v", m)
	}
}

func TestIdentityPipelineCopies(t *testing.T) {
	m := numeric.Matrix{{3, 4}}
	got, err := New().Run(m)
	if err != nil {
		t.Fatal(err)
	}
	got[0][0] = 99
	if m[0][0] != 3 {
		t.Error("identity pipeline should return a copy")
	}
}

func TestDefaultMatchesBlur(t *testing.T) {
	m := numeric.Matrix{{0, 5, 10, 5, 0, 0}}
	got, err := Default(1).Run(m)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := smooth.Blur(m, 1)
	for j := range want[0] {
		if got[0][j] != want[0][j] {
			t.Errorf("[0][%d] = %v, want %v", j, got[0][j], want[0][j])
		}
	}
}

func TestGaussianZeroSigmaUsesDefault(t *testing.T) {
	m := numeric.Matrix{{1, 2, 3}}
	got, err := Gaussian{}.Apply(m)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := smooth.Blur(m, smooth.DefaultSigma)
	for j := range want[0] {
		if got[0][j] != want[0][j] {
			t.Errorf("[0][%d] = %v, want %v", j, got[0][j], want[0][j])
		}
	}
}

func TestFromNames(t *testing.T) {
	p, err := FromNames([]string{"blur", " BLUR "}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 2 {
		t.Errorf("Len = %d, want 2", p.Len())
	}
	if names := p.Names(); names[0] != NameBlur || names[1] != NameBlur {
		t.Errorf("Names = %v", names)
	}

	empty, err := FromNames(nil, 1)
	if err != nil || empty.Len() != 0 {
		t.Errorf("FromNames(nil) = %v, %v; want identity", empty, err)
	}

	if _, err := FromNames([]string{"sharpen"}, 1); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("unknown transform error = %v, want INVALID_CONFIG", err)
	}
}

func TestRunPropagatesTransformError(t *testing.T) {
	_, err := New(Gaussian{Sigma: -3}).Run(numeric.Matrix{{1}})
	if !errors.Is(err, errors.ErrCodeInvalidSigma) {
		t.Errorf("error = %v, want INVALID_SIGMA", err)
	}
}
