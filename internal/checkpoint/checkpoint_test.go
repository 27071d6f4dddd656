package checkpoint

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/chalk-ml/chalk/internal/nn"
	"github.com/chalk-ml/chalk/internal/tensor"
)

func makeParams(t *testing.T, seed int64) []*nn.Parameter {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	return []*nn.Parameter{
		nn.NewParameter("fc.weight", tensor.Randn(tensor.Shape{3, 4}, 1.0, rng)),
		nn.NewParameter("fc.bias", tensor.Randn(tensor.Shape{4}, 1.0, rng)),
		nn.NewParameter("gru.kernel", tensor.Randn(tensor.Shape{4, 6}, 1.0, rng)),
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.chk")
	saved := makeParams(t, 1)

	meta := Meta{Model: "test-net", Epoch: 7, Loss: 0.123}
	if err := Save(path, saved, meta); err != nil {
		t.Fatal(err)
	}

	loaded := makeParams(t, 2)
	got, err := Load(path, loaded)
	if err != nil {
		t.Fatal(err)
	}

	if got.Model != "test-net" || got.Epoch != 7 || got.Loss != 0.123 {
		t.Errorf("meta = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be filled on save")
	}
	for i := range saved {
		if diff := loaded[i].Data.MaxAbsDiff(saved[i].Data.Clone()); diff != 0 {
			t.Errorf("parameter %s differs by %g after round trip", saved[i].Name(), diff)
		}
	}
}

func TestLoad_ParameterOrderDoesNotMatter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.chk")
	saved := makeParams(t, 3)
	if err := Save(path, saved, Meta{}); err != nil {
		t.Fatal(err)
	}

	shuffled := []*nn.Parameter{saved[2], saved[0], saved[1]}
	loaded := make([]*nn.Parameter, len(shuffled))
	for i, p := range shuffled {
		loaded[i] = nn.NewParameter(p.Name(), tensor.New(p.Data.Shape().Clone()))
	}
	if _, err := Load(path, loaded); err != nil {
		t.Fatal(err)
	}
	for i, p := range shuffled {
		if diff := loaded[i].Data.MaxAbsDiff(p.Data); diff != 0 {
			t.Errorf("parameter %s differs by %g", p.Name(), diff)
		}
	}
}

func TestLoad_RejectsCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.chk")
	params := makeParams(t, 4)
	if err := Save(path, params, Meta{}); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Flip one byte in the tensor data.
	raw[len(raw)-1] ^= 0xff
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path, params); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("corrupted file: got %v, want ErrChecksumMismatch", err)
	}
}

func TestLoad_RejectsWrongMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.chk")
	if err := os.WriteFile(path, []byte("not a checkpoint at all, just text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, nil); !errors.Is(err, ErrBadMagic) {
		t.Errorf("got %v, want ErrBadMagic", err)
	}
}

func TestLoad_RejectsShapeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.chk")
	if err := Save(path, makeParams(t, 5), Meta{}); err != nil {
		t.Fatal(err)
	}

	wrong := []*nn.Parameter{
		nn.NewParameter("fc.weight", tensor.New(tensor.Shape{5, 5})),
		nn.NewParameter("fc.bias", tensor.New(tensor.Shape{4})),
		nn.NewParameter("gru.kernel", tensor.New(tensor.Shape{4, 6})),
	}
	if _, err := Load(path, wrong); err == nil {
		t.Error("shape mismatch should fail")
	}
}

func TestLoad_RejectsMissingParameter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.chk")
	if err := Save(path, makeParams(t, 6), Meta{}); err != nil {
		t.Fatal(err)
	}

	renamed := []*nn.Parameter{
		nn.NewParameter("other.weight", tensor.New(tensor.Shape{3, 4})),
		nn.NewParameter("fc.bias", tensor.New(tensor.Shape{4})),
		nn.NewParameter("gru.kernel", tensor.New(tensor.Shape{4, 6})),
	}
	if _, err := Load(path, renamed); err == nil {
		t.Error("missing parameter name should fail")
	}
}
