package simulator

import (
	"errors"
	"math"
	"testing"
)

func TestVariateGeneratorExponentialMean(t *testing.T) {
	gen := NewVariateGenerator(12345)

	for _, rate := range []float64{0.5, 1.0, 4.0} {
		n := 200000
		sum := 0.0
		for i := 0; i < n; i++ {
			v, err := gen.Next(rate)
			if err != nil {
				t.Fatalf("rate %.1f: unexpected error %v", rate, err)
			}
			if v < 0 {
				t.Fatalf("rate %.1f: negative variate %f", rate, v)
			}
			sum += v
		}

		got := sum / float64(n)
		want := 1.0 / rate
		// Standard error of the mean is want/sqrt(n) ≈ 0.22% of want
		if math.Abs(got-want)/want > 0.02 {
			t.Errorf("rate %.1f: expected mean %.4f, got %.4f", rate, want, got)
		}
	}
}

func TestVariateGeneratorReproducible(t *testing.T) {
	a := NewVariateGenerator(42)
	b := NewVariateGenerator(42)

	for i := 0; i < 1000; i++ {
		va, _ := a.Next(0.8)
		vb, _ := b.Next(0.8)
		if va != vb {
			t.Fatalf("draw %d differs: %v != %v", i, va, vb)
		}
	}
}

func TestVariateGeneratorRandomSeedIsReported(t *testing.T) {
	gen := NewVariateGenerator(0)
	if gen.Seed() == 0 {
		t.Fatal("Expected a resolved non-zero seed")
	}

	replay := NewVariateGenerator(gen.Seed())
	for i := 0; i < 10; i++ {
		va, _ := gen.Next(1.0)
		vb, _ := replay.Next(1.0)
		if va != vb {
			t.Fatalf("draw %d differs after replaying seed %d", i, gen.Seed())
		}
	}
}

func TestVariateGeneratorRejectsBadRate(t *testing.T) {
	gen := NewVariateGenerator(1)

	for _, rate := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := gen.Next(rate)
		if !errors.Is(err, ErrInvalidRate) {
			t.Errorf("rate %v: expected ErrInvalidRate, got %v", rate, err)
		}
	}
}
