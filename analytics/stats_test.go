package analytics

import (
	"errors"
	"math"
	"testing"

	"nutrition-engine/models"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestStatisticsEmptyInput(t *testing.T) {
	fns := map[string]func([]float64) (float64, error){
		"mean":     Mean,
		"median":   Median,
		"variance": Variance,
		"stddev":   StdDev,
		"mad":      MAD,
		"quartile": func(v []float64) (float64, error) { return Quartile(v, 0.25) },
	}
	for name, fn := range fns {
		if _, err := fn(nil); !errors.Is(err, models.ErrInsufficientData) {
			t.Fatalf("%s: expected ErrInsufficientData, got %v", name, err)
		}
	}
}

func TestMedian(t *testing.T) {
	cases := []struct {
		in   []float64
		want float64
	}{
		{[]float64{3, 1, 2}, 2},
		{[]float64{4, 1, 3, 2}, 2.5},
		{[]float64{7}, 7},
	}
	for _, c := range cases {
		got, err := Median(c.in)
		if err != nil || !approx(got, c.want) {
			t.Fatalf("Median(%v)=%v,%v want %v", c.in, got, err, c.want)
		}
	}
}

func TestPopulationStdDev(t *testing.T) {
	got, err := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if err != nil {
		t.Fatal(err)
	}
	if !approx(got, 2) {
		t.Fatalf("expected population std-dev 2, got %v", got)
	}
	single, _ := StdDev([]float64{42})
	if single != 0 {
		t.Fatalf("single value std-dev should be 0, got %v", single)
	}
}

func TestQuartileNearestRank(t *testing.T) {
	values := []float64{9, 1, 8, 2, 7, 3, 6, 4, 5, 10}
	q1, _ := Quartile(values, 0.25) // sorted[2]
	q3, _ := Quartile(values, 0.75) // sorted[7]
	if q1 != 3 || q3 != 8 {
		t.Fatalf("q1=%v q3=%v, want 3 and 8", q1, q3)
	}
	top, _ := Quartile(values, 1)
	if top != 10 {
		t.Fatalf("p=1 should clamp to the max, got %v", top)
	}
}

func TestMAD(t *testing.T) {
	got, err := MAD([]float64{1, 1, 2, 2, 4, 6, 9})
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Fatalf("MAD=%v, want 1", got)
	}
}

func TestSummarize(t *testing.T) {
	s, err := Summarize([]float64{1, 2, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	if s.Count != 4 || s.Mean != 2.5 || s.Median != 2.5 || s.Min != 1 || s.Max != 4 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.Q1 != 2 || s.Q3 != 4 || s.IQR != 2 {
		t.Fatalf("unexpected quartiles %+v", s)
	}
}
