package mealplan

import (
	"math/rand/v2"
	"sync"
	"time"

	"nutrition-engine/models"
)

// GenerationConfig holds every default the generator and selector use. It is
// resolved once per generator instead of at each call site.
type GenerationConfig struct {
	DefaultCalories      float64
	ProteinShare         float64
	CarbShare            float64
	FatShare             float64
	DefaultMealTypes     []models.MealType
	MaxRecipeReuseDays   int
	DeviationThreshold   float64
	MinRating            float64
	TopCandidates        int
	DefaultServings      float64
	MaxDurationDays      int
	MealPrepMinMinutes   int
	PrepWindowMinDays    int
	PrepWindowMaxDays    int
	PrepGroupMaxMinutes  int
	PrepGroupMaxCuisines int
	MaxAlternatives      int
}

func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		DefaultCalories:      2000,
		ProteinShare:         0.20,
		CarbShare:            0.50,
		FatShare:             0.30,
		DefaultMealTypes:     []models.MealType{models.MealBreakfast, models.MealLunch, models.MealDinner},
		MaxRecipeReuseDays:   3,
		DeviationThreshold:   0.15,
		MinRating:            3.0,
		TopCandidates:        5,
		DefaultServings:      1,
		MaxDurationDays:      90,
		MealPrepMinMinutes:   30,
		PrepWindowMinDays:    1,
		PrepWindowMaxDays:    2,
		PrepGroupMaxMinutes:  180,
		PrepGroupMaxCuisines: 2,
		MaxAlternatives:      20,
	}
}

// Rand is the random source used for top-N picks and prep dates.
type Rand interface {
	IntN(n int) int
}

// NewRand returns a PCG source. A zero seed seeds from the clock.
func NewRand(seed uint64) Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// lockedRand serializes a source shared by concurrent generations.
type lockedRand struct {
	mu  sync.Mutex
	src Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}

// seedStream hands out per-generation seeds. The same base seed yields the
// same sequence of seeds.
type seedStream struct {
	mu  sync.Mutex
	src *rand.Rand
}

func newSeedStream(seed uint64) *seedStream {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &seedStream{src: rand.New(rand.NewPCG(seed, ^seed))}
}

// next never returns 0, which NewRand would replace with the clock.
func (s *seedStream) next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64() | 1
}
