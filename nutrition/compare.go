package nutrition

import (
	"fmt"
	"strings"

	"nutrition-engine/models"
)

// Nutrient names one field of a NutritionProfile.
type Nutrient int

const (
	Calories Nutrient = iota + 1
	Protein
	Carbs
	Fat
	Fiber
	Sugar
	Sodium
	SaturatedFat
	Cholesterol
	VitaminA
	VitaminC
	Calcium
	Iron
	Potassium
)

var nutrientNames = map[Nutrient]string{
	Calories:     "calories",
	Protein:      "protein",
	Carbs:        "carbs",
	Fat:          "fat",
	Fiber:        "fiber",
	Sugar:        "sugar",
	Sodium:       "sodium",
	SaturatedFat: "saturated_fat",
	Cholesterol:  "cholesterol",
	VitaminA:     "vitamin_a",
	VitaminC:     "vitamin_c",
	Calcium:      "calcium",
	Iron:         "iron",
	Potassium:    "potassium",
}

func (n Nutrient) String() string {
	if s, ok := nutrientNames[n]; ok {
		return s
	}
	return "unknown"
}

func ParseNutrient(s string) (Nutrient, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for n, name := range nutrientNames {
		if name == s {
			return n, nil
		}
	}
	return 0, fmt.Errorf("unknown nutrient %q", s)
}

func (n Nutrient) MarshalText() ([]byte, error) { return []byte(n.String()), nil }

func (n *Nutrient) UnmarshalText(b []byte) error {
	v, err := ParseNutrient(string(b))
	if err != nil {
		return err
	}
	*n = v
	return nil
}

// Of reads the nutrient from a profile.
func (n Nutrient) Of(p models.NutritionProfile) float64 {
	switch n {
	case Calories:
		return p.Calories
	case Protein:
		return p.Protein
	case Carbs:
		return p.Carbs
	case Fat:
		return p.Fat
	case Fiber:
		return p.Fiber
	case Sugar:
		return p.Sugar
	case Sodium:
		return p.Sodium
	case SaturatedFat:
		return p.SaturatedFat
	case Cholesterol:
		return p.Cholesterol
	case VitaminA:
		return p.VitaminA
	case VitaminC:
		return p.VitaminC
	case Calcium:
		return p.Calcium
	case Iron:
		return p.Iron
	case Potassium:
		return p.Potassium
	default:
		return 0
	}
}

// direction is +1 when more is better, -1 when less is better, 0 when neither.
func (n Nutrient) direction() int {
	switch n {
	case Protein, Fiber, VitaminA, VitaminC, Calcium, Iron, Potassium:
		return 1
	case Calories, Fat, SaturatedFat, Sugar, Sodium, Cholesterol:
		return -1
	default:
		return 0
	}
}

// Choice names the better side of a comparison.
type Choice string

const (
	ChoiceNone  Choice = ""
	ChoiceA     Choice = "a"
	ChoiceB     Choice = "b"
	ChoiceEqual Choice = "equal"
)

type Comparison struct {
	Nutrient     Nutrient `json:"nutrient"`
	A            float64  `json:"a"`
	B            float64  `json:"b"`
	Delta        float64  `json:"delta"`
	PercentDelta float64  `json:"percent_delta"`
	Better       Choice   `json:"better_choice,omitempty"`
}

// CompareNutrition reports b relative to a for each nutrient. PercentDelta is
// 0 when a is 0. Better is empty for nutrients with no preferred direction.
func CompareNutrition(a, b models.NutritionProfile, nutrients []Nutrient) []Comparison {
	out := make([]Comparison, 0, len(nutrients))
	for _, n := range nutrients {
		av, bv := n.Of(a), n.Of(b)
		c := Comparison{Nutrient: n, A: av, B: bv, Delta: round2(bv - av)}
		if av != 0 {
			c.PercentDelta = round2((bv - av) / av * 100)
		}
		switch dir := n.direction(); {
		case dir == 0:
		case av == bv:
			c.Better = ChoiceEqual
		case (bv > av) == (dir > 0):
			c.Better = ChoiceB
		default:
			c.Better = ChoiceA
		}
		out = append(out, c)
	}
	return out
}
