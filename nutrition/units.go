package nutrition

import (
	"sort"
	"strings"
)

// gramsPerUnit converts weight units directly.
var gramsPerUnit = map[string]float64{
	"g":         1,
	"gram":      1,
	"grams":     1,
	"kg":        1000,
	"kilogram":  1000,
	"kilograms": 1000,
	"mg":        0.001,
	"oz":        28.3495,
	"ounce":     28.3495,
	"ounces":    28.3495,
	"lb":        453.592,
	"lbs":       453.592,
	"pound":     453.592,
	"pounds":    453.592,
}

// mlPerUnit converts volume units to millilitres.
var mlPerUnit = map[string]float64{
	"ml":          1,
	"milliliter":  1,
	"milliliters": 1,
	"l":           1000,
	"liter":       1000,
	"liters":      1000,
	"cup":         240,
	"cups":        240,
	"tbsp":        15,
	"tablespoon":  15,
	"tablespoons": 15,
	"tsp":         5,
	"teaspoon":    5,
	"teaspoons":   5,
	"fl oz":       29.5735,
	"fl_oz":       29.5735,
	"pint":        473.176,
	"pints":       473.176,
	"quart":       946.353,
	"quarts":      946.353,
}

// countUnits are resolved through the serving-size table.
var countUnits = map[string]bool{
	"piece":    true,
	"pieces":   true,
	"pc":       true,
	"pcs":      true,
	"serving":  true,
	"servings": true,
	"whole":    true,
	"item":     true,
	"items":    true,
	"each":     true,
	"slice":    true,
	"slices":   true,
	"clove":    true,
	"cloves":   true,
	"unit":     true,
	"units":    true,
}

// waterDensity is used for volume units when no density entry matches.
const waterDensity = 1.0

// defaultServingGrams is used for count units when no serving entry matches.
const defaultServingGrams = 100.0

// densities in g/mL, matched by ingredient-name substring.
var densities = substringTable{
	"flour":         0.57,
	"whole wheat":   0.55,
	"sugar":         0.85,
	"brown sugar":   0.93,
	"powdered":      0.56,
	"butter":        0.96,
	"peanut butter": 1.08,
	"oil":           0.92,
	"milk":          1.03,
	"yogurt":        1.03,
	"cream":         1.01,
	"honey":         1.42,
	"maple syrup":   1.32,
	"rice":          0.85,
	"oats":          0.41,
	"cocoa":         0.42,
	"salt":          1.2,
	"water":         1.0,
	"broth":         1.0,
	"cheese":        0.45,
	"nuts":          0.6,
	"berries":       0.6,
}

// servingGrams is the weight of one piece or serving, matched by ingredient-name substring.
var servingGrams = substringTable{
	"egg":            50,
	"banana":         118,
	"apple":          182,
	"orange":         131,
	"lemon":          58,
	"lime":           67,
	"avocado":        150,
	"tomato":         123,
	"onion":          110,
	"garlic":         3,
	"carrot":         61,
	"potato":         173,
	"sweet potato":   130,
	"bell pepper":    119,
	"chicken breast": 174,
	"salmon fillet":  170,
	"bread":          30,
	"tortilla":       45,
	"bagel":          105,
}

// substringTable maps name fragments to values. Longer keys win, so
// "brown sugar" beats "sugar" and "peanut butter" beats "butter".
type substringTable map[string]float64

func (t substringTable) lookup(name string) (float64, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return 0, false
	}
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		if strings.Contains(name, k) {
			return t[k], true
		}
	}
	return 0, false
}

func normalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	u = strings.TrimSuffix(u, ".")
	return u
}
