package dish

import (
	"math/rand/v2"
	"strconv"
	"strings"
)

// Composition is a generated dish name together with the ingredient
// names that were substituted into its template.
type Composition struct {
	Name        string
	Ingredients []string
}

// GenerateName composes a fictional dish name from ingredient names,
// drawing every random choice from r.
func GenerateName(r *rand.Rand, names []string) (string, error) {
	c, err := Compose(r, names)
	if err != nil {
		return "", err
	}
	return c.Name, nil
}

// Compose picks 2-4 distinct ingredients, a template and, where the
// template calls for one, a dish type, then fills the template.
func Compose(r *rand.Rand, names []string) (Composition, error) {
	pool := distinct(names)
	if len(pool) < MinIngredients {
		return Composition{}, ErrInsufficientIngredients
	}

	k := min(MinIngredients+r.IntN(MaxIngredients-MinIngredients+1), len(pool))
	selected := sample(r, pool, k)
	template := Templates[r.IntN(len(Templates))]

	switch slotCount(template) {
	case 3:
		if len(selected) >= MinIngredients {
			return composition(fill(template, selected[0], selected[1], dishType(r)), selected[0], selected[1]), nil
		}
		return composition(fill(template, selected[0], selected[0], dishType(r)), selected[0]), nil
	case 2:
		if len(selected) >= MinIngredients {
			if r.Float64() < DishTypeProbability {
				return composition(fill(template, selected[0], dishType(r)), selected[0]), nil
			}
			return composition(fill(template, selected[0], selected[1]), selected[0], selected[1]), nil
		}
		return composition(fill(template, selected[0], dishType(r)), selected[0]), nil
	case 1:
		return composition(fill(template, selected[0]), selected[0]), nil
	default:
		return composition(template), nil
	}
}

// Generator produces dish names with an independent random stream per
// call, so it is safe for concurrent use.
type Generator struct {
	newRand func() *rand.Rand
}

// NewGenerator creates a generator seeded from the runtime source
func NewGenerator() *Generator {
	return &Generator{
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
}

// NewSeededGenerator creates a generator that replays the same random
// stream on every call. Intended for tests and reproducible tooling.
func NewSeededGenerator(seed uint64) *Generator {
	return &Generator{
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		},
	}
}

// Name generates a single dish name
func (g *Generator) Name(names []string) (string, error) {
	return GenerateName(g.newRand(), names)
}

// Compose generates a single dish name and reports the ingredients used
func (g *Generator) Compose(names []string) (Composition, error) {
	return Compose(g.newRand(), names)
}

// Names generates up to count distinct dish names
func (g *Generator) Names(names []string, count int) ([]string, error) {
	return GenerateNames(g.newRand(), names, count)
}

func composition(name string, used ...string) Composition {
	return Composition{Name: name, Ingredients: used}
}

func dishType(r *rand.Rand) string {
	return DishTypes[r.IntN(len(DishTypes))]
}

// sample returns k elements of pool chosen uniformly without replacement
func sample(r *rand.Rand, pool []string, k int) []string {
	perm := r.Perm(len(pool))
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = pool[perm[i]]
	}
	return out
}

// distinct drops repeated names, keeping first occurrences in order
func distinct(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// fill substitutes values into {0}, {1}, ... in a single pass, so an
// ingredient name that itself looks like a placeholder is left alone.
func fill(template string, values ...string) string {
	pairs := make([]string, 0, len(values)*2)
	for i, v := range values {
		pairs = append(pairs, placeholder(i), v)
	}
	if len(pairs) == 0 {
		return template
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func placeholder(i int) string {
	return "{" + strconv.Itoa(i) + "}"
}

func containsPlaceholder(template string, i int) bool {
	return strings.Contains(template, placeholder(i))
}
