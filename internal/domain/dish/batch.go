package dish

import "math/rand/v2"

// GenerateNames collects up to count distinct dish names. It gives up
// after count*AttemptsPerName calls and returns what it has, which may be
// fewer than count when the ingredient set leaves little variety.
func GenerateNames(r *rand.Rand, names []string, count int) ([]string, error) {
	if count < 1 {
		return nil, ErrInvalidBatchSize
	}
	if len(distinct(names)) < MinIngredients {
		return nil, ErrInsufficientIngredients
	}

	seen := make(map[string]struct{}, count)
	result := make([]string, 0, count)
	maxAttempts := count * AttemptsPerName

	for attempts := 0; len(result) < count && attempts < maxAttempts; attempts++ {
		name, err := GenerateName(r, names)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}

	return result, nil
}
