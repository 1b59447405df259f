// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"context"
	"strings"
	"testing"

	"github.com/alchemorsel/dishgen/internal/domain/dish"
	"github.com/alchemorsel/dishgen/internal/domain/ingredient"
	"github.com/alchemorsel/dishgen/internal/domain/user"
	"github.com/alchemorsel/dishgen/internal/ports/outbound"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the password of every factory user
const DefaultPassword = "password123"

// Fixtures creates persisted users, ingredients and dishes with a seeded
// faker so that runs are reproducible
type Fixtures struct {
	t           *testing.T
	faker       *gofakeit.Faker
	users       outbound.UserRepository
	ingredients outbound.IngredientRepository
	catalog     outbound.DishCatalog
}

// NewFixtures creates a fixture factory over the given repositories
func NewFixtures(
	t *testing.T,
	seed int64,
	users outbound.UserRepository,
	ingredients outbound.IngredientRepository,
	catalog outbound.DishCatalog,
) *Fixtures {
	return &Fixtures{
		t:           t,
		faker:       gofakeit.New(seed),
		users:       users,
		ingredients: ingredients,
		catalog:     catalog,
	}
}

// Username returns a random valid username
func (f *Fixtures) Username() string {
	name := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, strings.ToLower(f.faker.Username()))
	return name + "_" + f.faker.DigitN(6)
}

// User creates and stores a user
func (f *Fixtures) User() *user.User {
	u, err := user.NewUser(f.Username(), DefaultPassword, bcrypt.MinCost)
	require.NoError(f.t, err)
	require.NoError(f.t, f.users.Create(context.Background(), u))
	return u
}

// Ingredients creates and stores n distinct ingredients for owner
func (f *Fixtures) Ingredients(owner *user.User, n int) []*ingredient.Ingredient {
	seen := make(map[string]bool, n)
	items := make([]*ingredient.Ingredient, 0, n)

	for len(items) < n {
		name := f.faker.Vegetable()
		if f.faker.Bool() {
			name = f.faker.Fruit()
		}
		key := ingredient.NameKey(name)
		if seen[key] {
			name = name + f.faker.DigitN(3)
			key = ingredient.NameKey(name)
			if seen[key] {
				continue
			}
		}
		seen[key] = true

		item, err := ingredient.NewIngredient(name, owner.ID())
		require.NoError(f.t, err)
		require.NoError(f.t, f.ingredients.Create(context.Background(), item))
		items = append(items, item)
	}
	return items
}

// Dish creates and stores a dish for owner made from items
func (f *Fixtures) Dish(owner *user.User, items []*ingredient.Ingredient) *dish.Dish {
	refs := make([]dish.IngredientRef, len(items))
	for i, it := range items {
		refs[i] = dish.IngredientRef{ID: it.ID(), Name: it.Name()}
	}

	d, err := dish.NewDish(f.faker.Dessert(), owner.ID(), refs)
	require.NoError(f.t, err)
	require.NoError(f.t, f.catalog.CreateDish(context.Background(), d))
	return d
}
