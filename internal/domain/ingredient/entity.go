// Package ingredient defines the ingredients a user registers as raw
// material for dish name generation.
package ingredient

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MaxNameLength is the longest ingredient name, in characters
const MaxNameLength = 100

// Ingredient is a named raw material owned by a single user
type Ingredient struct {
	id        uuid.UUID
	name      string
	ownerID   uuid.UUID
	createdAt time.Time
	updatedAt time.Time
}

// NewIngredient creates an ingredient owned by ownerID
func NewIngredient(name string, ownerID uuid.UUID) (*Ingredient, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Ingredient{
		id:        uuid.New(),
		name:      name,
		ownerID:   ownerID,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds an ingredient from stored state
func Reconstruct(id uuid.UUID, name string, ownerID uuid.UUID, createdAt, updatedAt time.Time) *Ingredient {
	return &Ingredient{
		id:        id,
		name:      name,
		ownerID:   ownerID,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the ingredient's unique identifier
func (i *Ingredient) ID() uuid.UUID {
	return i.id
}

// Name returns the ingredient name as entered
func (i *Ingredient) Name() string {
	return i.name
}

// NameKey returns the key the per-owner uniqueness constraint is enforced on
func (i *Ingredient) NameKey() string {
	return NameKey(i.name)
}

// OwnerID returns the owning user's ID
func (i *Ingredient) OwnerID() uuid.UUID {
	return i.ownerID
}

// CreatedAt returns when the ingredient was registered
func (i *Ingredient) CreatedAt() time.Time {
	return i.createdAt
}

// UpdatedAt returns when the ingredient was last renamed
func (i *Ingredient) UpdatedAt() time.Time {
	return i.updatedAt
}

// IsOwnedBy reports whether userID owns the ingredient
func (i *Ingredient) IsOwnedBy(userID uuid.UUID) bool {
	return i.ownerID == userID
}

// Rename changes the ingredient name
func (i *Ingredient) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}
	i.name = name
	i.updatedAt = time.Now()
	return nil
}

// NameKey folds a name for case-insensitive comparison. NFKC first, so
// full-width and half-width forms of the same text collide.
func NameKey(name string) string {
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(name)))
}

// Names returns the names of the given ingredients, in order
func Names(items []*Ingredient) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.name
	}
	return names
}

func validateName(name string) error {
	if name == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}
