// Package testutils provides custom assertions for testing
package testutils

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/alchemorsel/dishgen/internal/domain/dish"
	"github.com/alchemorsel/dishgen/internal/domain/ingredient"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// DishAssertions provides dish-specific assertion methods
type DishAssertions struct {
	t *testing.T
}

// NewDishAssertions creates a new dish assertions helper
func NewDishAssertions(t *testing.T) *DishAssertions {
	return &DishAssertions{t: t}
}

// ValidDish asserts that a dish satisfies the catalog invariants
func (da *DishAssertions) ValidDish(d *dish.Dish, msgAndArgs ...interface{}) {
	require.NotNil(da.t, d, "Dish should not be nil")
	assert.NotEqual(da.t, uuid.Nil, d.ID(), "Dish ID should not be nil")
	assert.NotEmpty(da.t, d.Name(), msgAndArgs...)
	assert.LessOrEqual(da.t, len([]rune(d.Name())), dish.MaxNameLength, "Dish name too long")
	assert.NotEqual(da.t, uuid.Nil, d.OwnerID(), "Dish should have an owner")
	assert.GreaterOrEqual(da.t, d.LikesCount(), 0, "Likes count should not be negative")
	assert.False(da.t, d.CreatedAt().IsZero(), "Dish should have a creation time")
}

// LikesCount asserts the stored count of a dish
func (da *DishAssertions) LikesCount(d *dish.Dish, expected int, msgAndArgs ...interface{}) {
	require.NotNil(da.t, d, "Dish should not be nil")
	assert.Equal(da.t, expected, d.LikesCount(), msgAndArgs...)
}

// OwnedIngredients asserts that every ingredient of a dish belongs to
// its owner
func (da *DishAssertions) OwnedIngredients(d *dish.Dish, owned []*ingredient.Ingredient) {
	require.NotNil(da.t, d, "Dish should not be nil")

	ids := make(map[uuid.UUID]bool, len(owned))
	for _, ing := range owned {
		ids[ing.ID()] = ing.OwnerID() == d.OwnerID()
	}
	for _, id := range d.IngredientIDs() {
		assert.True(da.t, ids[id], "Ingredient %s is not owned by the dish owner", id)
	}
}

// Envelope is the decoded API response envelope
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		Details   string `json:"details"`
		RequestID string `json:"request_id"`
	} `json:"error"`
}

// HTTPAssertions provides HTTP-specific assertion methods
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// StatusCode asserts the HTTP status code
func (ha *HTTPAssertions) StatusCode(resp *http.Response, expectedCode int, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, resp, "Response should not be nil")
	assert.Equal(ha.t, expectedCode, resp.StatusCode, msgAndArgs...)
}

// Envelope decodes the response envelope, unmarshalling data into target
// when target is not nil
func (ha *HTTPAssertions) Envelope(resp *http.Response, target interface{}) Envelope {
	require.NotNil(ha.t, resp, "Response should not be nil")

	contentType := resp.Header.Get("Content-Type")
	assert.True(ha.t, strings.Contains(contentType, "application/json"),
		"Response should have JSON content type, got: %s", contentType)

	var env Envelope
	require.NoError(ha.t, json.NewDecoder(resp.Body).Decode(&env), "Response should be valid JSON")

	if target != nil {
		require.True(ha.t, env.Success, "Expected a successful envelope, got %+v", env.Error)
		require.NoError(ha.t, json.Unmarshal(env.Data, target))
	}
	return env
}

// ErrorCode asserts that the response is an error envelope with the code
func (ha *HTTPAssertions) ErrorCode(resp *http.Response, expectedCode string, msgAndArgs ...interface{}) {
	env := ha.Envelope(resp, nil)

	assert.False(ha.t, env.Success, "Response should not be successful")
	require.NotNil(ha.t, env.Error, "Response should contain an error")
	assert.Equal(ha.t, expectedCode, env.Error.Code, msgAndArgs...)
}

// SecurityHeaders asserts that security headers are present
func (ha *HTTPAssertions) SecurityHeaders(resp *http.Response) {
	require.NotNil(ha.t, resp, "Response should not be nil")

	for _, header := range []string{
		"X-Content-Type-Options",
		"X-Frame-Options",
		"Strict-Transport-Security",
		"Content-Security-Policy",
	} {
		assert.NotEmpty(ha.t, resp.Header.Get(header), "Security header %s should be present", header)
	}
}

// DatabaseAssertions provides database-specific assertion methods
type DatabaseAssertions struct {
	t  *testing.T
	db *TestDatabase
}

// NewDatabaseAssertions creates a new database assertions helper
func NewDatabaseAssertions(t *testing.T, db *TestDatabase) *DatabaseAssertions {
	return &DatabaseAssertions{t: t, db: db}
}

// RecordCount asserts the number of rows in a table
func (da *DatabaseAssertions) RecordCount(table string, expectedCount int, msgAndArgs ...interface{}) {
	count, err := da.db.CountRows(context.Background(), table)
	require.NoError(da.t, err)
	assert.Equal(da.t, expectedCount, count, msgAndArgs...)
}

// LikesCountMatchesRelation asserts that the stored like count of every
// dish equals the number of like rows referencing it
func (da *DatabaseAssertions) LikesCountMatchesRelation() {
	rows, err := da.db.PgxPool.Query(context.Background(), `
		SELECT d.id, d.likes_count, COUNT(l.user_id)
		FROM dishes d LEFT JOIN likes l ON l.dish_id = d.id
		GROUP BY d.id, d.likes_count`)
	require.NoError(da.t, err)
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var stored, actual int
		require.NoError(da.t, rows.Scan(&id, &stored, &actual))
		assert.Equal(da.t, actual, stored, "likes_count diverged for dish %s", id)
	}
	require.NoError(da.t, rows.Err())
}

// SecurityAssertions provides security-specific assertion methods
type SecurityAssertions struct {
	t *testing.T
}

// NewSecurityAssertions creates a new security assertions helper
func NewSecurityAssertions(t *testing.T) *SecurityAssertions {
	return &SecurityAssertions{t: t}
}

// PasswordHash asserts that hash is a bcrypt hash of password
func (sa *SecurityAssertions) PasswordHash(hash, password string) {
	assert.NotEqual(sa.t, password, hash, "Password should not be stored in plain text")

	_, err := bcrypt.Cost([]byte(hash))
	assert.NoError(sa.t, err, "Hash should be a bcrypt hash")
	assert.NoError(sa.t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)))
}
