package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitIngredients(t *testing.T) {
	assert.Equal(t, []string{"卵", "ネギ", "チーズ"}, splitIngredients(" 卵, ネギ ,,チーズ,"))
	assert.Nil(t, splitIngredients(" , "))
}

func TestGenerate(t *testing.T) {
	t.Run("SeededRunIsRepeatable", func(t *testing.T) {
		var first, second bytes.Buffer
		args := []string{"-ingredients", "卵,ネギ,チーズ", "-count", "3", "-seed", "42"}

		require.Equal(t, exitCodeSuccess, runGenerate(args, &first))
		require.Equal(t, exitCodeSuccess, runGenerate(args, &second))

		lines := strings.Split(strings.TrimSpace(first.String()), "\n")
		assert.NotEmpty(t, lines)
		assert.LessOrEqual(t, len(lines), 3)
		assert.Equal(t, first.String(), second.String())
	})

	t.Run("NoIngredientsFails", func(t *testing.T) {
		var out bytes.Buffer
		assert.Equal(t, exitCodeFailure, runGenerate([]string{"-ingredients", ""}, &out))
		assert.Empty(t, out.String())
	})

	t.Run("InvalidCountIsUsageError", func(t *testing.T) {
		var out bytes.Buffer
		assert.Equal(t, exitCodeUsage, runGenerate([]string{"-ingredients", "卵", "-count", "0"}, &out))
	})
}
