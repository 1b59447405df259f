package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/fx"
)

func TestModuleGraphIsComplete(t *testing.T) {
	err := fx.ValidateApp(
		fx.NopLogger,
		fx.Supply(ConfigPath("")),
		Module,
	)

	assert.NoError(t, err)
}
