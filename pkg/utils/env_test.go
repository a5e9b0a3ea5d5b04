package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/votascan/votascan/pkg/utils"
)

func TestEnv(t *testing.T) {
	t.Setenv("VOTASCAN_TEST_ENV", "value")
	assert.Equal(t, "value", utils.Env("VOTASCAN_TEST_ENV", "def"))
	assert.Equal(t, "def", utils.Env("VOTASCAN_TEST_ENV_UNSET", "def"))
}

func TestEnvInt(t *testing.T) {
	t.Setenv("VOTASCAN_TEST_INT", "42")
	assert.Equal(t, 42, utils.EnvInt("VOTASCAN_TEST_INT", 7))

	t.Setenv("VOTASCAN_TEST_INT", "not a number")
	assert.Equal(t, 7, utils.EnvInt("VOTASCAN_TEST_INT", 7))

	t.Setenv("VOTASCAN_TEST_INT", "-3")
	assert.Equal(t, 7, utils.EnvInt("VOTASCAN_TEST_INT", 7))

	assert.Equal(t, 7, utils.EnvInt("VOTASCAN_TEST_INT_UNSET", 7))
}
