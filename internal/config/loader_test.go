package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnvDefaultUsed(t *testing.T) {
	assert.Equal(t, "localhost", expandEnv("${POSTGRES_HOST_MISSING:localhost}"))
	assert.Equal(t, "", expandEnv("${REDIS_PASSWORD_MISSING:}"))
}

func TestExpandEnvValueWins(t *testing.T) {
	t.Setenv("NEUROEDGE_TEST_HOST", "db.internal")
	assert.Equal(t, "db.internal", expandEnv("${NEUROEDGE_TEST_HOST:localhost}"))
}

func TestExpandEnvNoDefaultKeepsPlaceholder(t *testing.T) {
	assert.Equal(t, "${UNDEFINED_VAR_XYZ}", expandEnv("${UNDEFINED_VAR_XYZ}"))
}

func TestExpandEnvMixedContent(t *testing.T) {
	t.Setenv("NEUROEDGE_TEST_PORT", "5433")
	in := "host: ${DB_HOST_MISSING:localhost}\nport: ${NEUROEDGE_TEST_PORT:5432}\n"
	assert.Equal(t, "host: localhost\nport: 5433\n", expandEnv(in))
}
