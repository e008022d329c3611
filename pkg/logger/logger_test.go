package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponent_AgregaCampo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "debug").Component("store")
	l.Warn().Str("key", "sc_users_v1").Msg("payload inválido")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "store", line["component"])
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "sc_users_v1", line["key"])
}

func TestNewWriter_RespetaNivel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "error")
	l.Info().Msg("no debe salir")
	assert.Zero(t, buf.Len())
}

func TestNop_NoFalla(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Error().Msg("nada") })
}
