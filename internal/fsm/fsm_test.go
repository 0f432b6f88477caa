package fsm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type light string

func TestTableCheck(t *testing.T) {
	tbl := New("light", map[light][]light{
		"red":    {"green"},
		"green":  {"yellow"},
		"yellow": {"red", "off"},
	})

	assert.NoError(t, tbl.Check("red", "green"))
	assert.True(t, tbl.Allowed("yellow", "off"))

	err := tbl.Check("green", "red")
	require.Error(t, err)
	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "light", te.Entity)
	assert.Equal(t, "green", te.From)
	assert.Equal(t, "red", te.To)
}

func TestTerminal(t *testing.T) {
	tbl := New("light", map[light][]light{"red": {"off"}})
	assert.True(t, tbl.Terminal("off"))
	assert.False(t, tbl.Terminal("red"))
	assert.False(t, tbl.Allowed("off", "off"))
}
