package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssigner_CyclesByPosition(t *testing.T) {
	sids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	a := NewAssigner(sids)

	assert.True(t, a.Enabled())
	assert.Equal(t, Palette[0], a.ColorFor("a"))
	assert.Equal(t, Palette[5], a.ColorFor("f"))
	assert.Equal(t, Palette[0], a.ColorFor("g"))
	assert.Equal(t, Palette[1], a.ColorFor("h"))
}

func TestAssigner_SingleSessionUsesDefault(t *testing.T) {
	a := NewAssigner([]string{"only"})

	assert.False(t, a.Enabled())
	assert.Equal(t, Default, a.ColorFor("only"))
}

func TestAssigner_UnknownSession(t *testing.T) {
	a := NewAssigner([]string{"a", "b"})
	assert.Equal(t, Default, a.ColorFor("zzz"))
}

func TestAssigner_PositionNotHash(t *testing.T) {
	first := NewAssigner([]string{"x", "y"})
	second := NewAssigner([]string{"y", "x"})

	assert.Equal(t, Palette[0], first.ColorFor("x"))
	assert.Equal(t, Palette[1], second.ColorFor("x"))
}

func TestAssigner_NilIsDisabled(t *testing.T) {
	var a *Assigner
	assert.False(t, a.Enabled())
	assert.Equal(t, Default, a.ColorFor("a"))
}
