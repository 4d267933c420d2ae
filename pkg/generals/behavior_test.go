package generals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoyalIsIdentity(t *testing.T) {
	b := Loyal()
	assert.Equal(t, Attack, b.Emit(Attack))
	assert.Equal(t, Retreat, b.Emit(Retreat))
}

func TestSeededLiarIsReproducible(t *testing.T) {
	a := NewSeededLiar(42)
	b := NewSeededLiar(42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Emit(Attack), b.Emit(Attack))
	}
}

func TestRandomLiarDrawsBothValues(t *testing.T) {
	l := NewSeededLiar(1)
	seen := map[Order]bool{}
	for i := 0; i < 200; i++ {
		o := l.Emit(Attack)
		assert.True(t, o.Valid())
		seen[o] = true
	}
	assert.True(t, seen[Attack])
	assert.True(t, seen[Retreat])
}

func TestScriptedLiarCycles(t *testing.T) {
	l := NewScriptedLiar(Attack, Retreat)
	assert.Equal(t, Attack, l.Emit(Retreat))
	assert.Equal(t, Retreat, l.Emit(Attack))
	assert.Equal(t, Attack, l.Emit(Retreat))

	empty := NewScriptedLiar()
	assert.Equal(t, Retreat, empty.Emit(Retreat))
}
