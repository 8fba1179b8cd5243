package federation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestModelColorUsesGoldenAngle(t *testing.T) {
	require.Equal(t, "hsl(0, 70%, 50%)", ModelColor(0))
	require.Equal(t, "hsl(137.5, 70%, 50%)", ModelColor(1))
	require.Equal(t, "hsl(275, 70%, 50%)", ModelColor(2))
	require.Equal(t, "hsl(52.5, 70%, 50%)", ModelColor(3))
}

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	a := r.Append(model("arch.bim"))
	b := r.Append(model("mep.bim"))
	require.NotEqual(t, a, b)

	sel, ok := r.Selected()
	require.True(t, ok)
	require.Equal(t, b, sel.ID)

	require.NoError(t, r.Select(a))
	require.NoError(t, r.SetVisible(a, false))
	m, _ := r.Get(a)
	require.False(t, m.Visible)

	require.NoError(t, r.Remove(a))
	_, ok = r.Selected()
	require.False(t, ok)
	require.ErrorIs(t, r.Remove(a), ErrModelNotFound)
	require.ErrorIs(t, r.Select(uuid.New()), ErrModelNotFound)

	// colours follow the load sequence, not the current count
	c := r.Append(model("struct.bim"))
	m, _ = r.Get(c)
	require.Equal(t, ModelColor(2), m.UIColor)
	require.Len(t, r.Models(), 2)
}
