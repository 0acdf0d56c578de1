package fullscreen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwitch_EnterExit(t *testing.T) {
	var entered, exited int
	s := NewSwitch(WithHooks(
		func() error { entered++; return nil },
		func() error { exited++; return nil },
	))

	var changes []bool
	unsubscribe := s.Subscribe(func(active bool) { changes = append(changes, active) })

	require.NoError(t, s.Enter())
	require.NoError(t, s.Enter())
	assert.True(t, s.Active())

	require.NoError(t, s.Exit())
	require.NoError(t, s.Exit())
	assert.False(t, s.Active())

	assert.Equal(t, 1, entered)
	assert.Equal(t, 1, exited)
	assert.Equal(t, []bool{true, false}, changes)

	unsubscribe()
	require.NoError(t, s.Enter())
	assert.Len(t, changes, 2)
}

func TestSwitch_HookError(t *testing.T) {
	hookErr := errors.New("screen busy")
	s := NewSwitch(WithHooks(func() error { return hookErr }, nil))

	var changes int
	s.Subscribe(func(bool) { changes++ })

	assert.ErrorIs(t, s.Enter(), hookErr)
	assert.False(t, s.Active())
	assert.Zero(t, changes)
}

func TestSwitch_SetFromOutside(t *testing.T) {
	s := NewSwitch()
	require.NoError(t, s.Enter())

	var changes []bool
	s.Subscribe(func(active bool) { changes = append(changes, active) })

	s.Set(false)
	s.Set(false)

	assert.False(t, s.Active())
	assert.Equal(t, []bool{false}, changes)
}
