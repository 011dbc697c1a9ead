package game_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"laptudirm.com/x/referee/pkg/game"
	"laptudirm.com/x/referee/pkg/game/gametest"
)

func TestActIsNonDestructive(t *testing.T) {
	state := gametest.Countdown{Start: 5}.Init(make([]game.Agent, 2))
	before := state.(gametest.CountdownState)

	for _, action := range state.Actions() {
		next, err := state.Act(action)
		require.NoError(t, err)
		require.NotNil(t, next)
		require.False(t, next.Equal(state), "acting should reach a new state")
		require.Equal(t, before, state, "act must not modify its receiver")
	}

	t.Run("repeated acts are reproducible", func(t *testing.T) {
		a, err := state.Act(2)
		require.NoError(t, err)
		b, err := state.Act(2)
		require.NoError(t, err)
		require.True(t, a.Equal(b))
		require.Equal(t, a.Hash(), b.Hash())
	})
}

func TestActRejects(t *testing.T) {
	state := gametest.Countdown{Start: 1}.Init(make([]game.Agent, 2))

	t.Run("illegal action", func(t *testing.T) {
		next, err := state.Act(2)
		require.Nil(t, next)
		require.ErrorIs(t, err, game.ErrInvalidAction)
		require.Contains(t, err.Error(), "allowed actions: 1")
	})

	t.Run("foreign action type", func(t *testing.T) {
		next, err := state.Act("two")
		require.Nil(t, next)
		require.ErrorIs(t, err, game.ErrInvalidAction)
	})

	t.Run("terminal state", func(t *testing.T) {
		terminal, err := state.Act(1)
		require.NoError(t, err)
		require.True(t, terminal.IsTerminal())
		require.Empty(t, terminal.Actions())

		next, err := terminal.Act(1)
		require.Nil(t, next)
		require.ErrorIs(t, err, game.ErrTerminal)
		require.True(t, errors.Is(err, game.ErrInvalidAction))
	})
}

func TestReward(t *testing.T) {
	state := gametest.Countdown{Start: 2}.Init(make([]game.Agent, 2))

	_, err := state.Reward(0)
	require.ErrorIs(t, err, game.ErrInvalidQuery)

	terminal, err := state.Act(2)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		winner, err := terminal.Reward(0)
		require.NoError(t, err)
		require.Equal(t, 1.0, winner)

		loser, err := terminal.Reward(1)
		require.NoError(t, err)
		require.Equal(t, -1.0, loser)
	}
}

func TestHistory(t *testing.T) {
	history := game.NewHistory()
	off := gametest.Toggle{}.Init(make([]game.Agent, 1))
	on, err := off.Act(gametest.Flip)
	require.NoError(t, err)
	offAgain, err := on.Act(gametest.Flip)
	require.NoError(t, err)

	require.False(t, history.Add(off))
	require.False(t, history.Add(on))
	require.True(t, history.Add(offAgain))

	trajectory := game.Trajectory{off, on, offAgain}
	require.Equal(t, 0, trajectory.Index(offAgain))
	require.Equal(t, 1, trajectory.Index(on))
	require.True(t, trajectory.Last().Equal(off))
	require.Nil(t, game.Trajectory{}.Last())
}

func TestAgentName(t *testing.T) {
	require.Equal(t, "alice", game.AgentName(&gametest.Scripted{AgentName: "alice"}, 0))
	require.Equal(t, "player2", game.AgentName(&gametest.Scripted{}, 1))
	require.Equal(t, "player3", game.AgentName(gametest.Broken{}, 2))
}

func TestFormatActions(t *testing.T) {
	require.Equal(t, "1 2", game.FormatActions([]game.Action{1, 2}))
	require.Equal(t, "", game.FormatActions(nil))
	require.True(t, game.Contains([]game.Action{"a", "b"}, "b"))
	require.False(t, game.Contains([]game.Action{"a", "b"}, 1))
}
