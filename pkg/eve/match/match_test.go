package match

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"laptudirm.com/x/referee/pkg/game"
	"laptudirm.com/x/referee/pkg/game/gametest"
)

type recorder struct {
	mu     sync.Mutex
	states []game.State
}

func (r *recorder) Draw(state game.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

type pauser struct {
	calls int
	err   error
}

func (p *pauser) Continue(context.Context) error {
	p.calls++
	return p.err
}

func TestRunTerminal(t *testing.T) {
	alice := &gametest.Scripted{AgentName: "alice", Script: []game.Action{2, 2}}
	bob := &gametest.Scripted{AgentName: "bob", Script: []game.Action{1}}
	drawer := &recorder{}

	result, err := Run(context.Background(), &Config{
		Type:   gametest.Countdown{Start: 5},
		Agents: []game.Agent{alice, bob},
		Drawer: drawer,
	})
	require.NoError(t, err)

	require.Equal(t, Terminal, result.Outcome)
	require.Equal(t, 3, result.Turns())
	require.Len(t, result.Trajectory, 4)
	require.Equal(t, []game.Action{2, 1, 2}, result.Actions)
	require.Equal(t, []float64{1, -1}, result.Rewards)
	require.Equal(t, []int{0}, result.Winners())
	require.Equal(t, -1, result.Faulty)
	require.Equal(t, "alice wins after 3 turns", result.String())
	require.Len(t, drawer.states, 4, "every state should be drawn")

	t.Run("trajectory invariant", func(t *testing.T) {
		for i, action := range result.Actions {
			next, err := result.Trajectory[i].Act(action)
			require.NoError(t, err)
			require.True(t, next.Equal(result.Trajectory[i+1]))
		}
	})

	t.Run("every agent learns once", func(t *testing.T) {
		for player, agent := range []*gametest.Scripted{alice, bob} {
			learnt, players := agent.Learnt()
			require.Len(t, learnt, 1)
			require.Equal(t, []int{player}, players)
			require.Len(t, learnt[0], 4)
		}
	})
}

func TestRunCycleDetected(t *testing.T) {
	agent := &gametest.Scripted{}

	result, err := Run(context.Background(), &Config{
		Type:   gametest.Toggle{},
		Agents: []game.Agent{agent, agent},
	})
	require.NoError(t, err)

	require.Equal(t, CycleDetected, result.Outcome)
	require.Len(t, result.Trajectory, 3, "A, B, A")
	require.True(t, result.Trajectory[0].Equal(result.Trajectory[2]))
	require.Nil(t, result.Rewards)
	require.Nil(t, result.Winners())
	require.Equal(t, 2, agent.Decided())
}

func TestRunInvalidActions(t *testing.T) {
	t.Run("retries the same turn", func(t *testing.T) {
		agent := &gametest.Scripted{Script: []game.Action{7, "x", 2}}

		result, err := Run(context.Background(), &Config{
			Type:   gametest.Countdown{Start: 2},
			Agents: []game.Agent{agent},
		})
		require.NoError(t, err)

		require.Equal(t, Terminal, result.Outcome)
		require.Equal(t, 2, result.InvalidActions)
		require.Equal(t, []game.Action{2}, result.Actions)
		require.Equal(t, 3, agent.Decided())
	})

	t.Run("bounded retries abort the round", func(t *testing.T) {
		good := &gametest.Scripted{AgentName: "good"}

		result, err := Run(context.Background(), &Config{
			Type:              gametest.Countdown{Start: 4},
			Agents:            []game.Agent{good, gametest.Broken{}},
			MaxInvalidActions: 5,
		})
		require.NoError(t, err)

		require.Equal(t, Aborted, result.Outcome)
		require.Equal(t, 1, result.Faulty)
		require.ErrorIs(t, result.Err, ErrTooManyInvalid)
		require.Equal(t, 5, result.InvalidActions)
		require.Len(t, result.Trajectory, 2)

		learnt, _ := good.Learnt()
		require.Len(t, learnt, 1, "agents learn from aborted rounds too")
	})
}

func TestRunLearningFailures(t *testing.T) {
	failing := &gametest.Scripted{LearnErr: errors.New("no memory")}
	panicking := &gametest.Scripted{LearnPanic: true}
	healthy := &gametest.Scripted{}

	result, err := Run(context.Background(), &Config{
		Type:   gametest.Countdown{Start: 6},
		Agents: []game.Agent{failing, panicking, healthy},
	})
	require.NoError(t, err)
	require.Equal(t, Terminal, result.Outcome)

	for _, agent := range []*gametest.Scripted{failing, panicking, healthy} {
		learnt, _ := agent.Learnt()
		require.Len(t, learnt, 1)
	}
}

func TestRunPauseOnTurn(t *testing.T) {
	p := &pauser{}

	result, err := Run(context.Background(), &Config{
		Type:        gametest.Countdown{Start: 3},
		Agents:      []game.Agent{&gametest.Scripted{Script: []game.Action{1, 1, 1}}},
		PauseOnTurn: true,
		Pauser:      p,
	})
	require.NoError(t, err)
	require.Equal(t, Terminal, result.Outcome)
	require.Equal(t, 2, p.calls, "no pause after the final turn")

	t.Run("pauser failure aborts", func(t *testing.T) {
		p := &pauser{err: context.Canceled}
		result, err := Run(context.Background(), &Config{
			Type:        gametest.Countdown{Start: 3},
			Agents:      []game.Agent{&gametest.Scripted{Script: []game.Action{1, 1, 1}}},
			PauseOnTurn: true,
			Pauser:      p,
		})
		require.NoError(t, err)
		require.Equal(t, Aborted, result.Outcome)
		require.ErrorIs(t, result.Err, context.Canceled)
	})
}

func TestRunPacing(t *testing.T) {
	const turns = 5
	run := func(speed int) time.Duration {
		agent := &gametest.Scripted{}
		pacing := SpeedPacing(speed)
		pacing.Round = 0

		start := time.Now()
		result, err := Run(context.Background(), &Config{
			Type:   gametest.Countdown{Start: turns},
			Agents: []game.Agent{&gametest.Scripted{Script: []game.Action{1, 1, 1, 1, 1}}, agent},
			Pacing: pacing,
			Drawer: &recorder{},
		})
		require.NoError(t, err)
		require.Equal(t, turns, result.Turns())
		return time.Since(start)
	}

	fast := run(2)
	slow := run(0)

	require.Less(t, fast, 250*time.Millisecond)
	require.GreaterOrEqual(t, slow, (turns-1)*500*time.Millisecond)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Run(ctx, &Config{
		Type:   gametest.Countdown{Start: 3},
		Agents: []game.Agent{&gametest.Scripted{}},
	})
	require.NoError(t, err)
	require.Equal(t, Aborted, result.Outcome)
	require.ErrorIs(t, result.Err, context.Canceled)
	require.Len(t, result.Trajectory, 1)
}

func TestRunConfigErrors(t *testing.T) {
	_, err := Run(context.Background(), &Config{Agents: []game.Agent{gametest.Broken{}}})
	require.ErrorIs(t, err, ErrNoGame)

	_, err = Run(context.Background(), &Config{Type: gametest.Toggle{}})
	require.ErrorIs(t, err, ErrNoAgents)

	_, err = Run(context.Background(), &Config{
		Type:        gametest.Toggle{},
		Agents:      []game.Agent{gametest.Broken{}},
		PauseOnTurn: true,
	})
	require.Error(t, err)
}

func TestPacing(t *testing.T) {
	require.Equal(t, Pacing{0, 10 * time.Millisecond}, SpeedPacing(2))
	require.Equal(t, Pacing{50 * time.Millisecond, 100 * time.Millisecond}, SpeedPacing(1))
	require.Equal(t, Pacing{500 * time.Millisecond, time.Second}, SpeedPacing(0))
	require.Equal(t, SpeedPacing(0), SpeedPacing(7))

	pacing, err := ParsePacing("50ms+1s")
	require.NoError(t, err)
	require.Equal(t, Pacing{50 * time.Millisecond, time.Second}, pacing)
	require.Equal(t, "50ms+1s", pacing.String())

	for _, bad := range []string{"50ms", "x+1s", "1s+y", "-1s+1s"} {
		_, err := ParsePacing(bad)
		require.Error(t, err, bad)
	}
}

func TestOutcomeString(t *testing.T) {
	require.Equal(t, "terminal", Terminal.String())
	require.Equal(t, "cycle", CycleDetected.String())
	require.Equal(t, "aborted", Aborted.String())
	require.Equal(t, "running", Running.String())
}

// stuck is a countdown whose states always claim that the first player is
// to move.
type stuck struct{ gametest.Countdown }

func (s stuck) Init(agents []game.Agent) game.State {
	return stuckState{s.Countdown.Init(agents).(gametest.CountdownState)}
}

type stuckState struct{ gametest.CountdownState }

func (stuckState) CurrentPlayer() int { return 0 }

func (state stuckState) Act(action game.Action) (game.State, error) {
	next, err := state.CountdownState.Act(action)
	if err != nil {
		return nil, err
	}

	return stuckState{next.(gametest.CountdownState)}, nil
}

func TestRunRotatesSeats(t *testing.T) {
	alice := &gametest.Scripted{AgentName: "alice"}
	bob := &gametest.Scripted{AgentName: "bob"}

	result, err := Run(context.Background(), &Config{
		Type:   stuck{gametest.Countdown{Start: 4}},
		Agents: []game.Agent{alice, bob},
	})
	require.NoError(t, err)

	require.Equal(t, Terminal, result.Outcome)
	require.Equal(t, 4, result.Turns())
	require.Equal(t, 2, alice.Decided())
	require.Equal(t, 2, bob.Decided())
}
