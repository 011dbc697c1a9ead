package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"laptudirm.com/x/referee/pkg/eve/match"
	"laptudirm.com/x/referee/pkg/game"
	"laptudirm.com/x/referee/pkg/game/gametest"
	"laptudirm.com/x/referee/pkg/render"
)

// answers is a Prompter which replies with the given answers in order.
type answers struct {
	replies []bool
	asked   []string
}

func (a *answers) Confirm(_ context.Context, question string) (bool, error) {
	a.asked = append(a.asked, question)
	if len(a.replies) == 0 {
		return false, nil
	}

	reply := a.replies[0]
	a.replies = a.replies[1:]
	return reply, nil
}

func (a *answers) Continue(context.Context) error { return nil }

type nopPresenter struct{}

func (nopPresenter) Present([]byte) error { return nil }
func (nopPresenter) Close() error         { return nil }

func countdown(policy Policy) *Config {
	return &Config{
		Type:   gametest.Countdown{Start: 3},
		Agents: []game.Agent{&gametest.Scripted{AgentName: "alice"}, &gametest.Scripted{AgentName: "bob"}},
		Policy: policy,
	}
}

func TestRunPolicies(t *testing.T) {
	t.Run("fixed count", func(t *testing.T) {
		var started, finished []int

		config := countdown(FixedCount(3))
		config.Hooks = Hooks{
			RoundStarted:  func(round int) { started = append(started, round) },
			RoundFinished: func(round int, _ *match.Result) { finished = append(finished, round) },
		}

		result, err := Run(context.Background(), config)
		require.NoError(t, err)
		require.Len(t, result.Rounds, 3)
		require.Equal(t, []int{1, 2, 3}, started)
		require.Equal(t, []int{1, 2, 3}, finished)

		for _, round := range result.Rounds {
			require.Equal(t, match.Terminal, round.Outcome)
		}
	})

	t.Run("never", func(t *testing.T) {
		result, err := Run(context.Background(), countdown(Never{}))
		require.NoError(t, err)
		require.Len(t, result.Rounds, 1)
		require.Equal(t, "countdown", result.Game)
		require.Equal(t, []string{"alice", "bob"}, result.Players)
	})

	t.Run("query", func(t *testing.T) {
		prompter := &answers{replies: []bool{true, true, false}}

		config := countdown(Query{})
		config.Prompter = prompter

		result, err := Run(context.Background(), config)
		require.NoError(t, err)
		require.Len(t, result.Rounds, 3)
		require.Equal(t, []string{Question, Question, Question}, prompter.asked)
	})

	t.Run("query without a prompter", func(t *testing.T) {
		result, err := Run(context.Background(), countdown(Query{}))
		require.NoError(t, err)
		require.Len(t, result.Rounds, 1)
	})
}

func TestRunDisplay(t *testing.T) {
	coordinator := render.New(render.Config{Presenter: nopPresenter{}, RefreshRate: 100})

	config := countdown(FixedCount(2))
	config.Display = true
	config.Coordinator = coordinator

	result, err := Run(context.Background(), config)
	require.NoError(t, err)
	require.Len(t, result.Rounds, 2)

	last := result.Rounds[1].Trajectory.Last()
	require.Equal(t, last.Draw(), string(coordinator.Frame()))

	_, err = Run(context.Background(), &Config{Display: true})
	require.ErrorIs(t, err, ErrNoDisplay)
}

func TestRunDisplayQuit(t *testing.T) {
	input := make(chan render.Key, 1)
	code := -1

	coordinator := render.New(render.Config{
		Presenter: nopPresenter{},
		Input:     input,
		Exit:      func(c int) { code = c },
	})

	config := countdown(Query{})
	config.Display = true
	config.Coordinator = coordinator

	input <- render.KeyQuit
	_, err := Run(context.Background(), config)
	require.ErrorIs(t, err, render.ErrQuit)
	require.Equal(t, 0, code)
}

func TestRunDisplayInputEnded(t *testing.T) {
	input := make(chan render.Key)
	close(input)

	config := countdown(Query{})
	config.Display = true
	config.Coordinator = render.New(render.Config{
		Presenter:   nopPresenter{},
		Input:       input,
		RefreshRate: 100,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := Run(ctx, config)
	require.NoError(t, err, "the question should be answered no, not wait for the deadline")
	require.Len(t, result.Rounds, 1)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Run(ctx, countdown(FixedCount(5)))
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, result.Rounds, 1)
	require.Equal(t, match.Aborted, result.Rounds[0].Outcome)
}

func TestParsePolicy(t *testing.T) {
	for input, want := range map[string]Policy{
		"":      Never{},
		"never": Never{},
		"query": Query{},
		"4":     FixedCount(4),
	} {
		policy, err := ParsePolicy(input)
		require.NoError(t, err, input)
		require.Equal(t, want, policy, input)
	}

	for _, bad := range []string{"0", "-2", "sometimes"} {
		_, err := ParsePolicy(bad)
		require.Error(t, err, bad)
	}

	require.Equal(t, "4", FixedCount(4).String())
}

func TestRecord(t *testing.T) {
	result, err := Run(context.Background(), countdown(FixedCount(2)))
	require.NoError(t, err)

	record := result.Record()
	require.Equal(t, result.ID.String(), record.ID)
	require.Equal(t, "2", record.Policy)
	require.Len(t, record.Rounds, 2)

	round := record.Rounds[0]
	require.Equal(t, "terminal", round.Outcome)
	require.Equal(t, "alice wins after 3 turns", round.Summary)
	require.Equal(t, []string{"1", "1", "1"}, round.Actions)
	require.Equal(t, []string{"3/0", "2/1", "1/0", "0/1"}, round.States)

	dir := filepath.Join(t.TempDir(), "sessions")
	file, err := record.Save(dir)
	require.NoError(t, err)
	require.FileExists(t, file)

	loaded, err := LoadRecord(file)
	require.NoError(t, err)
	require.Equal(t, record.ID, loaded.ID)
	require.Equal(t, record.Rounds, loaded.Rounds)

	changed := record
	changed.Game = "changed"
	_, err = changed.Save(dir)
	require.NoError(t, err)
	loaded, err = LoadRecord(file)
	require.NoError(t, err)
	require.Equal(t, record.Game, loaded.Game, "records are never overwritten")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	records, err := ListRecords(dir)
	require.NoError(t, err)
	require.Len(t, records, 1)

	records, err = ListRecords(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	require.Empty(t, records)
}
