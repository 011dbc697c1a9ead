package agents

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"laptudirm.com/x/referee/pkg/game"
	"laptudirm.com/x/referee/pkg/game/gametest"
	"laptudirm.com/x/referee/pkg/games/nim"
)

func TestRandom(t *testing.T) {
	state := nim.Nim{Heaps: []int{5, 5}}.Init(make([]game.Agent, 2))

	a, b := NewRandom("a", 7), NewRandom("b", 7)
	for i := 0; i < 20; i++ {
		x, err := a.Decide(state)
		require.NoError(t, err)
		y, err := b.Decide(state)
		require.NoError(t, err)

		require.Equal(t, x, y, "same seed, same choices")
		require.True(t, game.Contains(state.Actions(), x))
	}

	terminal := nim.Nim{Heaps: []int{0}}.Init(make([]game.Agent, 1))
	_, err := a.Decide(terminal)
	require.ErrorIs(t, err, ErrNoActions)
}

func TestFirst(t *testing.T) {
	state := nim.Nim{Heaps: []int{2}}.Init(make([]game.Agent, 1))

	action, err := First{}.Decide(state)
	require.NoError(t, err)
	require.Equal(t, nim.Take{Heap: 0, Count: 1}, action)
}

func TestNew(t *testing.T) {
	agent, err := New(Config{Kind: "first"})
	require.NoError(t, err)
	require.Equal(t, "first", game.AgentName(agent, 0))

	agent, err = New(Config{Name: "dice", Seed: 1})
	require.NoError(t, err)
	require.IsType(t, &Random{}, agent)
	require.Equal(t, "dice", game.AgentName(agent, 0))

	_, err = New(Config{Kind: "oracle"})
	require.Error(t, err)

	_, err = New(Config{Kind: "process"})
	require.Error(t, err)
}

// TestHelperProcess is not a real test. It is the external program used by
// the process agent tests: it always plays the last legal action.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("REFEREE_HELPER_PROCESS") != "1" {
		return
	}

	var actions []string
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		command, args, _ := strings.Cut(scanner.Text(), " ")
		switch command {
		case "referee":
			fmt.Println("refereeok")
		case "isready":
			fmt.Println("readyok")
		case "actions":
			actions = strings.Fields(args)
		case "go":
			if os.Getenv("REFEREE_HELPER_SILENT") == "1" {
				continue
			}

			fmt.Println("info thinking")
			fmt.Println("action " + actions[len(actions)-1])
		case "result":
			fmt.Fprintln(os.Stderr, "result", args)
		case "quit":
			os.Exit(0)
		}
	}

	os.Exit(0)
}

func helper(t *testing.T, env ...string) Config {
	t.Setenv("REFEREE_HELPER_PROCESS", "1")
	for i := 0; i+1 < len(env); i += 2 {
		t.Setenv(env[i], env[i+1])
	}

	return Config{
		Name:    "helper",
		Kind:    "process",
		Cmd:     os.Args[0],
		Arg:     "-test.run=^TestHelperProcess$",
		Timeout: 500 * time.Millisecond,
	}
}

func TestProcess(t *testing.T) {
	agent, err := New(helper(t))
	require.NoError(t, err)
	defer Close([]game.Agent{agent})

	require.Equal(t, "helper", game.AgentName(agent, 0))

	state := nim.Nim{Heaps: []int{1, 3}}.Init(make([]game.Agent, 2))
	action, err := agent.Decide(state)
	require.NoError(t, err)
	require.Equal(t, nim.Take{Heap: 1, Count: 3}, action)

	next, err := state.Act(action)
	require.NoError(t, err)

	learner, ok := agent.(game.Learner)
	require.True(t, ok)
	require.NoError(t, learner.Learn(game.Trajectory{state, next}, 0))
}

func TestProcessTimeout(t *testing.T) {
	agent, err := New(helper(t, "REFEREE_HELPER_SILENT", "1"))
	require.NoError(t, err)
	defer Close([]game.Agent{agent})

	_, err = agent.Decide(gametest.Countdown{Start: 3}.Init(make([]game.Agent, 1)))
	require.ErrorIs(t, err, ErrReadTimeout)
}

func TestProcessKill(t *testing.T) {
	agent, err := StartProcess(helper(t))
	require.NoError(t, err)

	require.NoError(t, agent.Kill())
	require.NotNil(t, agent.ProcessState, "the process should be reaped")

	_, err = StartProcess(Config{Name: "missing", Cmd: "./does-not-exist"})
	require.Error(t, err)
}
