// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"laptudirm.com/x/referee/internal/referee/config"
	"laptudirm.com/x/referee/internal/util"
	"laptudirm.com/x/referee/pkg/agents"
	"laptudirm.com/x/referee/pkg/common"
	"laptudirm.com/x/referee/pkg/eve/match"
	"laptudirm.com/x/referee/pkg/eve/session"
	"laptudirm.com/x/referee/pkg/eve/stats"
	"laptudirm.com/x/referee/pkg/game"
	"laptudirm.com/x/referee/pkg/games"
	"laptudirm.com/x/referee/pkg/prompt"
	"laptudirm.com/x/referee/pkg/render"
	"laptudirm.com/x/referee/pkg/render/terminal"
	"laptudirm.com/x/referee/pkg/render/web"
)

func Play() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a session of a game between agents",
		Args:  cobra.NoArgs,
		Long: heredoc.Doc(`play plays rounds of a game between the given agents, one
			after another, until the replay policy says otherwise.

			Agents are given in order of their seats with --agent, either
			as the name of an agent from the configuration file, as a kind
			of agent (random, first), or as process:<command> to run an
			external program which speaks the referee's line protocol.

			With --display the rounds are drawn on the terminal: press
			space to continue a paused round, y or n to answer questions,
			and q to quit. With --listen they can also be watched from a
			browser.`),
		Example: heredoc.Doc(`
			$ referee play --game nim --agent random --agent first --play-again 10
			$ referee play --game chess --agent random --agent "process:./bot --uci" --display
			$ referee play --config tournament.yaml --listen :8080`),

		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("config")
			if file == "" {
				if _, err := os.Stat(common.ConfigFile); err == nil {
					file = common.ConfigFile
				}
			}

			conf, err := config.Load(file)
			if err != nil {
				return err
			}

			if err := applyFlags(cmd, &conf); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return play(ctx, cmd.OutOrStdout(), conf)
		},
	}

	flags := cmd.Flags()
	flags.StringP("config", "c", "", "Session configuration file")
	flags.StringP("game", "g", "", "Game to play")
	flags.StringArrayP("agent", "a", nil, "Agent to seat, in order (repeatable)")
	flags.Bool("display", false, "Draw the rounds on the terminal")
	flags.String("play-again", "", "Replay policy: never, query, or a number of rounds")
	flags.Int("speed", 2, "Display speed: 0 (slow), 1, or 2 (fast)")
	flags.String("pacing", "", "Explicit display waits as turn+round, like 50ms+1s")
	flags.Bool("pause-on-turn", false, "Wait for a key press after every turn")
	flags.Int("max-invalid", match.DefaultMaxInvalidActions, "Invalid actions an agent may make in a row")
	flags.Int("refresh-rate", render.DefaultRefreshRate, "Display refreshes per second")
	flags.Bool("record", false, "Record the session in "+common.SessionsDirectory)
	flags.String("listen", "", "Serve the display to spectators on this address")

	return cmd
}

// applyFlags overrides conf with the flags which were set.
func applyFlags(cmd *cobra.Command, conf *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("game") {
		conf.Game, _ = flags.GetString("game")
	}

	if flags.Changed("agent") {
		values, _ := flags.GetStringArray("agent")
		configs, err := agentConfigs(values, conf.Agents)
		if err != nil {
			return err
		}

		conf.Agents = configs
	}

	if flags.Changed("display") {
		conf.Display, _ = flags.GetBool("display")
	}

	if flags.Changed("play-again") {
		conf.PlayAgain, _ = flags.GetString("play-again")
	}

	if flags.Changed("speed") {
		conf.Speed, _ = flags.GetInt("speed")
	}

	if flags.Changed("pacing") {
		conf.Pacing, _ = flags.GetString("pacing")
	}

	if flags.Changed("pause-on-turn") {
		conf.PauseOnTurn, _ = flags.GetBool("pause-on-turn")
	}

	if flags.Changed("max-invalid") || conf.MaxInvalid == 0 {
		conf.MaxInvalid, _ = flags.GetInt("max-invalid")
	}

	if flags.Changed("refresh-rate") || conf.RefreshRate == 0 {
		conf.RefreshRate, _ = flags.GetInt("refresh-rate")
	}

	if flags.Changed("record") {
		conf.Record, _ = flags.GetBool("record")
	}

	if flags.Changed("listen") {
		conf.Listen, _ = flags.GetString("listen")
	}

	return nil
}

// agentConfigs resolves the --agent values. A value is the name of one of
// the configured agents, a kind of agent, or process:<command line>.
func agentConfigs(values []string, configured []agents.Config) ([]agents.Config, error) {
	seen := make(map[string]int)

	var configs []agents.Config
	for _, value := range values {
		config, err := agentConfig(value, configured)
		if err != nil {
			return nil, err
		}

		// Names have to be unique for the report to make any sense.
		seen[config.Name]++
		if n := seen[config.Name]; n > 1 {
			config.Name += "#" + strconv.Itoa(n)
		}

		configs = append(configs, config)
	}

	return configs, nil
}

func agentConfig(value string, configured []agents.Config) (agents.Config, error) {
	for _, config := range configured {
		if config.Name == value {
			return config, nil
		}
	}

	kind, arg, _ := strings.Cut(value, ":")
	switch kind {
	case "random", "first":
		return agents.Config{Name: kind, Kind: kind}, nil

	case "process":
		fields := strings.Fields(arg)
		if len(fields) == 0 {
			return agents.Config{}, fmt.Errorf("agent %q: no command", value)
		}

		return agents.Config{
			Name: fields[0],
			Kind: "process",
			Cmd:  fields[0],
			Arg:  strings.Join(fields[1:], " "),
		}, nil
	}

	return agents.Config{}, fmt.Errorf("agent %q: not a configured agent or a kind of agent", value)
}

func play(ctx context.Context, out io.Writer, conf config.Config) error {
	typ, err := games.Configure(conf.Game, conf.Options)
	if err != nil {
		return err
	}

	if err := games.CheckPlayers(typ, len(conf.Agents)); err != nil {
		return err
	}

	policy, err := session.ParsePolicy(conf.PlayAgain)
	if err != nil {
		return err
	}

	pacing := match.SpeedPacing(conf.Speed)
	if conf.Pacing != "" {
		if pacing, err = match.ParsePacing(conf.Pacing); err != nil {
			return err
		}
	}

	players := make([]game.Agent, 0, len(conf.Agents))
	defer func() { agents.Close(players) }()

	for _, agentConf := range conf.Agents {
		agent, err := agents.New(agentConf)
		if err != nil {
			return err
		}

		players = append(players, agent)
	}

	sessionConfig := session.Config{
		Type:              typ,
		Agents:            players,
		Pacing:            pacing,
		Policy:            policy,
		PauseOnTurn:       conf.PauseOnTurn,
		MaxInvalidActions: conf.MaxInvalid,
	}

	var result session.Result
	if conf.Display || conf.Listen != "" {
		result, err = playDisplayed(ctx, &sessionConfig, conf)
	} else {
		result, err = playHeadless(ctx, &sessionConfig)
	}

	if errors.Is(err, context.Canceled) {
		logrus.Warn("Session interrupted")
		err = nil
	}

	if err != nil {
		return err
	}

	stats.Report(out, stats.Tally(result.Players, result.Rounds))

	if conf.Record {
		record := result.Record()
		file, err := record.Save(common.SessionsDirectory)
		if err != nil {
			return fmt.Errorf("record session: %w", err)
		}

		logrus.Infof("Session recorded at %s", file)
	}

	return nil
}

func playHeadless(ctx context.Context, settings *session.Config) (session.Result, error) {
	settings.Prompter = prompt.New(os.Stdin, os.Stdout)
	settings.Hooks = session.Hooks{
		RoundStarted: func(round int) {
			logrus.Debugf("Starting Round #%d", round)
			util.StartSpinner(os.Stderr, fmt.Sprintf("Playing Round #%d", round))
		},
		RoundFinished: func(round int, result *match.Result) {
			util.PauseSpinner()
			logrus.Infof("Finished Round #%d: %s", round, result)
		},
	}

	defer util.PauseSpinner()
	return session.Run(ctx, settings)
}

func playDisplayed(ctx context.Context, settings *session.Config, conf config.Config) (session.Result, error) {
	var presenters []render.Presenter

	var keys <-chan render.Key
	if conf.Display {
		term, err := terminal.Open(os.Stdin, os.Stdout)
		if errors.Is(err, terminal.ErrNotTerminal) {
			logrus.Warn("Standard input is not a terminal, keys need to be followed by enter")
			term, err = terminal.New(os.Stdin, os.Stdout), nil
		}

		if err != nil {
			return session.Result{}, err
		}

		presenters = append(presenters, term)
		keys = term.Keys()
	} else {
		keys = terminal.New(os.Stdin, io.Discard).Keys()
	}

	if conf.Listen != "" {
		hub := web.NewHub()
		server, err := web.Listen(conf.Listen, hub)
		if err != nil {
			return session.Result{}, err
		}

		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		}()

		presenters = append(presenters, hub)
	}

	// Logs would tear through the drawn frames, so hold them until the
	// display is gone.
	flush := func() {}
	if conf.Display {
		flush = holdLogs(os.Stderr)
		defer flush()
	}

	presenter := render.MultiPresenter(presenters...)
	settings.Display = true
	settings.Coordinator = render.New(render.Config{
		Presenter:   presenter,
		Input:       keys,
		RefreshRate: conf.RefreshRate,
		Exit:        exitHook(settings.Agents, flush, os.Exit),
	})

	settings.Hooks.RoundFinished = func(round int, result *match.Result) {
		logrus.Infof("Finished Round #%d: %s", round, result)
	}

	result, err := session.Run(ctx, settings)
	if closeErr := presenter.Close(); closeErr != nil {
		logrus.Debugf("close display: %v", closeErr)
	}

	return result, err
}

// holdLogs buffers the log output until the returned flush function is
// called, which writes everything held to out.
func holdLogs(out io.Writer) (flush func()) {
	var logs bytes.Buffer
	logrus.SetOutput(&logs)

	var once sync.Once
	return func() {
		once.Do(func() {
			logrus.SetOutput(out)
			_, _ = io.Copy(out, &logs)
		})
	}
}

// exitHook returns the function the display calls on quit. Deferred calls
// don't run on exit, so it stops the agents and flushes the logs itself.
func exitHook(players []game.Agent, flush func(), exit func(int)) func(int) {
	return func(code int) {
		agents.Close(players)
		flush()
		exit(code)
	}
}
