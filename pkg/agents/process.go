// Copyright © 2023 Rak Laptudirm <rak@laptudirm.com>
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

package agents

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/referee/pkg/game"
)

// DefaultTimeout is the time a process has to decide on an action.
const DefaultTimeout = 10 * time.Second

// Process is an agent implemented by an external program, which talks to
// the referee over its standard input and output, one command per line:
//
//	referee              -> refereeok
//	isready              -> readyok
//	position <notation>
//	actions <a1> <a2> ...
//	go                   -> action <a>
//	result <player> <reward|none>
//	quit
type Process struct {
	config Config

	*exec.Cmd

	writer *bufio.Writer
	reader *bufio.Reader

	lines chan string

	mu  sync.Mutex
	err error
}

// StartProcess starts the program described by config and performs the
// initial handshake with it.
func StartProcess(config Config) (*Process, error) {
	if config.Cmd == "" {
		return nil, errors.New("start process: no command")
	}

	var agent Process
	agent.config = config

	cmd := exec.Command(config.Cmd, strings.Fields(config.Arg)...)
	cmd.Dir = config.Dir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	agent.writer = bufio.NewWriter(stdin)
	agent.reader = bufio.NewReader(stdout)
	agent.lines = make(chan string)
	agent.Cmd = cmd

	if err := agent.Cmd.Start(); err != nil {
		return nil, fmt.Errorf("start process %s: %w", config.Name, err)
	}

	go agent.read()

	if agent.config.InitStr != "" {
		if err := agent.Write(agent.config.InitStr); err != nil {
			_ = agent.Kill()
			return nil, fmt.Errorf("start process %s: %w", config.Name, err)
		}
	}

	if err := agent.Initialize(); err != nil {
		_ = agent.Kill()
		return nil, fmt.Errorf("start process %s: %w", config.Name, err)
	}

	return &agent, nil
}

func (agent *Process) read() {
	for {
		line, err := agent.reader.ReadString('\n')
		if err != nil {
			agent.mu.Lock()
			agent.err = err
			agent.mu.Unlock()

			close(agent.lines)
			return
		}

		line = strings.Trim(line, " \n\t\r")

		logrus.Tracef("info: (%s)> %s", agent.config.Name, line)
		agent.lines <- line
	}
}

func (agent *Process) Name() string { return agent.config.Name }

// Initialize performs the handshake with the process on startup.
func (agent *Process) Initialize() error {
	if err := agent.Write("referee"); err != nil {
		return err
	}

	_, err := agent.Await("^refereeok$", 5*time.Second)
	return err
}

// Synchronize waits for the process to complete some time consuming task
// and synchronizes the interface with it.
func (agent *Process) Synchronize() error {
	if err := agent.Write("isready"); err != nil {
		return err
	}

	_, err := agent.Await("^readyok$", 5*time.Second)
	return err
}

var actionRegex = regexp.MustCompile(`^action (\S+)$`)

func (agent *Process) Decide(state game.State) (game.Action, error) {
	if err := agent.Write("position %s", notation(state)); err != nil {
		return nil, err
	}

	actions := state.Actions()
	if err := agent.Write("actions %s", game.FormatActions(actions)); err != nil {
		return nil, err
	}

	if err := agent.Synchronize(); err != nil {
		return nil, err
	}

	if err := agent.Write("go"); err != nil {
		return nil, err
	}

	timeout := agent.config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	line, err := agent.Await(actionRegex.String(), timeout)
	if err != nil {
		return nil, err
	}

	token := actionRegex.FindStringSubmatch(line)[1]
	for _, action := range actions {
		if fmt.Sprint(action) == token {
			return action, nil
		}
	}

	// Let the game decide what to make of it.
	return token, nil
}

// Learn tells the process how the round ended for it.
func (agent *Process) Learn(states game.Trajectory, player int) error {
	reward := "none"
	if last := states.Last(); last != nil && last.IsTerminal() {
		value, err := last.Reward(player)
		if err != nil {
			return err
		}

		reward = strconv.FormatFloat(value, 'g', -1, 64)
	}

	if err := agent.Write("result %d %s", player, reward); err != nil {
		return err
	}

	return agent.Synchronize()
}

// Kill stops the process and waits for it to exit.
func (agent *Process) Kill() error {
	if err := agent.Write("quit"); err != nil {
		logrus.Debugf("kill %s: %v", agent.config.Name, err)
	}

	err := agent.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		err = nil
	}

	// The exit status of a killed process is of no interest.
	_ = agent.Wait()
	return err
}

var ErrReadTimeout = errors.New("process: read i/o timeout")

// Await waits for a line matching pattern from the process, with a fixed
// timeout.
func (agent *Process) Await(pattern string, timeout time.Duration) (string, error) {
	regex := regexp.MustCompile(pattern)
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			return "", ErrReadTimeout

		case line, ok := <-agent.lines:
			if !ok {
				agent.mu.Lock()
				defer agent.mu.Unlock()

				if agent.err == nil || errors.Is(agent.err, io.EOF) {
					return "", fmt.Errorf("process %s exited", agent.config.Name)
				}

				return "", agent.err
			}

			if regex.MatchString(line) {
				return line, nil
			}
		}
	}
}

func (agent *Process) Write(format string, a ...any) error {
	logrus.Tracef("info: (%s)< "+format, append([]any{agent.config.Name}, a...)...)

	if _, err := fmt.Fprintf(agent.writer, format+"\n", a...); err != nil {
		return err
	}

	return agent.writer.Flush()
}

// notation returns a single line description of state.
func notation(state game.State) string {
	if n, ok := state.(game.Notation); ok {
		return n.Notation()
	}

	return strconv.FormatUint(uint64(state.Hash()), 16)
}
