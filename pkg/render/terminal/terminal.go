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

// Package terminal implements a render.Presenter and key source on top of
// an ANSI terminal put into raw mode.
package terminal

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"laptudirm.com/x/referee/pkg/render"
)

var ErrNotTerminal = errors.New("terminal: input is not a terminal")

// clearScreen moves the cursor home and clears the screen.
const clearScreen = "\x1b[H\x1b[2J"

var modal = color.New(color.FgYellow, color.Bold)

type Terminal struct {
	out  io.Writer
	keys chan render.Key

	fd    int
	state *term.State

	closeOnce sync.Once
}

// Open puts in into raw mode and starts reading keys from it. Frames are
// written to out.
func Open(in *os.File, out io.Writer) (*Terminal, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}

	t := New(in, out)
	t.fd, t.state = fd, state
	return t, nil
}

// New creates a Terminal which reads keys from in without touching its
// mode, for inputs which are not terminals.
func New(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{
		out:  out,
		keys: make(chan render.Key, 16),
		fd:   -1,
	}

	go t.read(in)
	return t
}

func (t *Terminal) read(in io.Reader) {
	defer close(t.keys)

	reader := bufio.NewReader(in)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logrus.Debugf("terminal: read: %v", err)
			}

			return
		}

		if key := render.KeyFor(b); key != render.KeyNone {
			t.keys <- key
		}
	}
}

// Keys returns the channel of keys pressed by the user. It is closed when
// the input ends.
func (t *Terminal) Keys() <-chan render.Key {
	return t.keys
}

// Present redraws the whole screen with frame.
func (t *Terminal) Present(frame []byte) error {
	var b bytes.Buffer
	b.WriteString(clearScreen)

	// Raw mode disables the translation of \n into \r\n.
	for _, line := range bytes.SplitAfter(frame, []byte("\n")) {
		text := bytes.TrimSuffix(line, []byte("\n"))
		if isModal(text) {
			b.WriteString(modal.Sprint(string(text)))
		} else {
			b.Write(text)
		}

		if len(text) < len(line) {
			b.WriteString("\r\n")
		}
	}

	_, err := t.out.Write(b.Bytes())
	return err
}

// Close restores the terminal to the mode it was in before Open.
func (t *Terminal) Close() error {
	var err error
	t.closeOnce.Do(func() {
		if t.state != nil {
			err = term.Restore(t.fd, t.state)
		}
	})

	return err
}

func isModal(line []byte) bool {
	for _, prefix := range []string{"╔", "║", "╚"} {
		if bytes.HasPrefix(line, []byte(prefix)) {
			return true
		}
	}

	return false
}
