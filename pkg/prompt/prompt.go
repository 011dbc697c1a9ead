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

// Package prompt asks line based questions on a plain text stream, for
// sessions which run without a display.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

type Prompt struct {
	out   io.Writer
	lines chan string
}

// New returns a Prompt which reads answers from in and writes questions
// to out.
func New(in io.Reader, out io.Writer) *Prompt {
	p := &Prompt{out: out, lines: make(chan string)}
	go p.read(in)
	return p
}

func (p *Prompt) read(in io.Reader) {
	defer close(p.lines)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		p.lines <- scanner.Text()
	}
}

func (p *Prompt) line(ctx context.Context) (string, bool, error) {
	select {
	case line, ok := <-p.lines:
		return line, ok, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

// Confirm asks question until it is answered with yes or no. The end of
// the input counts as no.
func (p *Prompt) Confirm(ctx context.Context, question string) (bool, error) {
	for {
		fmt.Fprintf(p.out, "%s (y/n) ", question)

		answer, ok, err := p.line(ctx)
		if err != nil || !ok {
			fmt.Fprintln(p.out)
			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

// Continue waits for the user to press enter.
func (p *Prompt) Continue(ctx context.Context) error {
	fmt.Fprint(p.out, "press enter to continue ")
	_, _, err := p.line(ctx)
	return err
}
