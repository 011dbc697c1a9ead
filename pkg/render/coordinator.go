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

// Package render coordinates the simulation, which draws game states onto
// a shared surface, with the display loop presenting that surface.
package render

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/referee/pkg/game"
	"laptudirm.com/x/referee/pkg/metrics"
)

// DefaultRefreshRate is the number of display ticks per second.
const DefaultRefreshRate = 15

// ErrQuit is returned by Run if a quit key was received and the exit
// function returned.
var ErrQuit = errors.New("render: quit")

// ErrNoInput is returned when waiting for a key after the input has ended.
var ErrNoInput = errors.New("render: input closed")

// Presenter shows frames of the surface to the user.
type Presenter interface {
	Present(frame []byte) error
	Close() error
}

type Config struct {
	Presenter Presenter

	// Input is the source of keys, usually a terminal. It may be nil.
	Input <-chan Key

	RefreshRate int

	// Exit terminates the process. Defaults to os.Exit.
	Exit func(code int)
}

// Coordinator owns the Surface. Every access to the surface, from the
// simulation or the display, happens under its lock.
type Coordinator struct {
	mu      sync.Mutex
	surface Surface

	presenter Presenter
	input     <-chan Key
	keys      chan Key

	// inputClosed is closed once no more keys can arrive.
	inputClosed chan struct{}

	rate time.Duration
	exit func(code int)
}

func New(config Config) *Coordinator {
	rate := config.RefreshRate
	if rate <= 0 {
		rate = DefaultRefreshRate
	}

	exit := config.Exit
	if exit == nil {
		exit = os.Exit
	}

	c := &Coordinator{
		presenter:   config.Presenter,
		input:       config.Input,
		keys:        make(chan Key, 16),
		inputClosed: make(chan struct{}),
		rate:        time.Second / time.Duration(rate),
		exit:        exit,
	}

	if c.input == nil {
		close(c.inputClosed)
	}

	return c
}

// Draw writes the picture of state onto the surface.
func (c *Coordinator) Draw(state game.State) {
	c.Blit(state.Draw())
}

// Blit replaces the contents of the surface with frame.
func (c *Coordinator) Blit(frame string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surface.blit(frame)
}

// Frame returns a copy of the current contents of the surface.
func (c *Coordinator) Frame() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface.snapshot()
}

// Run is the display loop. It presents the surface at the refresh rate
// until done is closed, and handles the keys coming from the input. A quit
// key terminates the whole process.
func (c *Coordinator) Run(done <-chan struct{}) error {
	ticker := time.NewTicker(c.rate)
	defer ticker.Stop()

	var presented uint64
	for {
		presented = c.present(presented)

		if c.drain() {
			return ErrQuit
		}

		select {
		case <-done:
			c.present(presented)
			return nil
		case <-ticker.C:
		}
	}
}

// present shows the surface if it changed since the given version, and
// returns the version shown.
func (c *Coordinator) present(since uint64) uint64 {
	c.mu.Lock()
	version := c.surface.version
	if version == since || c.presenter == nil {
		c.mu.Unlock()
		return version
	}

	frame := c.surface.snapshot()
	c.mu.Unlock()

	if err := c.presenter.Present(frame); err != nil {
		logrus.Debugf("render: present: %v", err)
	}

	metrics.Frames.Inc()
	return version
}

// drain handles all the pending input, and reports whether the display
// loop should stop.
func (c *Coordinator) drain() bool {
	for {
		select {
		case key, ok := <-c.input:
			if !ok {
				c.input = nil
				close(c.inputClosed)
				return false
			}

			if key == KeyQuit {
				c.quit()
				return true
			}

			select {
			case c.keys <- key:
			default:
				logrus.Debugf("render: dropped key %s", key)
			}

		default:
			return false
		}
	}
}

func (c *Coordinator) quit() {
	logrus.Info("Quit requested, exiting")
	if c.presenter != nil {
		_ = c.presenter.Close()
	}

	c.exit(0)
}

// Confirm shows question in a modal prompt and blocks until the user
// answers it with yes or no. An input which has ended answers no.
func (c *Coordinator) Confirm(ctx context.Context, question string) (bool, error) {
	c.mu.Lock()
	c.surface.overlay(question + " (y/n)")
	c.mu.Unlock()

	c.clear()
	for {
		key, err := c.next(ctx)
		switch {
		case errors.Is(err, ErrNoInput):
			return false, nil
		case err != nil:
			return false, err
		case key == KeyYes:
			return true, nil
		case key == KeyNo:
			return false, nil
		}
	}
}

// Continue blocks until the continue key is pressed. It returns ErrNoInput
// if the input ends first.
func (c *Coordinator) Continue(ctx context.Context) error {
	c.clear()
	for {
		key, err := c.next(ctx)
		if err != nil {
			return err
		}

		if key == KeyContinue {
			return nil
		}
	}
}

// next returns the next key forwarded by the display loop. Keys which were
// forwarded before the input ended are still returned.
func (c *Coordinator) next(ctx context.Context) (Key, error) {
	if err := ctx.Err(); err != nil {
		return KeyNone, err
	}

	select {
	case key := <-c.keys:
		return key, nil

	case <-c.inputClosed:
		select {
		case key := <-c.keys:
			return key, nil
		default:
			return KeyNone, ErrNoInput
		}

	case <-ctx.Done():
		return KeyNone, ctx.Err()
	}
}

// clear discards keys pressed before the simulation started waiting.
func (c *Coordinator) clear() {
	for {
		select {
		case <-c.keys:
		default:
			return
		}
	}
}

// MultiPresenter presents every frame to all of the given presenters.
func MultiPresenter(presenters ...Presenter) Presenter {
	return multiPresenter(presenters)
}

type multiPresenter []Presenter

func (presenters multiPresenter) Present(frame []byte) error {
	var errs []error
	for _, presenter := range presenters {
		errs = append(errs, presenter.Present(frame))
	}

	return errors.Join(errs...)
}

func (presenters multiPresenter) Close() error {
	var errs []error
	for _, presenter := range presenters {
		errs = append(errs, presenter.Close())
	}

	return errors.Join(errs...)
}
