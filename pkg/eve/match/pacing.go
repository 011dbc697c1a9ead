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

package match

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Pacing throttles a round so that it can be followed on a display. Turn is
// the minimum duration of a turn, and Round is waited after a round ends.
type Pacing struct {
	Turn, Round time.Duration
}

// SpeedPacing maps a speed setting to its Pacing. 2 is the fastest.
func SpeedPacing(speed int) Pacing {
	switch speed {
	case 2:
		return Pacing{Turn: 0, Round: 10 * time.Millisecond}
	case 1:
		return Pacing{Turn: 50 * time.Millisecond, Round: 100 * time.Millisecond}
	default:
		return Pacing{Turn: 500 * time.Millisecond, Round: time.Second}
	}
}

// ParsePacing parses a pacing string of the form turn+round, where both
// parts are durations, e.g. 50ms+100ms.
func ParsePacing(pacing_str string) (Pacing, error) {
	turn_str, round_str, found := strings.Cut(pacing_str, "+")
	if !found {
		return Pacing{}, errors.New("parse pacing: round wait not found")
	}

	turn, err := time.ParseDuration(turn_str)
	if err != nil {
		return Pacing{}, err
	}

	round, err := time.ParseDuration(round_str)
	if err != nil {
		return Pacing{}, err
	}

	if turn < 0 || round < 0 {
		return Pacing{}, errors.New("parse pacing: negative wait")
	}

	return Pacing{Turn: turn, Round: round}, nil
}

// String returns the Pacing in the format accepted by ParsePacing.
func (pacing Pacing) String() string {
	return pacing.Turn.String() + "+" + pacing.Round.String()
}

// sleep waits for d or until ctx is done, whichever happens first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
