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

package session

import (
	"context"
	"fmt"
	"strconv"
)

// Question asked by the Query policy after every round.
const Question = "play again?"

// ParsePolicy parses a replay policy: never, query, or a positive number
// of rounds.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "never", "":
		return Never{}, nil
	case "query":
		return Query{}, nil
	}

	n, err := strconv.Atoi(name)
	if err != nil || n < 1 {
		return nil, fmt.Errorf("parse policy: invalid replay policy %q", name)
	}

	return FixedCount(n), nil
}

// Policy decides whether a session goes on after a round.
type Policy interface {
	// Again reports whether another round should be played, given the
	// number of rounds played so far.
	Again(ctx context.Context, played int, confirmer Confirmer) (bool, error)
	String() string
}

// Never plays a single round.
type Never struct{}

func (Never) Again(context.Context, int, Confirmer) (bool, error) {
	return false, nil
}

func (Never) String() string { return "never" }

// Query asks the user after every round.
type Query struct{}

func (Query) Again(ctx context.Context, _ int, confirmer Confirmer) (bool, error) {
	if confirmer == nil {
		return false, nil
	}

	return confirmer.Confirm(ctx, Question)
}

func (Query) String() string { return "query" }

// FixedCount plays exactly that many rounds.
type FixedCount int

func (n FixedCount) Again(_ context.Context, played int, _ Confirmer) (bool, error) {
	return played < int(n), nil
}

func (n FixedCount) String() string { return strconv.Itoa(int(n)) }
