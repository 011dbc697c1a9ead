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

package stats

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/fatih/color"

	"laptudirm.com/x/referee/pkg/eve/match"
)

// Score is the record of a single player over a session.
type Score struct {
	Name string

	Wins, Losses, Draws int

	// Aborted rounds are not counted as wins, losses, or draws.
	Aborted int
}

func (score Score) Total() int {
	return score.Wins + score.Losses + score.Draws
}

// Elo returns the player's elo relative to the rest of the field and its
// error margin.
func (score Score) Elo() (elo, margin float64) {
	lower, elo, upper := Elo(score.Wins, score.Draws, score.Losses)
	return elo, math.Abs(math.Max(upper-elo, elo-lower))
}

// Tally scores every player of the given rounds. A round with winners is a
// win for them and a loss for everyone else; a round without any is a draw.
func Tally(players []string, rounds []match.Result) []Score {
	scores := make([]Score, len(players))
	for i, name := range players {
		scores[i].Name = name
	}

	for i := range rounds {
		round := &rounds[i]
		if round.Outcome == match.Aborted {
			for player := range scores {
				scores[player].Aborted++
			}

			continue
		}

		winners := round.Winners()
		for player := range scores {
			switch {
			case winners == nil:
				scores[player].Draws++
			case slices.Contains(winners, player):
				scores[player].Wins++
			default:
				scores[player].Losses++
			}
		}
	}

	return scores
}

var (
	ahead  = color.New(color.FgGreen)
	behind = color.New(color.FgRed)
)

// Report prints the boxed score table of the given scores.
func Report(w io.Writer, scores []Score) {
	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║    Name               Elo Error   Wins Loss Draw   Total ║")
	fmt.Fprintln(w, "╠══════════════════════════════════════════════════════════╣")
	for i, score := range scores {
		elo, margin := score.Elo()

		line := fmt.Sprintf(
			"%2d. %-15s   %+4.0f %4.0f   %4d %4d %4d   %5d",
			i+1, truncate(score.Name, 15),
			elo, margin,
			score.Wins, score.Losses, score.Draws,
			score.Total(),
		)

		switch {
		case score.Total() == 0:
		case elo > 0:
			line = ahead.Sprint(line)
		case elo < 0:
			line = behind.Sprint(line)
		}

		fmt.Fprintf(w, "║ %s ║\n", line)
	}
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════════╝")
}

func truncate(name string, width int) string {
	runes := []rune(name)
	if len(runes) <= width {
		return name
	}

	return string(runes[:width-1]) + "…"
}
