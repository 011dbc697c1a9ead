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

// Package metrics holds the prometheus collectors exported by the referee.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Turns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referee_turns_total",
			Help: "Total state transitions performed, by game",
		},
		[]string{"game"},
	)
	InvalidActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referee_invalid_actions_total",
			Help: "Total actions rejected by the game, by game",
		},
		[]string{"game"},
	)
	Rounds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referee_rounds_total",
			Help: "Total rounds finished, by game and outcome",
		},
		[]string{"game", "outcome"},
	)
	LearnFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "referee_learn_failures_total",
			Help: "Total failed calls to an agent's learn hook",
		},
	)
	Frames = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "referee_frames_presented_total",
			Help: "Total frames presented by the display loop",
		},
	)
)

func init() {
	prometheus.MustRegister(Turns)
	prometheus.MustRegister(InvalidActions)
	prometheus.MustRegister(Rounds)
	prometheus.MustRegister(LearnFailures)
	prometheus.MustRegister(Frames)
}
