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
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"laptudirm.com/x/referee/pkg/common"
	"laptudirm.com/x/referee/pkg/eve/match"
	"laptudirm.com/x/referee/pkg/game"
)

// Record is the on-disk form of a session.
type Record struct {
	ID       string        `yaml:"id"`
	Game     string        `yaml:"game"`
	Players  []string      `yaml:"players"`
	Policy   string        `yaml:"play-again"`
	Started  time.Time     `yaml:"started"`
	Duration time.Duration `yaml:"duration"`

	Rounds []RoundRecord `yaml:"rounds"`
}

type RoundRecord struct {
	Outcome string    `yaml:"outcome"`
	Summary string    `yaml:"summary"`
	Rewards []float64 `yaml:"rewards,omitempty"`
	Turns   int       `yaml:"turns"`
	Invalid int       `yaml:"invalid-actions,omitempty"`

	Actions []string `yaml:"actions,omitempty"`

	// States holds the notation of every state of the round, if the game
	// provides one.
	States []string `yaml:"states,omitempty"`
}

// Record converts the Result into its on-disk form.
func (result *Result) Record() Record {
	record := Record{
		ID:       result.ID.String(),
		Game:     result.Game,
		Players:  result.Players,
		Policy:   result.Policy,
		Started:  result.Started,
		Duration: result.Duration,
	}

	for i := range result.Rounds {
		record.Rounds = append(record.Rounds, roundRecord(&result.Rounds[i]))
	}

	return record
}

func roundRecord(result *match.Result) RoundRecord {
	round := RoundRecord{
		Outcome: result.Outcome.String(),
		Summary: result.String(),
		Rewards: result.Rewards,
		Turns:   result.Turns(),
		Invalid: result.InvalidActions,
	}

	for _, action := range result.Actions {
		round.Actions = append(round.Actions, fmt.Sprint(action))
	}

	for _, state := range result.Trajectory {
		notation, ok := state.(game.Notation)
		if !ok {
			round.States = nil
			break
		}

		round.States = append(round.States, notation.Notation())
	}

	return round
}

// Save writes the record to <id>.yaml inside dir, and returns the path of
// the written file.
func (record *Record) Save(dir string) (string, error) {
	if err := common.TryMkdir(dir); err != nil {
		return "", err
	}

	data, err := yaml.Marshal(record)
	if err != nil {
		return "", err
	}

	// Session ids are unique, so an existing record is never overwritten.
	file := filepath.Join(dir, record.ID+".yaml")
	return file, common.TryCreate(file, data)
}

func LoadRecord(file string) (Record, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return Record{}, err
	}

	var record Record
	if err := yaml.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("load record %s: %w", filepath.Base(file), err)
	}

	return record, nil
}

// ListRecords loads every record in dir, oldest first. A missing directory
// holds no records.
func ListRecords(dir string) ([]Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, err
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		record, err := LoadRecord(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Started.Before(records[j].Started)
	})

	return records, nil
}
