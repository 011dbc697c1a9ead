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

// Package config loads the configuration of a referee session. Values
// come from, in increasing order of priority, the defaults, the REFEREE_*
// environment variables (which may be set in a .env file), and a YAML file.
// Command line flags override all of them.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"laptudirm.com/x/referee/pkg/agents"
	"laptudirm.com/x/referee/pkg/games"
)

type Config struct {
	Game    string        `yaml:"game"`
	Options games.Options `yaml:"options"`

	Agents []agents.Config `yaml:"agents"`

	Display   bool   `yaml:"display"`
	PlayAgain string `yaml:"play-again"`
	Speed     int    `yaml:"speed"`

	// Pacing overrides the speed with explicit waits, as turn+round.
	Pacing string `yaml:"pacing"`

	PauseOnTurn bool `yaml:"pause-on-turn"`
	MaxInvalid  int  `yaml:"max-invalid"`
	RefreshRate int  `yaml:"refresh-rate"`

	Record bool   `yaml:"record"`
	Listen string `yaml:"listen"`
}

func Default() Config {
	return Config{
		Game:      "nim",
		PlayAgain: "never",
		Speed:     2,
		Agents: []agents.Config{
			{Name: "random", Kind: "random"},
			{Name: "first", Kind: "first"},
		},
	}
}

// Load returns the configuration in file on top of the environment and
// the defaults. An empty file name skips the file.
func Load(file string) (Config, error) {
	config := Default()
	if err := config.ApplyEnv(); err != nil {
		return Config{}, err
	}

	if file == "" {
		return config, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return Config{}, err
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", file, err)
	}

	return config, nil
}

// ApplyEnv overrides config with the REFEREE_* environment variables,
// after loading them from a .env file in the working directory if there
// is one.
func (config *Config) ApplyEnv() error {
	_ = godotenv.Load()

	if game := os.Getenv("REFEREE_GAME"); game != "" {
		config.Game = game
	}

	if policy := os.Getenv("REFEREE_PLAY_AGAIN"); policy != "" {
		config.PlayAgain = policy
	}

	if speed := os.Getenv("REFEREE_SPEED"); speed != "" {
		n, err := strconv.Atoi(speed)
		if err != nil {
			return fmt.Errorf("REFEREE_SPEED: %w", err)
		}

		config.Speed = n
	}

	if listen := os.Getenv("REFEREE_LISTEN"); listen != "" {
		config.Listen = listen
	}

	if display := os.Getenv("REFEREE_DISPLAY"); display != "" {
		on, err := strconv.ParseBool(display)
		if err != nil {
			return fmt.Errorf("REFEREE_DISPLAY: %w", err)
		}

		config.Display = on
	}

	return nil
}
