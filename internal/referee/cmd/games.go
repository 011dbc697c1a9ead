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

package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"laptudirm.com/x/referee/pkg/agents"
	"laptudirm.com/x/referee/pkg/games"
)

func Games() *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "Lists the available games and agents",
		Args:  cobra.ExactArgs(0),

		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			green, blue := color.New(color.FgGreen), color.New(color.FgBlue)

			green.Fprintln(out, "Available Games:")
			for _, name := range games.Names() {
				typ, err := games.Get(name)
				if err != nil {
					return err
				}

				players := ""
				if counter, ok := typ.(games.PlayerCounter); ok {
					min, max := counter.Players()
					players = fmt.Sprintf("%d-%d players", min, max)
					if min == max {
						players = fmt.Sprintf("%d players", min)
					}
				}

				fmt.Fprintf(out, "- %-20s %s\n", blue.Sprint(name), players)
			}

			green.Fprintln(out, "\nAvailable Agents:")
			fmt.Fprintf(out, "- %s\n", strings.Join(agents.Kinds, ", "))
			return nil
		},
	}
}
