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
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"laptudirm.com/x/referee/pkg/common"
	"laptudirm.com/x/referee/pkg/eve/session"
)

func Sessions() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Lists the recorded sessions",
		Args:  cobra.ExactArgs(0),

		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := session.ListRecords(common.SessionsDirectory)
			if err != nil {
				return err
			}

			listRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.AddCommand(showSession())
	return cmd
}

func showSession() *cobra.Command {
	return &cobra.Command{
		Use:   "show session-id",
		Short: "Show the rounds of a recorded session",
		Args:  cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := session.LoadRecord(filepath.Join(common.SessionsDirectory, args[0]+".yaml"))
			if err != nil {
				return err
			}

			showRecord(cmd.OutOrStdout(), &record)
			return nil
		},
	}
}

func listRecords(w io.Writer, records []session.Record) {
	if len(records) == 0 {
		color.New(color.FgRed).Fprintln(w, "No Sessions Recorded.")
		return
	}

	color.New(color.FgGreen).Fprintln(w, "Recorded Sessions:")
	for _, record := range records {
		fmt.Fprintf(
			w, "- %s  %s  %-8s %3d rounds  %s\n",
			color.BlueString(record.ID),
			record.Started.Format("2006-01-02 15:04"),
			record.Game,
			len(record.Rounds),
			strings.Join(record.Players, " vs "),
		)
	}
}

func showRecord(w io.Writer, record *session.Record) {
	fmt.Fprintf(w, "%s: %s (%s)\n", color.BlueString(record.ID), record.Game, strings.Join(record.Players, " vs "))
	for i, round := range record.Rounds {
		fmt.Fprintf(w, "  Round #%d: %s\n", i+1, round.Summary)
		if len(round.Actions) > 0 {
			fmt.Fprintf(w, "    %s\n", strings.Join(round.Actions, " "))
		}
	}
}
