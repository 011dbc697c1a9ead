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
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "v0.1.0"

func Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "referee",
		Short: "Referee turn based games between agents",
		Args:  cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// --trace takes precedence over --debug.
			switch {
			case cmd.Flag("trace").Changed:
				logrus.SetLevel(logrus.TraceLevel)
			case cmd.Flag("debug").Changed:
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	// global flags
	root.PersistentFlags().BoolP("help", "h", false, "Show Help Information")
	root.PersistentFlags().BoolP("version", "v", false, "Show Referee's Version")
	root.PersistentFlags().BoolP("trace", "t", false, "Show Trace Information")
	root.PersistentFlags().BoolP("debug", "d", false, "Show Debug Information")

	root.SetVersionTemplate(version + "\n")
	root.Version = version

	// Register the various commands.
	root.AddCommand(Play())
	root.AddCommand(Games())
	root.AddCommand(Sessions())

	return root
}
