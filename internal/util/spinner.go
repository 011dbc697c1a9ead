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

package util

import (
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

const spinnerCharSet = 31

var (
	spinnerMu sync.Mutex
	working   *spinner.Spinner
)

// StartSpinner shows the ~working~ spinner on w with the given suffix, or
// updates the suffix if it is already spinning.
func StartSpinner(w io.Writer, suffix string) {
	spinnerMu.Lock()
	defer spinnerMu.Unlock()

	if working == nil {
		working = spinner.New(
			spinner.CharSets[spinnerCharSet], 100*time.Millisecond,
			spinner.WithWriter(w),
		)
	}

	working.Lock()
	working.Suffix = " " + suffix
	working.Unlock()

	working.Start()
}

// PauseSpinner hides the spinner until the next StartSpinner.
func PauseSpinner() {
	spinnerMu.Lock()
	defer spinnerMu.Unlock()

	if working != nil {
		working.Stop()
	}
}
