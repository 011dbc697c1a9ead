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

package render

// Key is an input event coming from the display.
type Key int

const (
	KeyNone Key = iota
	KeyYes
	KeyNo
	KeyContinue
	KeyQuit
)

// KeyFor maps a byte read from a terminal to its Key.
func KeyFor(b byte) Key {
	switch b {
	case 'y', 'Y':
		return KeyYes
	case 'n', 'N':
		return KeyNo
	case ' ', '\r', '\n':
		return KeyContinue
	case 'q', 'Q', 3, 4: // ctrl-c, ctrl-d
		return KeyQuit
	default:
		return KeyNone
	}
}

func (key Key) String() string {
	switch key {
	case KeyYes:
		return "yes"
	case KeyNo:
		return "no"
	case KeyContinue:
		return "continue"
	case KeyQuit:
		return "quit"
	default:
		return "none"
	}
}
