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

import (
	"strings"
	"unicode/utf8"
)

// Surface is the drawable target shared by the simulation and the display.
// It is not safe for concurrent use; the Coordinator guards it.
type Surface struct {
	buf     []byte
	version uint64
}

// blit replaces the contents of the surface with frame, writing into the
// existing buffer in place.
func (surface *Surface) blit(frame string) {
	if cap(surface.buf) < len(frame) {
		surface.buf = make([]byte, len(frame))
	}

	surface.buf = surface.buf[:len(frame)]
	for i := 0; i < len(frame); i++ {
		surface.buf[i] = frame[i]
	}

	surface.version++
}

// overlay draws a boxed message below the current contents.
func (surface *Surface) overlay(message string) {
	frame := string(surface.buf)
	if frame != "" && !strings.HasSuffix(frame, "\n") {
		frame += "\n"
	}

	surface.blit(frame + box(message))
}

func (surface *Surface) snapshot() []byte {
	frame := make([]byte, len(surface.buf))
	copy(frame, surface.buf)
	return frame
}

func box(message string) string {
	width := utf8.RuneCountInString(message) + 4

	var b strings.Builder
	b.WriteString("╔" + strings.Repeat("═", width) + "╗\n")
	b.WriteString("║  " + message + "  ║\n")
	b.WriteString("╚" + strings.Repeat("═", width) + "╝\n")
	return b.String()
}
