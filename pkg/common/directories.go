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

// Package common holds the on-disk layout shared by the referee commands.
package common

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const FilePermissions = 0755

var (
	Directory = filepath.Join(xdg.Home, "referee")

	// SessionsDirectory holds the records of played sessions.
	SessionsDirectory = filepath.Join(Directory, "sessions")

	// ConfigFile is the default session configuration.
	ConfigFile = filepath.Join(Directory, "referee.yaml")
)

// TryMkdir creates dir, along with any missing parents, if it doesn't
// exist yet.
func TryMkdir(dir string) error {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return os.MkdirAll(dir, FilePermissions)
	}

	return nil
}

// TryCreate writes data to file unless the file already exists.
func TryCreate(file string, data []byte) error {
	if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
		return os.WriteFile(file, data, FilePermissions)
	}

	return nil
}
