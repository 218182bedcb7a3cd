// Copyright 2026 treeget contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no explicit config path is given.
const DefaultPath = ".treeget.yaml"

// File holds on-disk defaults for the command line flags. Flags set
// explicitly on the command line always win over these values.
type File struct {
	Output        string   `yaml:"output"`
	IgnoreSubdirs bool     `yaml:"ignore_subdirs"`
	FullPath      bool     `yaml:"full_path"`
	Via           string   `yaml:"via"`
	Exclude       []string `yaml:"exclude"`
	Concurrency   int      `yaml:"concurrency"`
}

// Load reads the YAML defaults file at path. A missing file at the default
// location is not an error; a missing explicitly-requested file is.
func Load(ctx context.Context, path string) (*File, error) {
	logger := zerolog.Ctx(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultPath {
			logger.Debug().Str("path", path).Msg("no config file, using flag defaults")
			return &File{}, nil
		}
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		// io.EOF means an empty file, which is a valid all-defaults config
		return nil, errors.Errorf("parsing %s: %w", path, err)
	}

	if err := validate(&f); err != nil {
		return nil, errors.Errorf("validating %s: %w", path, err)
	}

	logger.Debug().Str("path", path).Msg("config file loaded")
	return &f, nil
}

func validate(f *File) error {
	switch f.Via {
	case "", "html", "api":
	default:
		return errors.Errorf("via must be \"html\" or \"api\", got %q", f.Via)
	}
	if f.Concurrency < 0 {
		return errors.Errorf("concurrency must not be negative, got %d", f.Concurrency)
	}
	return nil
}
