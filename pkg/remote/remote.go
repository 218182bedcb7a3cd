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

package remote

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/treeget/treeget/pkg/githuburl"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrFetch            = errors.New("fetch failed")
	ErrMalformedListing = errors.New("malformed directory listing")
	ErrUnknownEntryKind = errors.New("unknown entry kind")
)

// Kind classifies a directory listing entry. Values mirror the contentType
// tokens GitHub serves, so an unrecognized token survives as-is for error
// reporting.
type Kind string

const (
	KindFile             Kind = "file"
	KindDirectory        Kind = "directory"
	KindSymlinkFile      Kind = "symlink_file"
	KindSymlinkDirectory Kind = "symlink_directory"
)

// 📄 Entry is one row of a remote directory listing. It lives for exactly
// one traversal step.
type Entry struct {
	Name string
	Path []string // repository-root-relative segments
	Kind Kind
}

// 📂 Lister fetches the immediate children of one remote directory. The
// traversal only depends on this interface, so the extraction strategy
// (page scraping vs. a structured API) is swappable.
type Lister interface {
	ListDirectory(ctx context.Context, loc githuburl.Location) ([]Entry, error)
}

var registry = map[string]func(client *http.Client) Lister{}

// Register adds a listing strategy under the given name. Called from the
// implementing package's init.
func Register(name string, build func(client *http.Client) Lister) {
	registry[name] = build
}

// New builds the named listing strategy. client may be nil, in which case
// implementations fall back to http.DefaultClient.
func New(name string, client *http.Client) (Lister, error) {
	build, ok := registry[name]
	if !ok {
		options := make([]string, 0, len(registry))
		for k := range registry {
			options = append(options, k)
		}
		sort.Strings(options)
		return nil, errors.Errorf("listing strategy %q not found, options: %s", name, strings.Join(options, ", "))
	}
	return build(client), nil
}
