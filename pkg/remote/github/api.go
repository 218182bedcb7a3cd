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

package github

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/treeget/treeget/pkg/githuburl"
	"github.com/treeget/treeget/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// 🔌 APILister lists a directory through the GitHub contents API. It is the
// alternative to page scraping; the client is anonymous and subject to the
// unauthenticated rate limit.
type APILister struct {
	client *github.Client
}

// NewAPILister creates an APILister. httpClient may be nil.
func NewAPILister(httpClient *http.Client) *APILister {
	return &APILister{client: github.NewClient(httpClient)}
}

// ListDirectory fetches the immediate children of loc via the contents API.
func (l *APILister) ListDirectory(ctx context.Context, loc githuburl.Location) ([]remote.Entry, error) {
	dir := strings.Join(loc.Path(), "/")
	opts := &github.RepositoryContentGetOptions{Ref: loc.Branch}

	_, contents, _, err := l.client.Repositories.GetContents(ctx, loc.Owner, loc.Repo, dir, opts)
	if err != nil {
		return nil, errors.Errorf("%w: listing %s: %v", remote.ErrFetch, loc, err)
	}
	if contents == nil {
		// GetContents returns a single object when the path names a file
		return nil, errors.Errorf("%w: %s is not a directory", remote.ErrMalformedListing, loc)
	}

	entries := make([]remote.Entry, 0, len(contents))
	for _, c := range contents {
		name := c.GetName()
		path := c.GetPath()
		if name == "" || path == "" {
			return nil, errors.Errorf("%w: item without name or path for %s", remote.ErrMalformedListing, loc)
		}
		entries = append(entries, remote.Entry{
			Name: name,
			Path: strings.Split(path, "/"),
			Kind: apiKind(c),
		})
	}

	return entries, nil
}

// apiKind translates the contents API type tokens onto the page tokens the
// rest of the system speaks. The API does not distinguish symlinked
// directories from symlinked files; both are skipped either way.
func apiKind(c *github.RepositoryContent) remote.Kind {
	switch c.GetType() {
	case "file":
		return remote.KindFile
	case "dir":
		return remote.KindDirectory
	case "symlink":
		return remote.KindSymlinkFile
	default:
		return remote.Kind(c.GetType())
	}
}
