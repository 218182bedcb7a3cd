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

package githuburl

import (
	"fmt"
	"slices"
	"strings"

	"gitlab.com/tozd/go/errors"
)

const (
	host    = "https://github.com"
	rawHost = "https://raw.githubusercontent.com"
)

var (
	ErrNotGitHubURL    = errors.New("not a github url")
	ErrTopLevelRepo    = errors.New("top-level repository url")
	ErrNotDirectoryURL = errors.New("not a directory url")
	ErrUnparsableURL   = errors.New("unparsable github url")
	ErrEmptyPath       = errors.New("location has no path")
	ErrPrefixMismatch  = errors.New("entry path does not start with the requested prefix")
)

// PathPolicy selects how an entry's repository-root-relative path maps to a
// local destination path.
type PathPolicy int

const (
	// RequestRelative strips the originally requested directory's path
	// prefix, so entries land directly under the output root. This is the
	// default policy.
	RequestRelative PathPolicy = iota
	// RootRelative strips only the leading top-level segment, preserving
	// the rest of the repository layout under the output root.
	RootRelative
)

// String returns a string representation of PathPolicy
func (p PathPolicy) String() string {
	switch p {
	case RequestRelative:
		return "request-relative"
	case RootRelative:
		return "root-relative"
	default:
		return "unknown"
	}
}

// 📍 Location is an immutable reference to a directory inside a GitHub
// repository. Derived locations are new values; a Location is never mutated.
type Location struct {
	Owner  string
	Repo   string
	Branch string
	path   []string
}

// 🔍 Parse turns a github.com tree URL into a Location. No network access
// happens here; it is pure string processing.
func Parse(raw string) (Location, error) {
	if !strings.HasPrefix(raw, host) {
		return Location{}, errors.Errorf("%w: %q", ErrNotGitHubURL, raw)
	}

	parts := splitSegments(strings.TrimPrefix(raw, host))
	switch {
	case len(parts) == 2:
		return Location{}, errors.Errorf("%w: %q names a whole repository; try: git clone %s", ErrTopLevelRepo, raw, raw)
	case len(parts) < 4:
		return Location{}, errors.Errorf("%w: %q does not point at a directory within a repository", ErrNotDirectoryURL, raw)
	}

	if parts[2] != "tree" {
		return Location{}, errors.Errorf("%w: %q", ErrUnparsableURL, raw)
	}

	if len(parts) == 4 {
		// owner/repo/tree/branch names a branch root, not a subdirectory
		return Location{}, errors.Errorf("%w: %q does not point at a directory within a repository", ErrNotDirectoryURL, raw)
	}

	for _, seg := range parts[4:] {
		if seg == "." || seg == ".." {
			return Location{}, errors.Errorf("%w: %q contains a relative path segment", ErrUnparsableURL, raw)
		}
	}

	return Location{
		Owner:  parts[0],
		Repo:   parts[1],
		Branch: parts[3],
		path:   parts[4:],
	}, nil
}

// Path returns a copy of the path segments below the repository root.
func (l Location) Path() []string {
	return slices.Clone(l.path)
}

// ListingURL reconstructs the human-facing tree page URL for this location.
func (l Location) ListingURL() string {
	return fmt.Sprintf("%s/%s/%s/tree/%s/%s", host, l.Owner, l.Repo, l.Branch, strings.Join(l.path, "/"))
}

// RawContentURL returns the URL that serves this location's unrendered
// bytes. raw.githubusercontent.com is a dedicated service; appending
// ?raw=true to the page URL redirects inconsistently and is not used.
func (l Location) RawContentURL() string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", rawHost, l.Owner, l.Repo, l.Branch, strings.Join(l.path, "/"))
}

// Basename returns the final path segment.
func (l Location) Basename() (string, error) {
	if len(l.path) == 0 {
		return "", errors.Errorf("%w: %s/%s", ErrEmptyPath, l.Owner, l.Repo)
	}
	return l.path[len(l.path)-1], nil
}

// JoinChild returns a new Location with name appended as the final path
// segment. The receiver is left untouched.
func (l Location) JoinChild(name string) Location {
	child := l
	child.path = append(slices.Clone(l.path), name)
	return child
}

// String returns owner/repo@branch:path, used in log fields and error text.
func (l Location) String() string {
	return fmt.Sprintf("%s/%s@%s:%s", l.Owner, l.Repo, l.Branch, strings.Join(l.path, "/"))
}

// 🗺️ RelativePath maps a repository-root-relative entry path onto the local
// destination segments under the given policy. requested is the directory
// the whole run was started from.
func RelativePath(fullPath []string, policy PathPolicy, requested Location) ([]string, error) {
	switch policy {
	case RootRelative:
		if len(fullPath) == 0 {
			return nil, nil
		}
		return slices.Clone(fullPath[1:]), nil
	case RequestRelative:
		prefix := requested.path
		if len(fullPath) < len(prefix) || !slices.Equal(fullPath[:len(prefix)], prefix) {
			// the listing disagrees with the request that produced it
			return nil, errors.Errorf("%w: %q does not begin with %q",
				ErrPrefixMismatch, strings.Join(fullPath, "/"), strings.Join(prefix, "/"))
		}
		return slices.Clone(fullPath[len(prefix):]), nil
	default:
		return nil, errors.Errorf("unknown path policy %d", policy)
	}
}

// splitSegments splits a URL path on "/", discarding empty segments.
func splitSegments(s string) []string {
	parts := []string{}
	for _, p := range strings.Split(s, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
