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

package githuburl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treeget/treeget/pkg/githuburl"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantOwner   string
		wantRepo    string
		wantBranch  string
		wantPath    []string
		wantErr     error
		errContains string
	}{
		{
			name:       "valid_directory_url",
			input:      "https://github.com/keziah55/pick/tree/main/mediabrowser",
			wantOwner:  "keziah55",
			wantRepo:   "pick",
			wantBranch: "main",
			wantPath:   []string{"mediabrowser"},
		},
		{
			name:       "valid_nested_directory_url",
			input:      "https://github.com/keziah55/pick/tree/main/mediabrowser/templates/mediabrowser",
			wantOwner:  "keziah55",
			wantRepo:   "pick",
			wantBranch: "main",
			wantPath:   []string{"mediabrowser", "templates", "mediabrowser"},
		},
		{
			name:       "trailing_slash",
			input:      "https://github.com/owner/repo/tree/main/docs/",
			wantOwner:  "owner",
			wantRepo:   "repo",
			wantBranch: "main",
			wantPath:   []string{"docs"},
		},
		{
			name:        "not_a_github_url",
			input:       "https://some-other.url",
			wantErr:     githuburl.ErrNotGitHubURL,
			errContains: "not a github url",
		},
		{
			name:        "top_level_repo",
			input:       "https://github.com/username/repo",
			wantErr:     githuburl.ErrTopLevelRepo,
			errContains: "git clone https://github.com/username/repo",
		},
		{
			name:        "owner_only",
			input:       "https://github.com/username/",
			wantErr:     githuburl.ErrNotDirectoryURL,
			errContains: "does not point at a directory",
		},
		{
			name:        "three_segments",
			input:       "https://github.com/username/repo/tree",
			wantErr:     githuburl.ErrNotDirectoryURL,
			errContains: "does not point at a directory",
		},
		{
			name:        "not_tree_token",
			input:       "https://github.com/username/repo/not_tree/branch.dir",
			wantErr:     githuburl.ErrUnparsableURL,
			errContains: "unparsable",
		},
		{
			name:        "branch_root_without_path",
			input:       "https://github.com/username/repo/tree/main",
			wantErr:     githuburl.ErrNotDirectoryURL,
			errContains: "does not point at a directory",
		},
		{
			name:        "dot_dot_segment",
			input:       "https://github.com/username/repo/tree/main/../etc",
			wantErr:     githuburl.ErrUnparsableURL,
			errContains: "relative path segment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := githuburl.Parse(tt.input)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, loc.Owner, "owner should match")
			assert.Equal(t, tt.wantRepo, loc.Repo, "repo should match")
			assert.Equal(t, tt.wantBranch, loc.Branch, "branch should match")
			assert.Equal(t, tt.wantPath, loc.Path(), "path segments should match")
		})
	}
}

func TestListingURLRoundTrip(t *testing.T) {
	urls := []string{
		"https://github.com/keziah55/pick/tree/main/mediabrowser",
		"https://github.com/owner/repo/tree/v1.2.3/a/b/c",
		"https://github.com/a/b/tree/master/deep/ly/nest/ed/dir",
	}

	for _, u := range urls {
		loc, err := githuburl.Parse(u)
		require.NoError(t, err)
		assert.Equal(t, u, loc.ListingURL(), "parse then reconstruct should round-trip")

		again, err := githuburl.Parse(loc.ListingURL())
		require.NoError(t, err)
		assert.Equal(t, loc, again)
	}
}

func TestRawContentURL(t *testing.T) {
	loc, err := githuburl.Parse("https://github.com/owner/repo/tree/main/docs/guide")
	require.NoError(t, err)

	assert.Equal(t, "https://raw.githubusercontent.com/owner/repo/main/docs/guide", loc.RawContentURL())
}

func TestJoinChild(t *testing.T) {
	loc, err := githuburl.Parse("https://github.com/owner/repo/tree/main/docs")
	require.NoError(t, err)

	child := loc.JoinChild("x")
	assert.Equal(t, []string{"docs", "x"}, child.Path())

	base, err := child.Basename()
	require.NoError(t, err)
	assert.Equal(t, "x", base)

	// the parent is untouched
	assert.Equal(t, []string{"docs"}, loc.Path())

	grandchild := child.JoinChild("y")
	assert.Equal(t, []string{"docs", "x", "y"}, grandchild.Path())
	assert.Equal(t, []string{"docs", "x"}, child.Path())
}

func TestBasenameEmptyPath(t *testing.T) {
	_, err := githuburl.Location{Owner: "o", Repo: "r", Branch: "main"}.Basename()
	require.Error(t, err)
	assert.ErrorIs(t, err, githuburl.ErrEmptyPath)
}

func TestRelativePath(t *testing.T) {
	requested, err := githuburl.Parse("https://github.com/owner/repo/tree/main/mediabrowser/templates")
	require.NoError(t, err)

	tests := []struct {
		name     string
		fullPath []string
		policy   githuburl.PathPolicy
		want     []string
		wantErr  error
	}{
		{
			name:     "root_relative_strips_leading_segment",
			fullPath: []string{"mediabrowser", "templates", "index.html"},
			policy:   githuburl.RootRelative,
			want:     []string{"templates", "index.html"},
		},
		{
			name:     "request_relative_strips_requested_prefix",
			fullPath: []string{"mediabrowser", "templates", "index.html"},
			policy:   githuburl.RequestRelative,
			want:     []string{"index.html"},
		},
		{
			name:     "request_relative_nested",
			fullPath: []string{"mediabrowser", "templates", "sub", "dir", "page.html"},
			policy:   githuburl.RequestRelative,
			want:     []string{"sub", "dir", "page.html"},
		},
		{
			name:     "prefix_mismatch",
			fullPath: []string{"somewhere", "else", "index.html"},
			policy:   githuburl.RequestRelative,
			wantErr:  githuburl.ErrPrefixMismatch,
		},
		{
			name:     "full_path_shorter_than_prefix",
			fullPath: []string{"mediabrowser"},
			policy:   githuburl.RequestRelative,
			wantErr:  githuburl.ErrPrefixMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := githuburl.RelativePath(tt.fullPath, tt.policy, requested)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
