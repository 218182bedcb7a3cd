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

package walker

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/treeget/treeget/pkg/githuburl"
	"github.com/treeget/treeget/pkg/remote"
	"github.com/treeget/treeget/pkg/status"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// Options configures one traversal. It is written once by the caller and
// never mutated during the walk.
type Options struct {
	// OutputRoot is the local directory files are materialized under.
	OutputRoot string
	// IgnoreSubdirs stops the walk from descending into subdirectories.
	IgnoreSubdirs bool
	// Policy selects how remote paths map to local ones.
	Policy githuburl.PathPolicy
	// Exclude holds doublestar globs matched against repository-root-
	// relative entry paths. Matching files are skipped; matching
	// directories are not descended into.
	Exclude []string
	// Concurrency bounds parallel file downloads. Values <= 1 reproduce
	// the sequential depth-first order of the reference behavior.
	Concurrency int
}

// Failure records one remote path that could not be materialized.
type Failure struct {
	RemotePath string
	Err        error
}

// Result is the outcome of a whole traversal. A run with failures still
// reports the files that did land; partial success is never silently
// discarded.
type Result struct {
	FilesWritten int
	Failures     []Failure
}

// FileFetcher is satisfied by download.Fetcher.
type FileFetcher interface {
	FetchFile(ctx context.Context, rawURL string, dest string) error
}

// 🚶 Walker drives the recursive traversal. It resolves child locations
// through the URL model, asks the Lister for each directory's entries, and
// hands file entries to the FileFetcher. It is safe for repeated Walk calls.
type Walker struct {
	lister   remote.Lister
	fetcher  FileFetcher
	reporter status.Reporter
}

// New creates a Walker. reporter may be nil to discard notifications.
func New(lister remote.Lister, fetcher FileFetcher, reporter status.Reporter) *Walker {
	if reporter == nil {
		reporter = status.Noop{}
	}
	return &Walker{lister: lister, fetcher: fetcher, reporter: reporter}
}

// Walk traverses the directory at loc depth-first and materializes its
// files under opts.OutputRoot. Per-path errors are collected into the
// Result rather than aborting the run; the returned error is non-nil only
// when the context is cancelled.
func (w *Walker) Walk(ctx context.Context, loc githuburl.Location, opts Options) (Result, error) {
	t := &traversal{
		walker:    w,
		opts:      opts,
		requested: loc,
	}
	if opts.Concurrency > 1 {
		t.grp = &errgroup.Group{}
		t.grp.SetLimit(opts.Concurrency)
	}

	err := t.walkDir(ctx, loc)
	if t.grp != nil {
		// group funcs record their own failures and never return errors
		_ = t.grp.Wait()
	}

	return t.result, err
}

// traversal carries the state of one Walk call.
type traversal struct {
	walker    *Walker
	opts      Options
	requested githuburl.Location
	grp       *errgroup.Group

	mu     sync.Mutex
	result Result
}

func (t *traversal) walkDir(ctx context.Context, loc githuburl.Location) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := zerolog.Ctx(ctx)

	entries, err := t.walker.lister.ListDirectory(ctx, loc)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		t.fail(strings.Join(loc.Path(), "/"), err)
		return nil
	}
	logger.Debug().Stringer("dir", loc).Int("entries", len(entries)).Msg("walking directory")

	for _, entry := range entries {
		rel := strings.Join(entry.Path, "/")
		if t.excluded(rel) {
			t.walker.reporter.Skipped(rel, "excluded path")
			continue
		}

		switch entry.Kind {
		case remote.KindFile:
			dest, err := t.destination(entry)
			if err != nil {
				t.fail(rel, err)
				continue
			}
			t.submit(ctx, loc.JoinChild(entry.Name).RawContentURL(), dest, rel)
		case remote.KindDirectory:
			if t.opts.IgnoreSubdirs {
				continue
			}
			if err := t.walkDir(ctx, loc.JoinChild(entry.Name)); err != nil {
				return err
			}
		case remote.KindSymlinkFile, remote.KindSymlinkDirectory:
			// never followed, never an error
			t.walker.reporter.Skipped(rel, "symlink")
		default:
			// the remote format changed in a way the model does not
			// understand; stop this directory, keep sibling work
			t.fail(rel, errors.Errorf("%w: %q", remote.ErrUnknownEntryKind, string(entry.Kind)))
			return nil
		}
	}

	return nil
}

// destination maps entry's remote path onto a local path under OutputRoot.
func (t *traversal) destination(entry remote.Entry) (string, error) {
	segs, err := githuburl.RelativePath(entry.Path, t.opts.Policy, t.requested)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{t.opts.OutputRoot}, segs...)...), nil
}

// submit downloads one file, inline when sequential, on the bounded group
// otherwise.
func (t *traversal) submit(ctx context.Context, rawURL string, dest string, rel string) {
	if t.grp == nil {
		t.fetchOne(ctx, rawURL, dest, rel)
		return
	}
	t.grp.Go(func() error {
		t.fetchOne(ctx, rawURL, dest, rel)
		return nil
	})
}

func (t *traversal) fetchOne(ctx context.Context, rawURL string, dest string, rel string) {
	if ctx.Err() != nil {
		return
	}
	if err := t.walker.fetcher.FetchFile(ctx, rawURL, dest); err != nil {
		t.fail(rel, err)
		return
	}

	t.mu.Lock()
	t.result.FilesWritten++
	t.mu.Unlock()
}

func (t *traversal) excluded(rel string) bool {
	for _, pattern := range t.opts.Exclude {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func (t *traversal) fail(remotePath string, err error) {
	t.walker.reporter.Failed(remotePath, err)

	t.mu.Lock()
	t.result.Failures = append(t.result.Failures, Failure{RemotePath: remotePath, Err: err})
	t.mu.Unlock()
}
