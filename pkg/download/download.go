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

package download

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/treeget/treeget/pkg/remote"
	"github.com/treeget/treeget/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// ErrIO marks local filesystem failures, as opposed to transport ones.
var ErrIO = errors.New("filesystem error")

// 📥 Fetcher retrieves raw file content over HTTP and writes it to disk. It
// knows nothing about the tree being traversed.
type Fetcher struct {
	client   *http.Client
	reporter status.Reporter
}

// New creates a Fetcher. client may be nil; reporter may be nil to discard
// notifications.
func New(client *http.Client, reporter status.Reporter) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if reporter == nil {
		reporter = status.Noop{}
	}
	return &Fetcher{client: client, reporter: reporter}
}

// FetchFile downloads rawURL into dest, creating any missing parent
// directories first. An existing file at dest is overwritten without
// confirmation: re-running the tool over the same output root is
// idempotent by design, not an accident.
func (f *Fetcher) FetchFile(ctx context.Context, rawURL string, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errors.Errorf("creating request for %s: %w", rawURL, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return errors.Errorf("%w: %s: %v", remote.ErrFetch, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("%w: %s: status %d", remote.ErrFetch, rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Errorf("%w: reading %s: %v", remote.ErrFetch, rawURL, err)
	}

	// MkdirAll succeeds when the directory already exists, which also
	// settles the create-parent race between concurrent downloads.
	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Errorf("%w: creating directory %s: %v", ErrIO, dir, err)
		}
	}

	if err := os.WriteFile(dest, body, 0o644); err != nil {
		return errors.Errorf("%w: writing %s: %v", ErrIO, dest, err)
	}

	f.reporter.FileWritten(dest, int64(len(body)))
	return nil
}
