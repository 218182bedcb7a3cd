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
	"encoding/json"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/treeget/treeget/pkg/githuburl"
	"github.com/treeget/treeget/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// embeddedDataSelector locates the script block GitHub uses to ship the
// rendered tree page's JSON payload.
const embeddedDataSelector = `script[type="application/json"][data-target="react-app.embeddedData"]`

func init() {
	remote.Register("html", func(client *http.Client) remote.Lister { return NewHTMLLister(client) })
	remote.Register("api", func(client *http.Client) remote.Lister { return NewAPILister(client) })
}

// 🕸️ HTMLLister reads the directory listing embedded in the tree page
// markup. This is the reference strategy: it needs no token and works for
// any public repository, but is coupled to whatever GitHub currently serves.
type HTMLLister struct {
	client *http.Client
}

// NewHTMLLister creates an HTMLLister. client may be nil.
func NewHTMLLister(client *http.Client) *HTMLLister {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTMLLister{client: client}
}

// treePayload mirrors the fragment of the embedded JSON we project out.
// Pointer fields distinguish "key absent" from "zero entries".
type treePayload struct {
	Payload *struct {
		Tree *struct {
			Items *[]treeItem `json:"items"`
		} `json:"tree"`
	} `json:"payload"`
}

type treeItem struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
}

// ListDirectory fetches the tree page for loc and extracts its listing. A
// page without an embedded data block yields zero entries rather than an
// error: transient rendering variants legitimately omit it.
func (l *HTMLLister) ListDirectory(ctx context.Context, loc githuburl.Location) ([]remote.Entry, error) {
	logger := zerolog.Ctx(ctx)

	url := loc.ListingURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Errorf("creating request for %s: %w", url, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, errors.Errorf("%w: %s: %v", remote.ErrFetch, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("%w: %s: status %d", remote.ErrFetch, url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Errorf("%w: parsing page for %s: %v", remote.ErrMalformedListing, loc, err)
	}

	block := doc.Find(embeddedDataSelector).First()
	if block.Length() == 0 {
		logger.Debug().Stringer("dir", loc).Msg("no embedded data block on page, treating as empty")
		return nil, nil
	}

	var payload treePayload
	if err := json.Unmarshal([]byte(block.Text()), &payload); err != nil {
		return nil, errors.Errorf("%w: decoding embedded data for %s: %v", remote.ErrMalformedListing, loc, err)
	}
	if payload.Payload == nil || payload.Payload.Tree == nil || payload.Payload.Tree.Items == nil {
		return nil, errors.Errorf("%w: payload.tree.items missing for %s", remote.ErrMalformedListing, loc)
	}

	items := *payload.Payload.Tree.Items
	entries := make([]remote.Entry, 0, len(items))
	for _, it := range items {
		if it.Name == "" || it.Path == "" {
			return nil, errors.Errorf("%w: item without name or path for %s", remote.ErrMalformedListing, loc)
		}
		entries = append(entries, remote.Entry{
			Name: it.Name,
			Path: strings.Split(it.Path, "/"),
			Kind: remote.Kind(it.ContentType),
		})
	}

	logger.Debug().Stringer("dir", loc).Int("entries", len(entries)).Msg("listing extracted")
	return entries, nil
}
