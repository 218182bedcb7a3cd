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

package status

import (
	"fmt"
	"io"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
)

// 📢 Reporter receives traversal events. The core packages stay silent and
// testable; formatting and color belong to the implementation behind this
// interface.
type Reporter interface {
	// FileWritten is emitted once per file successfully written to disk.
	FileWritten(dest string, size int64)
	// Skipped is emitted for entries deliberately not materialized
	// (symlinks, excluded paths). reason is a short token like "symlink".
	Skipped(remotePath string, reason string)
	// Failed is emitted when one remote path could not be materialized.
	Failed(remotePath string, err error)
}

// Noop discards all events.
type Noop struct{}

func (Noop) FileWritten(string, int64) {}

func (Noop) Skipped(string, string) {}

func (Noop) Failed(string, error) {}

// 🎨 Console prints one line per event, colored, with an optional running
// byte-count bar underneath.
type Console struct {
	mu         sync.Mutex
	out        io.Writer
	bar        *pb.ProgressBar
	totalBytes int64
}

// NewConsole creates a Console writing to out. With progress enabled a
// byte-count bar tracks the cumulative download size; the total is unknown
// up front, so the bar grows as files land.
func NewConsole(out io.Writer, progress bool) *Console {
	c := &Console{out: out}
	if progress {
		c.bar = pb.Full.Start64(0)
		c.bar.SetWriter(out)
	}
	return c
}

func (c *Console) FileWritten(dest string, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bar != nil {
		c.totalBytes += size
		c.bar.SetTotal(c.totalBytes)
		c.bar.Add64(size)
	}
	fmt.Fprintf(c.out, "%s %s\n", color.GreenString("wrote"), dest)
}

func (c *Console) Skipped(remotePath string, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.out, color.YellowString("skipping %s '%s'", reason, remotePath))
}

func (c *Console) Failed(remotePath string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "%s %s: %v\n", color.RedString("failed"), remotePath, err)
}

// Finish stops the progress bar, if any.
func (c *Console) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bar != nil {
		c.bar.Finish()
	}
}
