// Package export reads and writes the JSON backup format. A backup is one
// JSON object holding the entire key space, so importing it restores
// settings, stats and the per-domain counters in one step.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/doomscrollingfix/dsfix/internal/clock"
	"github.com/doomscrollingfix/dsfix/internal/storage"
)

// Filename returns the conventional backup file name for the given day.
func Filename(now time.Time) string {
	return fmt.Sprintf("doomscrollingfix-settings-%s.json", clock.DateOf(now))
}

// Export writes the store's full key space to w as an indented JSON object.
func Export(ctx context.Context, store storage.Store, w io.Writer) error {
	snapshot, err := store.Dump(ctx)
	if err != nil {
		return fmt.Errorf("dump store: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// Import restores a backup read from r. The payload must be a JSON object;
// anything else is rejected wholesale without touching the store, as is any
// object that fails snapshot validation.
func Import(ctx context.Context, store storage.Store, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("backup is not a JSON object")
	}

	var snapshot map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &snapshot); err != nil {
		return fmt.Errorf("decode backup: %w", err)
	}

	if err := store.Restore(ctx, snapshot); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}
	return nil
}
