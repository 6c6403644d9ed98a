// Package file reads order snapshots exported to disk. It backs offline use
// and demo setups where no shop credentials are configured.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fekuna/omnipos-fulfillment-service/internal/source"
	"gopkg.in/yaml.v3"
)

type Source struct {
	path string
}

func New(path string) *Source {
	return &Source{path: path}
}

// FetchUnfulfilled reads the snapshot on every call so edits are picked up by
// the next sync.
func (s *Source) FetchUnfulfilled(ctx context.Context) (*source.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap source.Snapshot
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &snap)
	default:
		err = json.Unmarshal(data, &snap)
	}
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}

	snap.Orders = source.Normalize(snap.Orders)
	return &snap, nil
}
