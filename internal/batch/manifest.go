package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestEntry describes one rendered frame.
type ManifestEntry struct {
	Name        string `json:"name"`
	Input       string `json:"input"`
	Image       string `json:"image,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	Translucent bool   `json:"translucent,omitempty"`
	Error       string `json:"error,omitempty"`
	Millis      int64  `json:"ms"`
}

// WriteManifest writes results as JSON. Image paths are relative to the
// manifest's directory.
func WriteManifest(path string, results []Result) error {
	dir := filepath.Dir(path)
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		e := ManifestEntry{
			Name:        r.Name,
			Input:       r.Path,
			Width:       r.Width,
			Height:      r.Height,
			Translucent: r.Translucent,
			Error:       r.Error,
			Millis:      r.Elapsed.Milliseconds(),
		}
		if r.Success {
			rel, err := filepath.Rel(dir, r.Output)
			if err != nil {
				rel = r.Output
			}
			e.Image = filepath.ToSlash(rel)
		}
		entries[i] = e
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("batch: write manifest: %w", err)
	}
	return nil
}
