package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"g3d-renderer/internal/drawlist"
)

// Job is one draw-list file to render. Name is the output path relative to
// the output directory, without extension.
type Job struct {
	Name string `json:"name"`
	Path string `json:"input"`
}

// FindJobs expands files and directories into jobs. Directories are walked
// for draw lists; their jobs are named by path relative to the directory.
func FindJobs(paths []string) ([]Job, error) {
	var jobs []Job
	seen := make(map[string]bool)
	add := func(name, path string) {
		if !seen[path] {
			seen[path] = true
			jobs = append(jobs, Job{Name: name, Path: path})
		}
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("batch: stat %s: %w", p, err)
		}
		if !info.IsDir() {
			add(stem(filepath.Base(p)), p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !drawlist.IsDrawList(path) {
				return nil
			}
			rel, err := filepath.Rel(p, path)
			if err != nil {
				return err
			}
			add(filepath.ToSlash(stem(rel)), path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("batch: walk %s: %w", p, err)
		}
	}
	return jobs, nil
}

func stem(p string) string {
	return strings.TrimSuffix(p, filepath.Ext(p))
}
