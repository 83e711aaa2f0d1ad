package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"g3d-renderer/internal/batch"
	"g3d-renderer/internal/drawlist"
)

// settle is how long a file must be quiet before it is re-rendered; editors
// often write a file in several steps.
const settle = 150 * time.Millisecond

// watchInputs re-renders draw lists under inputs as they change, until ctx
// is done.
func watchInputs(ctx context.Context, bc batch.Config, inputs []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, in := range inputs {
		if err := addWatch(w, in); err != nil {
			return err
		}
	}
	fmt.Println("Watching for changes (Ctrl-C to stop)")

	pending := make(map[string]bool)
	timer := time.NewTimer(settle)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					addWatch(w, ev.Name)
					continue
				}
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) || !drawlist.IsDrawList(ev.Name) {
				continue
			}
			pending[filepath.Clean(ev.Name)] = true
			timer.Reset(settle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Warning: watch: %v\n", err)
		case <-timer.C:
			jobs, err := changedJobs(inputs, pending)
			clear(pending)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
				continue
			}
			if len(jobs) > 0 {
				render(ctx, bc, jobs, false)
			}
		}
	}
}

// addWatch watches a directory tree, or the directory holding a file.
func addWatch(w *fsnotify.Watcher, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.Add(filepath.Dir(path))
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		return w.Add(p)
	})
}

// changedJobs finds the jobs for the pending paths, named as a full run
// would name them.
func changedJobs(inputs []string, pending map[string]bool) ([]batch.Job, error) {
	all, err := batch.FindJobs(inputs)
	if err != nil {
		return nil, err
	}
	var jobs []batch.Job
	for _, j := range all {
		if pending[filepath.Clean(j.Path)] {
			jobs = append(jobs, j)
		}
	}
	return jobs, nil
}
