package texture

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// rank orders formats for the same stem: alpha-capable formats win.
var rank = map[string]int{
	".jpg":  1,
	".jpeg": 1,
	".gif":  2,
	".webp": 3,
	".tga":  4,
	".png":  5,
}

// Index maps lower-case file stems to paths.
type Index struct {
	entries map[string]string
}

// BuildIndex walks dir for image files. Unreadable entries are skipped.
func BuildIndex(dir string) *Index {
	idx := &Index{entries: make(map[string]string)}
	if dir == "" {
		return idx
	}
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		r, ok := rank[ext]
		if !ok {
			return nil
		}
		stem := strings.ToLower(strings.TrimSuffix(d.Name(), filepath.Ext(path)))
		if old, exists := idx.entries[stem]; !exists || r > rank[strings.ToLower(filepath.Ext(old))] {
			idx.entries[stem] = path
		}
		return nil
	})
	return idx
}

// ResolvePath returns the file for name. Directory prefixes, backslashes
// and extensions in name are ignored.
func (idx *Index) ResolvePath(name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
	path, ok := idx.entries[stem]
	return path, ok
}

// Len returns the number of indexed images.
func (idx *Index) Len() int {
	return len(idx.entries)
}
