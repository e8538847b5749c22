package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type FileInfo struct {
	Path  string
	Mtime int64
	Size  int64
}

// FindDumps returns the zip archives at root. A root that is itself a file
// is returned as is; a directory is walked recursively.
func FindDumps(root string) ([]FileInfo, error) {
	if root == "" {
		return nil, nil
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []FileInfo{fileInfo(root, info)}, nil
	}

	var files []FileInfo
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".zip") {
			return nil
		}
		files = append(files, fileInfo(path, info))
		return nil
	})
	if err != nil {
		return nil, err
	}

	// newest first
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Mtime > files[j].Mtime
	})
	return files, nil
}

func fileInfo(path string, info os.FileInfo) FileInfo {
	return FileInfo{
		Path:  path,
		Mtime: info.ModTime().Unix(),
		Size:  info.Size(),
	}
}
