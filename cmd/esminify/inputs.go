package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

const defaultIgnoreFile = ".esminifyignore"

var scriptExtensions = map[string]bool{
	".js":  true,
	".mjs": true,
	".cjs": true,
}

func isHidden(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".")
}

// Loads the ignore patterns. An explicit path must exist. Otherwise the
// default file in the root is used when present.
func loadIgnore(root string, ignorePath string) (*gitignore.GitIgnore, error) {
	if ignorePath == "" {
		ignorePath = filepath.Join(root, defaultIgnoreFile)
		if _, err := os.Stat(ignorePath); err != nil {
			return nil, nil
		}
	}
	ignore, err := gitignore.CompileIgnoreFile(ignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read ignore file: %w", err)
	}
	return ignore, nil
}

// Expands directories into the script files they contain. Files named
// directly are always kept. Files found by walking skip hidden entries,
// "node_modules" and anything the ignore patterns match relative to the root.
func expandInputs(root string, args []string, ignore *gitignore.GitIgnore) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("Could not read %q: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		var found []string
		err = filepath.WalkDir(arg, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if entry.IsDir() {
				if path != arg && (isHidden(entry.Name()) || entry.Name() == "node_modules") {
					return filepath.SkipDir
				}
				return nil
			}

			if isHidden(entry.Name()) || !scriptExtensions[filepath.Ext(path)] {
				return nil
			}

			if ignore != nil {
				if absPath, err := filepath.Abs(path); err == nil {
					if rel, err := filepath.Rel(root, absPath); err == nil && ignore.MatchesPath(filepath.ToSlash(rel)) {
						return nil
					}
				}
			}

			found = append(found, path)
			return nil
		})
		if err != nil {
			return nil, err
		}

		sort.Strings(found)
		files = append(files, found...)
	}

	return files, nil
}
