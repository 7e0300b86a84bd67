package credential

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadSecrets aggregates credentials from the inline config list and,
// if set, a directory of one-secret-per-file entries, deduping by
// derived id. Directory entries are read in sorted filename order so
// pool insertion order stays stable across restarts.
func LoadSecrets(inline []string, dir string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string

	add := func(secret string) {
		secret = strings.TrimSpace(secret)
		if secret == "" {
			return
		}
		id := IDFor(secret)
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		out = append(out, secret)
	}

	for _, s := range inline {
		add(s)
	}

	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("credential: read dir %s: %w", dir, err)
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)
		for _, name := range names {
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return nil, fmt.Errorf("credential: read %s: %w", name, err)
			}
			add(string(data))
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("credential: no credentials found in config or %s", dir)
	}
	return out, nil
}
