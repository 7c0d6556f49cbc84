package dispatcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/utils"
)

// Discover lists the regular files in dir whose extension matches ext case-insensitively,
// skipping any whose stem already ends in suffix. The result is sorted.
func Discover(dir, ext, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("dispatcher: read %s: %w", dir, err)
	}
	ext = strings.ToLower(ext)

	eligible := utils.Filter(entries, func(e os.DirEntry) bool {
		if e.IsDir() || !e.Type().IsRegular() {
			return false
		}
		name := e.Name()
		if strings.ToLower(filepath.Ext(name)) != ext {
			return false
		}
		return suffix == "" || !strings.HasSuffix(strings.TrimSuffix(name, filepath.Ext(name)), suffix)
	})

	out := make([]string, 0, len(eligible))
	for _, e := range eligible {
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// Discover lists the eligible inputs in dir for this dispatcher's configuration.
func (d *Dispatcher) Discover(dir string) ([]string, error) {
	return Discover(dir, d.cfg.InputExtension(), d.cfg.OutputSuffix())
}
