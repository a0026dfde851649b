package brew

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/whooof/brewsty/pkg/model"
)

// CleanupPreview runs a cleanup dry run and reports what would be
// removed with on-disk sizes. pruneAll previews old installed versions
// instead of the download cache.
func (b *Brew) CleanupPreview(ctx context.Context, pruneAll bool) (model.CleanupPreview, error) {
	args := []string{"cleanup", "-s", "--dry-run"}
	if pruneAll {
		args = []string{"cleanup", "--prune=all", "--dry-run"}
	}
	raw, err := b.brewOutput(ctx, args...)
	if err != nil {
		return model.CleanupPreview{}, err
	}
	return parseCleanupPreview(raw), nil
}

func parseCleanupPreview(raw string) model.CleanupPreview {
	var preview model.CleanupPreview
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "==>") {
			continue
		}
		path, ok := strings.CutPrefix(trimmed, "Would remove: ")
		if !ok {
			continue
		}
		// brew appends a size hint in parentheses for some entries.
		if i := strings.LastIndex(path, " ("); i > 0 && strings.HasSuffix(path, ")") {
			path = path[:i]
		}
		size := pathSize(path)
		preview.TotalSize += size
		preview.Items = append(preview.Items, model.CleanupItem{Path: path, Size: size})
	}
	return preview
}

func pathSize(path string) uint64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	if !info.IsDir() {
		return uint64(info.Size())
	}
	var total uint64
	filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if fi, err := d.Info(); err == nil {
			total += uint64(fi.Size())
		}
		return nil
	})
	return total
}
