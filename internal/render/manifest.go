package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kijinews/kiji/internal/models"
)

// ManifestFile is the manifest's filename inside the output directory.
const ManifestFile = "posts.json"

// WriteManifest writes the manifest JSON atomically: the document is
// staged in a temp file and renamed into place, so a crashed run never
// leaves a half-written posts.json behind.
func WriteManifest(path string, m models.Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".posts-*.json")
	if err != nil {
		return fmt.Errorf("creating temp manifest: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp manifest: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a previously written manifest. Both the object form
// ({updatedAt, posts}) and the legacy bare-array form are accepted. A
// missing file is reported via the underlying os error so callers can
// fall back (e.g. to the archive) with errors.Is(err, fs.ErrNotExist).
func LoadManifest(path string) (models.Manifest, error) {
	var m models.Manifest

	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("reading manifest %q: %w", path, err)
	}

	if strings.HasPrefix(strings.TrimSpace(string(data)), "[") {
		if err := json.Unmarshal(data, &m.Posts); err != nil {
			return m, fmt.Errorf("parsing manifest %q: %w", path, err)
		}
		return m, nil
	}

	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing manifest %q: %w", path, err)
	}
	return m, nil
}
