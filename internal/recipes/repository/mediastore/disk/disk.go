package disk

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yyzahran/Recipe-App/internal/pkg/config"
)

const recipeImageDir = "uploads/recipe"

var ErrBadKey = errors.New("media key escapes media dir")

// MediaStore keeps uploaded files on disk under a single media directory,
// which is mounted as a durable volume in the compose setup.
type MediaStore struct {
	dir     string
	baseURL string
}

func New(cfg config.Media) (MediaStore, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "./media"
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "/media"
	}

	if err := os.MkdirAll(filepath.Join(dir, recipeImageDir), 0o755); err != nil {
		return MediaStore{}, fmt.Errorf("create media dir error: %w", err)
	}

	return MediaStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// SaveRecipeImage writes the image under a fresh uuid name, keeping the
// extension, and returns the storage key (uploads/recipe/<uuid><ext>).
func (ms MediaStore) SaveRecipeImage(data []byte, ext string) (string, error) {
	key := filepath.ToSlash(filepath.Join(recipeImageDir, uuid.NewString()+ext))

	if err := os.WriteFile(filepath.Join(ms.dir, key), data, 0o644); err != nil { //nolint:gosec
		return "", fmt.Errorf("write media file error: %w", err)
	}

	return key, nil
}

// Remove deletes a stored file. A missing file is not an error.
func (ms MediaStore) Remove(key string) error {
	path := filepath.Join(ms.dir, filepath.FromSlash(key))

	rel, err := filepath.Rel(ms.dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ErrBadKey
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove media file error: %w", err)
	}

	return nil
}

// URL maps a storage key to the path it is served under.
func (ms MediaStore) URL(key string) string {
	if key == "" {
		return ""
	}

	return ms.baseURL + "/" + key
}

func (ms MediaStore) Dir() string {
	return ms.dir
}
