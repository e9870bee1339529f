package media

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"learnhub/pkg/apierror"
)

// LocalStore keeps media on disk for development setups without a bucket.
// Files are served by the router under the public URL prefix.
type LocalStore struct {
	rootAbs   string
	publicURL string
}

func NewLocalStore(root string, publicURL string) (*LocalStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("media root cannot be empty")
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve media root: %w", err)
	}

	if err := os.MkdirAll(rootAbs, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}

	return &LocalStore{rootAbs: rootAbs, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (s *LocalStore) Root() string {
	return s.rootAbs
}

func (s *LocalStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	resolved, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", fmt.Errorf("prepare %q: %w", key, err)
	}

	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		return "", fmt.Errorf("write %q: %w", key, err)
	}

	return s.publicURL + "/" + key, nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	resolved, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(resolved); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

func (s *LocalStore) resolve(key string) (string, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(key), `\`, "/")
	if normalized == "" || strings.HasSuffix(normalized, "/") {
		return "", apierror.New("INVALID_PATH", "media key cannot be empty", key, http.StatusBadRequest)
	}

	if hasControlCharacters(normalized) {
		return "", apierror.New("INVALID_PATH", "media key contains invalid characters", key, http.StatusBadRequest)
	}

	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return "", apierror.New("PATH_TRAVERSAL", "path traversal attempt detected", key, http.StatusForbidden)
		}
	}

	resolved := filepath.Join(s.rootAbs, filepath.Clean(strings.TrimPrefix(normalized, "/")))
	if !strings.HasPrefix(resolved, s.rootAbs+string(filepath.Separator)) {
		return "", apierror.New("PATH_TRAVERSAL", "resolved path is outside media root", key, http.StatusForbidden)
	}

	return resolved, nil
}

func hasControlCharacters(value string) bool {
	for _, char := range value {
		if unicode.IsControl(char) {
			return true
		}
	}

	return false
}
