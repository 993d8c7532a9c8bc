package util

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ReadSource reads a local file, or fetches path when it is a URL.
func ReadSource(path string) ([]byte, error) {
	if IsURL(path) {
		return Fetch(path)
	}
	if !FileExists(path) {
		return nil, errors.Errorf("no such file: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "ReadFile")
	}
	return data, nil
}
