package util

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSourceFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vars: [p]\n"), 0o644))

	assert.True(t, FileExists(path))
	assert.False(t, FileExists(dir))

	data, err := ReadSource(path)
	require.NoError(t, err)
	assert.Equal(t, "vars: [p]\n", string(data))

	_, err = ReadSource(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestReadSourceURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/p.yaml" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "vars: [q]\n")
	}))
	defer srv.Close()

	assert.True(t, IsURL(srv.URL))
	data, err := ReadSource(srv.URL + "/p.yaml")
	require.NoError(t, err)
	assert.Equal(t, "vars: [q]\n", string(data))

	_, err = ReadSource(srv.URL + "/other.yaml")
	assert.Error(t, err)
}
