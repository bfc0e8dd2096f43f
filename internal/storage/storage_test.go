package storage

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCropName_Unique(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	pattern := regexp.MustCompile(`^1700000000123-[0-9a-f-]{36}\.png$`)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		name := NewCropName(now, ".png")
		require.Regexp(t, pattern, name)
		require.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true
	}
}

func TestLocalCropStore_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public", "crops")
	store, err := NewLocalCropStore(dir, "/crops/")
	require.NoError(t, err)
	assert.Equal(t, "/crops", store.URLPrefix())

	url, err := store.Save(context.Background(), "a.png", []byte("data"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/crops/a.png", url)

	got, err := os.ReadFile(filepath.Join(dir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
}

func TestLocalCropStore_NeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalCropStore(dir, "/crops")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "a.png", []byte("first"), "image/png")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "a.png", []byte("second"), "image/png")
	require.Error(t, err)

	got, err := os.ReadFile(filepath.Join(dir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)
}

func TestLocalCropStore_RejectsPaths(t *testing.T) {
	store, err := NewLocalCropStore(t.TempDir(), "/crops")
	require.NoError(t, err)

	for _, name := range []string{"", "../escape.png", "sub/dir.png"} {
		_, err := store.Save(context.Background(), name, []byte("x"), "image/png")
		assert.Error(t, err, "name %q", name)
	}
}

func TestLocalCropStore_ConcurrentSaves(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalCropStore(dir, "/crops")
	require.NoError(t, err)

	var wg sync.WaitGroup
	now := time.Now()
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Save(context.Background(), NewCropName(now, ".png"), []byte("x"), "image/png")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}

func newFileHeader(t *testing.T, filename string, data []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["image"][0]
}

func TestTempUploadStore_SaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewTempUploadStore(dir)
	require.NoError(t, err)

	path, err := store.Save(newFileHeader(t, "screen.PNG", []byte("pixels")))
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".png"))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("pixels"), got)

	require.NoError(t, store.Remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// removing twice is fine
	assert.NoError(t, store.Remove(path))
}

func TestSafeExt(t *testing.T) {
	assert.Equal(t, ".png", safeExt("a.PNG"))
	assert.Equal(t, "", safeExt("noext"))
	assert.Equal(t, "", safeExt("a.verylongextension"))
	assert.Equal(t, ".jpg", safeExt("../../etc/x.jpg"))
}

func TestMinioCropStore_Save(t *testing.T) {
	var (
		mu          sync.Mutex
		putPath     string
		contentType string
		body        []byte
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusOK)
		case http.MethodPut:
			data, _ := io.ReadAll(r.Body)
			mu.Lock()
			putPath = r.URL.Path
			contentType = r.Header.Get("Content-Type")
			body = data
			mu.Unlock()
			w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	require.NoError(t, err)

	store, err := NewMinioCropStore(context.Background(), MinioOptions{
		Endpoint:  u.Host,
		Region:    "us-east-1",
		Bucket:    "crops",
		AccessKey: "access",
		SecretKey: "secret",
	})
	require.NoError(t, err)

	got, err := store.Save(context.Background(), "a.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/crops/a.png", got)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/crops/a.png", putPath)
	assert.Equal(t, "image/png", contentType)
	assert.NotEmpty(t, body)
}

func TestMinioCropStore_PublicBaseURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	require.NoError(t, err)

	store, err := NewMinioCropStore(context.Background(), MinioOptions{
		Endpoint:      u.Host,
		Region:        "us-east-1",
		Bucket:        "crops",
		AccessKey:     "access",
		SecretKey:     "secret",
		PublicBaseURL: "https://cdn.example.com/ui/",
	})
	require.NoError(t, err)

	got, err := store.Save(context.Background(), "b.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/ui/b.png", got)
}

func TestNewAzureCropStore_InvalidKey(t *testing.T) {
	_, err := NewAzureCropStore(context.Background(), "account", "not base64!", "crops", "")
	assert.Error(t, err)
}
