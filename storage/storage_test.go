package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageLifecycle(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "")
	require.NoError(t, err)

	id := uuid.New()
	key, err := s.Upload(context.Background(), id, "Living Room.JPG", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "properties/"+id.String()[:2]+"/"+id.String()+".jpg", key)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	url := s.URL(key)
	assert.Equal(t, "/uploads/"+key, url)
	back, ok := s.KeyFromURL(url)
	require.True(t, ok)
	assert.Equal(t, key, back)

	require.NoError(t, s.Delete(context.Background(), key))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(context.Background(), key))
}

func TestKeyFromForeignURL(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "https://cdn.example.com")
	require.NoError(t, err)

	_, ok := s.KeyFromURL("https://elsewhere.example.com/a.jpg")
	assert.False(t, ok)
	_, ok = s.KeyFromURL("https://cdn.example.com/../etc/passwd")
	assert.False(t, ok)
}

func TestImageExtension(t *testing.T) {
	ext, ok := ImageExtension("image/png")
	assert.True(t, ok)
	assert.Equal(t, ".png", ext)

	ext, ok = ImageExtension("Image/JPEG; charset=binary")
	assert.True(t, ok)
	assert.Equal(t, ".jpg", ext)

	_, ok = ImageExtension("application/pdf")
	assert.False(t, ok)
}

func TestNewStorageRejectsUnknownType(t *testing.T) {
	_, err := NewStorage(context.Background(), config.StorageConfig{Type: "ftp"})
	assert.Error(t, err)

	s, err := NewStorage(context.Background(), config.StorageConfig{Type: "local", LocalPath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)
}
