package images

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func jpegBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func setupTestProcessor(t *testing.T) *Processor {
	t.Helper()

	storage, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	return NewProcessor(storage, discardLogger())
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr bool
	}{
		{"jpeg", append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 16)...), "jpeg", false},
		{"png", append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 16)...), "png", false},
		{"gif", append([]byte("GIF89a"), make([]byte, 16)...), "gif", false},
		{"webp", append([]byte("RIFF\x00\x00\x00\x00WEBP"), make([]byte, 16)...), "webp", false},
		{"text file", []byte("definitely not an image here"), "", true},
		{"too small", []byte{0xFF, 0xD8}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProcessor_Process(t *testing.T) {
	p := setupTestProcessor(t)

	info, err := p.Process("book-001", pngBytes(t, 120, 180))
	require.NoError(t, err)

	assert.Equal(t, "book-001.png", info.Filename)
	assert.Equal(t, "covers/book-001.png", info.Path)
	assert.Equal(t, "png", info.Format)
	assert.Positive(t, info.Size)
	assert.NotEmpty(t, info.BlurHash)

	assert.True(t, p.storage.Exists("book-001.png"))
}

func TestProcessor_Process_JPEG(t *testing.T) {
	p := setupTestProcessor(t)

	info, err := p.Process("book-002", jpegBytes(t, 80, 120))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", info.Format)
	assert.Equal(t, "book-002.jpeg", info.Filename)
}

func TestProcessor_Process_RejectsNonImage(t *testing.T) {
	p := setupTestProcessor(t)

	_, err := p.Process("book-001", []byte("<html>not an image</html>"))
	assert.Error(t, err)
}

func TestProcessor_Process_EmptyID(t *testing.T) {
	p := setupTestProcessor(t)

	_, err := p.Process("", pngBytes(t, 10, 10))
	assert.Error(t, err)
}

func TestProcessor_Remove(t *testing.T) {
	p := setupTestProcessor(t)

	info, err := p.Process("book-001", pngBytes(t, 30, 30))
	require.NoError(t, err)

	require.NoError(t, p.Remove(info))
	assert.False(t, p.storage.Exists(info.Filename))

	// Removing again is fine.
	assert.NoError(t, p.Remove(info))

	// Nil info is a no-op.
	assert.NoError(t, p.Remove(nil))
}

func TestComputeBlurHash(t *testing.T) {
	hash, err := ComputeBlurHash(pngBytes(t, 200, 300))
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
}

func TestComputeBlurHash_InvalidData(t *testing.T) {
	_, err := ComputeBlurHash([]byte("garbage"))
	assert.Error(t, err)
}
