package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		want string
		size int64
	}{
		{size: 0, want: "0 Bytes"},
		{size: 1, want: "1 Bytes"},
		{size: 1023, want: "1023 Bytes"},
		{size: 1024, want: "1 KB"},
		{size: 1536, want: "1.5 KB"},
		{size: 1234567, want: "1.18 MB"},
		{size: 3 << 30, want: "3 GB"},
		{size: 5 << 40, want: "5120 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFileSize(tt.size), "size %d", tt.size)
	}
}

func TestDetectType(t *testing.T) {
	png := pngBytes(t, 2, 2)

	assert.Equal(t, "image/jpeg", DetectType("a.JPG", nil))
	assert.Equal(t, "image/jpeg", DetectType("a.jpeg", nil))
	assert.Equal(t, "image/webp", DetectType("a.webp", nil))
	assert.Equal(t, "image/png", DetectType("no-extension", png))
	assert.Equal(t, "text/plain", DetectType("notes", []byte("hello")))
}

func TestAccepted(t *testing.T) {
	for _, mt := range []string{"image/jpeg", "image/png", "image/webp", "image/jpg", "IMAGE/PNG"} {
		assert.True(t, Accepted(mt), mt)
	}
	for _, mt := range []string{"image/gif", "application/pdf", ""} {
		assert.False(t, Accepted(mt), mt)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plate.png", pngBytes(t, 64, 48))

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "plate.png", img.Name)
	assert.Equal(t, path, img.Path)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, 64, img.Width)
	assert.Equal(t, 48, img.Height)
	assert.Equal(t, int64(len(img.Data)), img.Size)
	assert.Equal(t, "64×48", Dimensions(img))
}

func TestLoad_Rejections(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(writeFile(t, dir, "notes.txt", []byte("not an image")))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Load(writeFile(t, dir, "anim.gif", []byte("GIF89a")))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Load(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	_, err = Load(dir)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestLoad_UndecodableKeepsZeroDimensions(t *testing.T) {
	img, err := FromBytes("broken.jpg", "", []byte("not really a jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIMEType)
	assert.Zero(t, img.Width)
	assert.Empty(t, Dimensions(img))
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "b.png", pngBytes(t, 1, 1))
	bad := writeFile(t, dir, "readme.md", []byte("# hi"))

	sub := filepath.Join(dir, "meals")
	require.NoError(t, os.Mkdir(sub, 0750))
	writeFile(t, sub, "z.png", pngBytes(t, 1, 1))
	writeFile(t, sub, "a.jpg", []byte("jpeg-ish"))
	writeFile(t, sub, "ignored.txt", []byte("x"))

	files, errs := LoadAll([]string{good, bad, sub})

	require.Len(t, files, 3)
	assert.Equal(t, "b.png", files[0].Name)
	assert.Equal(t, "a.jpg", files[1].Name)
	assert.Equal(t, "z.png", files[2].Name)

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrUnsupportedType)
}
