// Package images loads and validates image files selected for analysis.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG dimensions
	_ "image/png"  // PNG dimensions
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Veraticus/platewise/internal/model"
)

// MaxFileSize caps how much of a single file is read.
const MaxFileSize = 50 << 20

var (
	// ErrUnsupportedType indicates a file that is not an accepted image type.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrFileTooLarge indicates a file larger than MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")
)

// AcceptedTypes lists the MIME types the analysis service accepts.
var AcceptedTypes = []string{"image/jpeg", "image/png", "image/webp", "image/jpg"}

var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".jpe":  "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Accepted reports whether mimeType may be uploaded.
func Accepted(mimeType string) bool {
	for _, t := range AcceptedTypes {
		if strings.EqualFold(t, mimeType) {
			return true
		}
	}
	return false
}

// DetectType returns the MIME type of a file from its extension, falling
// back to content sniffing.
func DetectType(name string, data []byte) string {
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	t := http.DetectContentType(data)
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}

// Load reads and validates one image file.
func Load(path string) (model.ImageFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.ImageFile{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return model.ImageFile{}, fmt.Errorf("%w: %s is a directory", ErrUnsupportedType, path)
	}
	if info.Size() > MaxFileSize {
		return model.ImageFile{}, fmt.Errorf("%w: %s (%s)", ErrFileTooLarge, filepath.Base(path), FormatFileSize(info.Size()))
	}

	// #nosec G304 - path is provided by the user on purpose
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ImageFile{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return FromBytes(filepath.Base(path), path, data)
}

// FromBytes validates in-memory image content.
func FromBytes(name, path string, data []byte) (model.ImageFile, error) {
	mimeType := DetectType(name, data)
	if !Accepted(mimeType) {
		return model.ImageFile{}, fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, name, mimeType)
	}

	img := model.ImageFile{
		Name:     name,
		Path:     path,
		MIMEType: mimeType,
		Data:     data,
		Size:     int64(len(data)),
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img.Width = cfg.Width
		img.Height = cfg.Height
	}
	return img, nil
}

// LoadAll loads every path. Directories contribute the image files they
// directly contain. Rejected files are reported in errs; valid files are
// returned in argument order.
func LoadAll(paths []string) (files []model.ImageFile, errs []error) {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err == nil && info.IsDir() {
			entries, dirErr := imageEntries(p)
			if dirErr != nil {
				errs = append(errs, dirErr)
				continue
			}
			for _, e := range entries {
				f, loadErr := Load(e)
				if loadErr != nil {
					errs = append(errs, loadErr)
					continue
				}
				files = append(files, f)
			}
			continue
		}

		f, err := Load(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		files = append(files, f)
	}
	return files, errs
}

func imageEntries(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := extensionTypes[strings.ToLower(filepath.Ext(e.Name()))]; ok {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with binary units and at most two
// decimals, e.g. "1.5 KB".
func FormatFileSize(size int64) string {
	if size <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(size)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	value := float64(size) / math.Pow(1024, float64(i))
	value = math.Round(value*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + sizeUnits[i]
}

// Dimensions renders "W×H", or "" when unknown.
func Dimensions(img model.ImageFile) string {
	if img.Width == 0 || img.Height == 0 {
		return ""
	}
	return fmt.Sprintf("%d×%d", img.Width, img.Height)
}
