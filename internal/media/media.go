// Package media processes uploaded profile avatars: decode, downscale, and
// persist a JPEG thumbnail under the configured media directory.
package media

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	defaultThumbSize   = 256
	defaultJPEGQuality = 80
)

// Processor turns uploaded images into stored avatar thumbnails.
type Processor struct {
	Dir       string
	ThumbSize int
}

// NewProcessor creates a processor rooted at dir. The directory is created
// on first write, not here.
func NewProcessor(dir string, thumbSize int) (*Processor, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("media directory is required")
	}
	if thumbSize <= 0 {
		thumbSize = defaultThumbSize
	}
	return &Processor{Dir: dir, ThumbSize: thumbSize}, nil
}

// StoreAvatar decodes the upload, scales it down to the thumbnail size, and
// writes it as <profileID>.jpg. It returns the stored file's path.
func (p *Processor) StoreAvatar(profileID string, upload io.Reader) (string, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return "", errors.New("profile id is required")
	}

	srcImg, _, err := image.Decode(upload)
	if err != nil {
		return "", fmt.Errorf("decode avatar: %w", err)
	}

	dst, err := scaleDown(srcImg, p.ThumbSize)
	if err != nil {
		return "", err
	}

	// #nosec G301 -- data directories use 0755 for multi-user access compatibility
	if err := os.MkdirAll(p.Dir, 0755); err != nil {
		return "", fmt.Errorf("create media directory: %w", err)
	}

	outPath := filepath.Join(p.Dir, profileID+".jpg")
	outFile, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create avatar file: %w", err)
	}
	defer outFile.Close() // nolint:errcheck

	if err := jpeg.Encode(outFile, dst, &jpeg.Options{Quality: defaultJPEGQuality}); err != nil {
		return "", fmt.Errorf("encode avatar: %w", err)
	}
	return outPath, nil
}

// RemoveAvatar deletes a stored avatar. Absent files are a no-op.
func (p *Processor) RemoveAvatar(profileID string) error {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return errors.New("profile id is required")
	}
	err := os.Remove(filepath.Join(p.Dir, profileID+".jpg"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove avatar: %w", err)
	}
	return nil
}

func scaleDown(srcImg image.Image, maxSize int) (image.Image, error) {
	bounds := srcImg.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, errors.New("invalid image dimensions")
	}

	scale := float64(maxSize) / float64(max(width, height))
	if scale > 1 {
		scale = 1
	}
	newW := int(float64(width) * scale)
	newH := int(float64(height) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), srcImg, bounds, draw.Over, nil)
	return dst, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
