package webapp

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"regexp"
	"strconv"
	"sync"
)

var (
	// ErrUnknownIcon is returned for icon files the manifest does not list.
	ErrUnknownIcon = errors.New("unknown icon")

	iconFilePattern = regexp.MustCompile(`^icon-(\d+)x(\d+)\.png$`)

	themeRGBA = color.RGBA{R: 0x25, G: 0x63, B: 0xeb, A: 0xff}
	white     = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// IconSet renders manifest icons on first use and keeps the encoded bytes.
type IconSet struct {
	mu    sync.Mutex
	cache map[int][]byte
}

// NewIconSet creates an empty icon set.
func NewIconSet() *IconSet {
	return &IconSet{cache: make(map[int][]byte)}
}

// File returns the PNG for a file name such as "icon-192x192.png".
func (s *IconSet) File(name string) ([]byte, error) {
	m := iconFilePattern.FindStringSubmatch(name)
	if m == nil || m[1] != m[2] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIcon, name)
	}
	size, _ := strconv.Atoi(m[1])
	for _, known := range IconSizes {
		if known == size {
			return s.PNG(size)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownIcon, name)
}

// PNG returns the encoded icon with the given edge.
func (s *IconSet) PNG(size int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.cache[size]; ok {
		return b, nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, drawIcon(size)); err != nil {
		return nil, fmt.Errorf("failed to encode icon: %w", err)
	}
	s.cache[size] = buf.Bytes()
	return s.cache[size], nil
}

// drawIcon paints a bell on the theme color.
func drawIcon(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	s := float64(size)
	cx := s / 2
	bodyTop, bodyBottom := s*0.25, s*0.68
	for y := 0; y < size; y++ {
		fy := float64(y) + 0.5
		for x := 0; x < size; x++ {
			fx := float64(x) + 0.5
			img.SetRGBA(x, y, themeRGBA)

			// dome and flared body
			if fy >= bodyTop && fy <= bodyBottom {
				t := (fy - bodyTop) / (bodyBottom - bodyTop)
				half := s * (0.16 + 0.14*t)
				if math.Abs(fx-cx) <= half {
					img.SetRGBA(x, y, white)
				}
			}
			if math.Hypot(fx-cx, fy-bodyTop) <= s*0.16 {
				img.SetRGBA(x, y, white)
			}
			// rim
			if fy > bodyBottom && fy <= s*0.72 && math.Abs(fx-cx) <= s*0.34 {
				img.SetRGBA(x, y, white)
			}
			// clapper
			if math.Hypot(fx-cx, fy-s*0.78) <= s*0.06 {
				img.SetRGBA(x, y, white)
			}
		}
	}
	return img
}
