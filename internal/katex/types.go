package katex

import (
	"fmt"
	"math"
	"strconv"

	"texd/internal/domain"
)

// Color is an 8-bit RGBA tuple as supplied by UI callers.
type Color struct {
	R uint8
	G uint8
	B uint8
	A uint8
}

// CSS serializes the color as "rgba(R,G,B,A)" with the alpha channel
// normalized to [0,1], which is the form the engine consumes.
func (c Color) CSS() string {
	alpha := math.Round(float64(c.A)/255*1000) / 1000
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, strconv.FormatFloat(alpha, 'f', -1, 64))
}

// Request describes one render call. Key identifies the coalescing slot:
// requests sharing a key supersede each other, requests on distinct keys
// are independent. MaxWidth may be math.Inf(1) for an unbounded layout.
type Request struct {
	Key         string
	Text        string
	DisplayMode bool
	Color       Color
	FontSize    float64
	MaxWidth    float64
}

func (r Request) validate() error {
	if r.Key == "" {
		return fmt.Errorf("%w: key is required", domain.ErrInvalidRequest)
	}
	if r.FontSize <= 0 || math.IsNaN(r.FontSize) || math.IsInf(r.FontSize, 0) {
		return fmt.Errorf("%w: font size must be a positive finite number", domain.ErrInvalidRequest)
	}
	if r.MaxWidth <= 0 || math.IsNaN(r.MaxWidth) {
		return fmt.Errorf("%w: max width must be positive or +Inf", domain.ErrInvalidRequest)
	}
	return nil
}

// effectiveMaxWidth applies the width policy: display-mode renders and
// unbounded requests take their natural width (reported as 0 to the
// engine), otherwise maxWidth is the wrap boundary.
func effectiveMaxWidth(displayMode bool, maxWidth float64) float64 {
	if displayMode || math.IsInf(maxWidth, 1) {
		return 0
	}
	return maxWidth
}
