package katex

import "context"

// SubmitSpec is the wire-level description of one render job. Text is
// already script-literal escaped, Color is an rgba(...) string and
// MaxWidthPx of 0 means natural width.
type SubmitSpec struct {
	Key         string
	Generation  uint64
	Text        string
	DisplayMode bool
	Color       string
	FontSizePx  float64
	MaxWidthPx  float64
}

// Engine is the boundary to the hosted render capability. Submit blocks
// until the engine answers with bitmap bytes or a typed failure; the
// gateway runs it off the caller's goroutine and attributes the answer
// via the generation the spec carried. Abandon is a best-effort signal
// that the result for key is no longer wanted.
type Engine interface {
	Submit(ctx context.Context, spec SubmitSpec) ([]byte, error)
	Abandon(ctx context.Context, key string) error
}
