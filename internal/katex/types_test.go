package katex

import (
	"errors"
	"math"
	"testing"

	"texd/internal/domain"
)

func TestColorCSS(t *testing.T) {
	tests := []struct {
		name  string
		color Color
		want  string
	}{
		{"opaque white", Color{255, 255, 255, 255}, "rgba(255,255,255,1)"},
		{"transparent black", Color{0, 0, 0, 0}, "rgba(0,0,0,0)"},
		{"half alpha", Color{16, 32, 64, 127}, "rgba(16,32,64,0.498)"},
		{"quarter alpha", Color{200, 100, 50, 64}, "rgba(200,100,50,0.251)"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.color.CSS(); got != tc.want {
				t.Fatalf("CSS() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEffectiveMaxWidth(t *testing.T) {
	if got := effectiveMaxWidth(true, 300); got != 0 {
		t.Fatalf("display mode must use natural width, got %g", got)
	}
	if got := effectiveMaxWidth(false, math.Inf(1)); got != 0 {
		t.Fatalf("unbounded width must use natural width, got %g", got)
	}
	if got := effectiveMaxWidth(false, 150); got != 150 {
		t.Fatalf("finite inline width must be honored, got %g", got)
	}
}

func TestRequestValidate(t *testing.T) {
	valid := Request{Key: "k", Text: "x", FontSize: 14, MaxWidth: math.Inf(1)}
	if err := valid.validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	tests := []struct {
		name string
		req  Request
	}{
		{"missing key", Request{FontSize: 14, MaxWidth: 100}},
		{"zero font size", Request{Key: "k", FontSize: 0, MaxWidth: 100}},
		{"negative font size", Request{Key: "k", FontSize: -2, MaxWidth: 100}},
		{"infinite font size", Request{Key: "k", FontSize: math.Inf(1), MaxWidth: 100}},
		{"zero max width", Request{Key: "k", FontSize: 14, MaxWidth: 0}},
		{"nan max width", Request{Key: "k", FontSize: 14, MaxWidth: math.NaN()}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.validate()
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("err = %v, want ErrInvalidRequest", err)
			}
		})
	}
}
