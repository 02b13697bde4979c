// Command render performs a single render call against the configured
// engine and writes the bitmap to disk. Useful for smoke-testing an
// engine deployment without standing up the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"texd/internal/domain"
	"texd/internal/infra"
	"texd/internal/katex"
)

func main() {
	var (
		textFlag     string
		keyFlag      string
		displayFlag  bool
		fontSizeFlag float64
		maxWidthFlag float64
		outFlag      string
		timeoutFlag  time.Duration
	)

	flag.StringVar(&textFlag, "text", "", "TeX markup to render")
	flag.StringVar(&keyFlag, "key", "cli", "request key")
	flag.BoolVar(&displayFlag, "display", false, "render in display mode")
	flag.Float64Var(&fontSizeFlag, "font-size", 14, "font size in pixels")
	flag.Float64Var(&maxWidthFlag, "max-width", 0, "wrap width in pixels (0 = unbounded)")
	flag.StringVar(&outFlag, "out", "render.png", "output file")
	flag.DurationVar(&timeoutFlag, "timeout", 30*time.Second, "render timeout")
	flag.Parse()

	text := strings.TrimSpace(textFlag)
	if text == "" {
		exitWithError(fmt.Errorf("-text is required"))
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	engine, err := katex.NewHTTPEngine(katex.EngineOptions{
		BaseURL:        cfg.EngineBaseURL,
		RequestTimeout: timeoutFlag,
		Logger:         &logger,
	})
	if err != nil {
		exitWithError(err)
	}
	gateway, err := katex.NewGateway(katex.GatewayOptions{
		Engine:        engine,
		Logger:        &logger,
		RenderTimeout: timeoutFlag,
	})
	if err != nil {
		exitWithError(err)
	}

	maxWidth := math.Inf(1)
	if maxWidthFlag > 0 {
		maxWidth = maxWidthFlag
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeoutFlag)
	defer cancel()
	out, err := gateway.Render(ctx, katex.Request{
		Key:         keyFlag,
		Text:        text,
		DisplayMode: displayFlag,
		Color:       katex.Color{A: 255},
		FontSize:    fontSizeFlag,
		MaxWidth:    maxWidth,
	})
	if err != nil {
		exitWithError(err)
	}
	if out.State != domain.JobStateCompleted {
		if out.Err != nil {
			exitWithError(out.Err)
		}
		exitWithError(fmt.Errorf("render ended %s", out.State))
	}

	if err := os.WriteFile(outFlag, out.Data, 0o644); err != nil {
		exitWithError(err)
	}
	fmt.Printf("wrote %d bytes to %s\n", len(out.Data), outFlag)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "render:", err)
	os.Exit(1)
}
