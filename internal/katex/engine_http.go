package katex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"texd/internal/domain"
	"texd/internal/infra"
)

// ErrMissingBaseURL indicates the engine client was configured without
// an endpoint.
var ErrMissingBaseURL = errors.New("katex: engine base url is required")

// EngineOptions configures the HTTP engine client.
type EngineOptions struct {
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// HTTPEngine talks to the hosted render page. Render jobs are submitted
// as a composed script call evaluated inside the page; the page answers
// with PNG bytes or a typed failure document.
type HTTPEngine struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

type evalRequest struct {
	Script string `json:"script"`
}

type abandonRequest struct {
	Key string `json:"key"`
}

type engineError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewHTTPEngine constructs an engine client with sane defaults.
func NewHTTPEngine(opts EngineOptions) (*HTTPEngine, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &HTTPEngine{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Submit evaluates the render call in the hosted page and returns the
// rendered PNG bytes. Engine-side failures come back as typed errors.
func (e *HTTPEngine) Submit(ctx context.Context, spec SubmitSpec) ([]byte, error) {
	body, err := json.Marshal(evalRequest{Script: renderScript(spec)})
	if err != nil {
		return nil, fmt.Errorf("katex: encode eval request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/eval", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("katex: build eval request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEngineFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("katex: read eval response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return nil, decodeEngineError(resp.StatusCode, raw)
	}

	e.logger.Debug().
		Str("key", spec.Key).
		Uint64("generation", spec.Generation).
		Int("bytes", len(raw)).
		Msg("katex: engine rendered bitmap")
	return raw, nil
}

// Abandon tells the engine the result for key is no longer wanted. The
// signal is best-effort; the engine may still finish the work.
func (e *HTTPEngine) Abandon(ctx context.Context, key string) error {
	body, err := json.Marshal(abandonRequest{Key: key})
	if err != nil {
		return fmt.Errorf("katex: encode abandon request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/abandon", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("katex: build abandon request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("katex: abandon request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("katex: abandon status %d", resp.StatusCode)
	}
	return nil
}

// renderScript composes the call evaluated inside the hosted page. Text
// arrives already escaped; the key is escaped here because callers pick
// it freely.
func renderScript(spec SubmitSpec) string {
	var b strings.Builder
	b.WriteString("__texd.render('")
	b.WriteString(EscapeScriptLiteral(spec.Key))
	b.WriteString("', ")
	b.WriteString(strconv.FormatUint(spec.Generation, 10))
	b.WriteString(", '")
	b.WriteString(spec.Text)
	b.WriteString("', {displayMode: ")
	b.WriteString(strconv.FormatBool(spec.DisplayMode))
	b.WriteString(", color: '")
	b.WriteString(spec.Color)
	b.WriteString("', fontSize: ")
	b.WriteString(strconv.FormatFloat(spec.FontSizePx, 'g', -1, 64))
	b.WriteString(", maxWidth: ")
	b.WriteString(strconv.FormatFloat(spec.MaxWidthPx, 'g', -1, 64))
	b.WriteString("})")
	return b.String()
}

func decodeEngineError(status int, raw []byte) error {
	var detail engineError
	if err := json.Unmarshal(raw, &detail); err == nil && detail.Code != "" {
		switch detail.Code {
		case "invalid_markup":
			return fmt.Errorf("%w: %s", domain.ErrInvalidMarkup, detail.Message)
		case "unsupported_runtime":
			return fmt.Errorf("%w: %s", domain.ErrUnsupportedRuntime, detail.Message)
		case "cancelled":
			return domain.ErrCancelled
		default:
			return fmt.Errorf("%w: %s (%s)", domain.ErrEngineFailure, detail.Message, detail.Code)
		}
	}
	return fmt.Errorf("%w: status %d: %s", domain.ErrEngineFailure, status, strings.TrimSpace(string(raw)))
}
