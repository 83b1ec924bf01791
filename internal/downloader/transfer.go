package downloader

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/orgball2608/insta-saver/pkg/logger"
	"github.com/orgball2608/insta-saver/pkg/retry"
)

// StatusError is an HTTP status outside the 2xx range.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// LengthMismatchError means the body ended at a different size than the
// response declared. Treated as a transient failure, never a success.
type LengthMismatchError struct {
	Declared int64
	Received int64
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("received %d bytes, response declared %d", e.Received, e.Declared)
}

// TransferError is the terminal failure of one media transfer after all
// attempts are spent. It wraps the last observed cause.
type TransferError struct {
	URL string
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer of %s failed: %v", e.URL, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// TransferConfig tunes one Transferer.
type TransferConfig struct {
	ConnectTimeout  time.Duration
	ReadTimeout     time.Duration
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	UserAgent       string
}

// Transferer fetches the bytes of a single media item into a temporary
// file. It only ever writes to the temp path it is given; promoting the
// file to its final location is the Gate's job.
type Transferer struct {
	client   *http.Client
	logger   logger.Logger
	cfg      TransferConfig
	retryCfg retry.Config
}

func NewTransferer(cfg TransferConfig, log logger.Logger) *Transferer {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: cfg.ConnectTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ConnectTimeout,
	}

	return &Transferer{
		client: &http.Client{Transport: transport},
		logger: log.WithComponent("Transferer"),
		cfg:    cfg,
		retryCfg: retry.Config{
			MaxAttempts:     cfg.MaxAttempts,
			InitialInterval: cfg.InitialInterval,
			MaxInterval:     cfg.MaxInterval,
			Multiplier:      2,
		},
	}
}

// Fetch downloads srcURL into tempPath, resuming an existing partial file
// when the remote confirms range support. On terminal failure the temp file
// is removed and a TransferError carrying the last cause is returned.
func (t *Transferer) Fetch(ctx context.Context, srcURL, tempPath string) error {
	op := func() error {
		return t.fetchOnce(ctx, srcURL, tempPath)
	}

	if err := retry.Do(ctx, t.logger, "TransferMedia", op, t.retryCfg); err != nil {
		_ = os.Remove(tempPath)
		return &TransferError{URL: srcURL, Err: err}
	}
	return nil
}

func (t *Transferer) fetchOnce(ctx context.Context, srcURL, tempPath string) error {
	var offset int64
	if fi, err := os.Stat(tempPath); err == nil {
		offset = fi.Size()
	}

	reqCtx, cancel := context.WithTimeout(ctx, t.cfg.ReadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, srcURL, nil)
	if err != nil {
		return retry.Permanent(err)
	}
	if t.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", t.cfg.UserAgent)
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := t.client.Do(req)
	if err != nil {
		// timeouts, resets, DNS: all transient
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Either a fresh fetch, or the remote ignored our Range header.
		// Range support is unconfirmed, so restart from zero.
		offset = 0
	case resp.StatusCode == http.StatusPartialContent:
		start, err := contentRangeStart(resp.Header.Get("Content-Range"))
		if err != nil || start != offset {
			_ = os.Truncate(tempPath, 0)
			return fmt.Errorf("unusable content-range %q for offset %d", resp.Header.Get("Content-Range"), offset)
		}
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		_ = os.Truncate(tempPath, 0)
		return fmt.Errorf("range from offset %d rejected", offset)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &StatusError{Code: resp.StatusCode}
	default:
		return retry.Permanent(&StatusError{Code: resp.StatusCode})
	}

	flags := os.O_CREATE | os.O_WRONLY
	if offset > 0 {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(tempPath, flags, 0o644)
	if err != nil {
		return retry.Permanent(err)
	}

	written, copyErr := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if copyErr != nil {
		// keep the partial bytes; the next attempt resumes from them
		return fmt.Errorf("reading body: %w", copyErr)
	}
	if closeErr != nil {
		return closeErr
	}

	if total := declaredTotal(resp, offset); total >= 0 && offset+written != total {
		return &LengthMismatchError{Declared: total, Received: offset + written}
	}
	return nil
}

// declaredTotal returns the total byte length the response claims for the
// whole object, or -1 when none was declared.
func declaredTotal(resp *http.Response, offset int64) int64 {
	if resp.StatusCode == http.StatusPartialContent {
		if total, err := contentRangeTotal(resp.Header.Get("Content-Range")); err == nil {
			return total
		}
		if resp.ContentLength >= 0 {
			return offset + resp.ContentLength
		}
		return -1
	}
	return resp.ContentLength
}

func contentRangeStart(header string) (int64, error) {
	spec, _, err := splitContentRange(header)
	if err != nil {
		return 0, err
	}
	dash := strings.IndexByte(spec, '-')
	if dash < 0 {
		return 0, fmt.Errorf("malformed content-range %q", header)
	}
	return strconv.ParseInt(spec[:dash], 10, 64)
}

func contentRangeTotal(header string) (int64, error) {
	_, total, err := splitContentRange(header)
	if err != nil {
		return 0, err
	}
	if total == "*" {
		return 0, fmt.Errorf("content-range %q has no total", header)
	}
	return strconv.ParseInt(total, 10, 64)
}

func splitContentRange(header string) (spec, total string, err error) {
	rest, ok := strings.CutPrefix(header, "bytes ")
	if !ok {
		return "", "", fmt.Errorf("malformed content-range %q", header)
	}
	spec, total, ok = strings.Cut(rest, "/")
	if !ok {
		return "", "", fmt.Errorf("malformed content-range %q", header)
	}
	return spec, total, nil
}
