package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/abhisek/smartquiz/internal/logging"
)

const (
	// DefaultFetchTimeout bounds a whole page fetch.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultUserAgent is a desktop browser agent; some sites refuse
	// unknown clients.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	maxPageBytes = 10 << 20
)

// ErrNoContent is returned when a page has no readable text.
var ErrNoContent = errors.New("no readable content found on the page")

// FetchError describes a failed page fetch. StatusCode is zero when no
// HTTP response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Timeout    bool
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("fetching %s: timed out", e.URL)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetching %s: status %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Message is a short explanation suitable for showing to a user.
func (e *FetchError) Message() string {
	switch {
	case e.Timeout:
		return "The website took too long to respond. Please check your internet connection and try again."
	case e.StatusCode == http.StatusNotFound:
		return "Page not found (404). Please check if the URL is correct."
	case e.StatusCode == http.StatusForbidden:
		return "Access denied. This website doesn't allow content fetching."
	case e.StatusCode != 0:
		return fmt.Sprintf("Website returned an error (Code: %d). Try a different URL.", e.StatusCode)
	default:
		return "Couldn't connect to the website. Please check the URL and your internet connection."
	}
}

// Fetcher downloads web pages and extracts their article text.
type Fetcher struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// NewFetcher returns a Fetcher with the default timeout and user agent.
// A nil client uses a fresh http.Client.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &Fetcher{client: client, userAgent: DefaultUserAgent, logger: logging.For("ingest")}
}

// FetchURL fetches url with a default Fetcher.
func FetchURL(ctx context.Context, url string) (string, error) {
	return NewFetcher(nil).Fetch(ctx, url)
}

// Fetch downloads url and returns its readable text: lines longer than 20
// characters from the main content area, separated by blank lines.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.logger.Info("fetching article content", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		ferr := &FetchError{URL: url, Err: err, Timeout: isTimeout(err)}
		f.logger.Error("fetch failed", "url", url, "error", err)
		return "", ferr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Warn("fetch returned error status", "url", url, "status", resp.StatusCode)
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	text, err := ExtractArticle(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		if isTimeout(err) {
			return "", &FetchError{URL: url, Err: err, Timeout: true}
		}
		return "", err
	}
	if text == "" {
		f.logger.Warn("no content found", "url", url)
		return "", ErrNoContent
	}

	f.logger.Info("extracted article content", "url", url, "chars", len(text))
	return text, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// keepLines trims each line and keeps only those longer than 20 characters.
func keepLines(lines []string) string {
	var out []string
	for _, l := range lines {
		if l = strings.TrimSpace(l); len(l) > 20 {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n\n")
}
