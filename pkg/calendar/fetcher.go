package calendar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/borgmon/ics-importer/pkg/models"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single feed request
const DefaultTimeout = 10 * time.Second

// ErrNotICalendar is returned when a feed does not serve iCalendar data
var ErrNotICalendar = errors.New("not iCalendar data")

// Fetcher downloads and parses iCal feeds
type Fetcher struct {
	Client  *http.Client
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewFetcher creates a fetcher with the default HTTP client and timeout
func NewFetcher(logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		Client:  http.DefaultClient,
		Timeout: DefaultTimeout,
		Logger:  logger.Named("fetcher"),
	}
}

// FetchEvents fetches and parses events from an iCal source
func (f *Fetcher) FetchEvents(ctx context.Context, source models.ICalSource) ([]models.Event, error) {
	logger := f.logger().With(zap.String("source", source.Identifier()))

	body, err := f.fetch(ctx, source.URL)
	if err != nil {
		return nil, err
	}

	events, err := parseEvents(bytes.NewReader(body), logger)
	if err != nil {
		return nil, err
	}

	// Tag events with their source
	for i := range events {
		events[i].SourceID = source.Identifier()
		events[i].SourceURL = source.URL
	}

	return events, nil
}

func (f *Fetcher) fetch(ctx context.Context, icalURL string) ([]byte, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, icalURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected HTTP status %d from %s", resp.StatusCode, icalURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Validate response format
	if err := validateICalFormat(string(body)); err != nil {
		return nil, err
	}

	return bytes.TrimPrefix(body, []byte("\ufeff")), nil
}

func (f *Fetcher) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}

func validateICalFormat(bodyStr string) error {
	trimmed := strings.TrimSpace(strings.TrimPrefix(bodyStr, "\ufeff"))

	// Check if response is HTML instead of iCalendar
	upperBody := strings.ToUpper(trimmed)
	if strings.HasPrefix(upperBody, "<!DOCTYPE") || strings.HasPrefix(upperBody, "<HTML") {
		return fmt.Errorf("%w: received HTML - check if URL requires authentication", ErrNotICalendar)
	}

	// Check if it starts with BEGIN:VCALENDAR
	if !strings.HasPrefix(trimmed, "BEGIN:VCALENDAR") {
		previewLen := 100
		if len(trimmed) < previewLen {
			previewLen = len(trimmed)
		}
		return fmt.Errorf("%w: expected BEGIN:VCALENDAR, got: %s", ErrNotICalendar, trimmed[:previewLen])
	}

	return nil
}
