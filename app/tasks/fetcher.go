package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"

	"github.com/lysyi3m/rsxml/app/source"
)

var ErrDocumentTooLarge = errors.New("document exceeds size limit")

// Fetcher reads source documents from HTTP or the local filesystem.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxSize    int64
}

func NewFetcher(httpClient *http.Client, userAgent string, maxSize int64) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
		maxSize:    maxSize,
	}
}

// Fetch returns the document bytes and the encoding hint to parse them
// with. A hint set on the source wins over the HTTP Content-Type charset.
func (f *Fetcher) Fetch(ctx context.Context, config *source.Config) ([]byte, string, error) {
	var (
		data    []byte
		charset string
		err     error
	)

	if config.URL != "" {
		data, charset, err = f.fetchURL(ctx, config)
	} else {
		data, err = f.readFile(config.Path)
	}
	if err != nil {
		return nil, "", err
	}

	if config.Settings.Encoding != "" {
		charset = config.Settings.Encoding
	}

	return data, charset, nil
}

func (f *Fetcher) fetchURL(ctx context.Context, config *source.Config) ([]byte, string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, config.FetchTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", config.URL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := f.readLimited(resp.Body)
	if err != nil {
		return nil, "", err
	}

	return data, contentCharset(resp.Header.Get("Content-Type")), nil
}

func (f *Fetcher) readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer file.Close()

	return f.readLimited(file)
}

func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	if int64(len(data)) > f.maxSize {
		return nil, permanent(fmt.Errorf("%w: more than %d bytes", ErrDocumentTooLarge, f.maxSize))
	}
	return data, nil
}

func contentCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}
