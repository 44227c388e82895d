package catalog

import (
	"context"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
)

// Fetcher resolves a symbol to the raw bytes of its JSON document.
// A missing document is reported with ErrCodeSymbolNotFound, any other
// failure with ErrCodeSymbolFetchFailed.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string) ([]byte, error)
}

// FileName returns the conventional document name for symbol.
func FileName(symbol string) string {
	return symbol + ".json"
}

// ValidSymbol reports whether symbol can name a document: non-empty, no path
// separators and no parent references.
func ValidSymbol(symbol string) bool {
	return symbol != "" && !strings.ContainsAny(symbol, `/\`) && !strings.Contains(symbol, "..")
}

// DirFetcher reads <Dir>/<SYMBOL>.json from the local filesystem.
type DirFetcher struct {
	Dir string
}

// NewDirFetcher creates a fetcher rooted at dir.
func NewDirFetcher(dir string) *DirFetcher {
	return &DirFetcher{Dir: dir}
}

// Fetch implements Fetcher.
func (f *DirFetcher) Fetch(ctx context.Context, symbol string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSymbolFetchFailed, "fetch cancelled", err)
	}

	if !ValidSymbol(symbol) {
		return nil, errors.Newf(errors.ErrCodeSymbolNotFound, "invalid symbol %q", symbol)
	}

	path := filepath.Join(f.Dir, FileName(symbol))

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Newf(errors.ErrCodeSymbolNotFound, "no data file %s", path)
		}

		return nil, errors.Wrapf(errors.ErrCodeSymbolFetchFailed, err, "failed to read %s", path)
	}

	return data, nil
}

// HTTPFetcher downloads <BaseURL>/<SYMBOL>.json from a static file server.
type HTTPFetcher struct {
	client *resty.Client
}

// NewHTTPFetcher creates a fetcher for documents served below baseURL.
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &HTTPFetcher{client: client}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, symbol string) ([]byte, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("file", FileName(symbol)).
		Get("/{file}")
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeSymbolFetchFailed, err, "failed to fetch %s", symbol)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, errors.Newf(errors.ErrCodeSymbolNotFound, "no data file for %s (status %d)", symbol, resp.StatusCode())
	case !resp.IsSuccess():
		return nil, errors.Newf(errors.ErrCodeSymbolFetchFailed, "fetch %s: unexpected status %d", symbol, resp.StatusCode())
	}

	return resp.Body(), nil
}
