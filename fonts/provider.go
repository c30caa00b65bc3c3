package fonts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mmartin-sub/pdfrebuilder"
)

// GoogleFontsCSSURL is the stylesheet endpoint font families are fetched
// from. Family names have spaces replaced by '+' in the query string.
const GoogleFontsCSSURL = "https://fonts.googleapis.com/css2"

// Provider fetches a font family from a remote source, writing the font
// files it obtains into destDir and returning their paths.
type Provider interface {
	Fetch(ctx context.Context, family, destDir string) ([]string, error)
}

// assetPattern extracts font asset URLs from a fetched stylesheet.
var assetPattern = regexp.MustCompile(`url\((https?://[^)]+)\)`)

// GoogleFontsProvider downloads font families via the Google Fonts CSS API.
// Each Fetch performs up to Retries attempts with a fixed Delay between
// them; the per-request timeout is owned by Client.
type GoogleFontsProvider struct {
	// BaseURL is the stylesheet endpoint. Defaults to GoogleFontsCSSURL;
	// overridable for tests.
	BaseURL string

	// Retries is the maximum number of fetch attempts (default 3).
	Retries int

	// Delay is the fixed pause between attempts (default 1s).
	Delay time.Duration

	// Client performs the HTTP requests (default: 10s timeout).
	Client *http.Client
}

// NewGoogleFontsProvider creates a provider with default retry policy and
// request timeout.
func NewGoogleFontsProvider() *GoogleFontsProvider {
	return &GoogleFontsProvider{
		BaseURL: GoogleFontsCSSURL,
		Retries: 3,
		Delay:   time.Second,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch downloads all font assets for family into destDir. It retries the
// whole stylesheet-plus-assets sequence on failure; the final failure is
// returned once every attempt is exhausted.
func (p *GoogleFontsProvider) Fetch(ctx context.Context, family, destDir string) ([]string, error) {
	retries := p.Retries
	if retries < 1 {
		retries = 1
	}
	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		files, err := p.fetchOnce(ctx, family, destDir)
		if err == nil {
			pdfrebuilder.Logger().Info("font family downloaded",
				"family", family, "files", len(files), "attempt", attempt)
			return files, nil
		}
		lastErr = err
		if attempt == retries {
			break
		}
		pdfrebuilder.Logger().Warn("font download failed, will retry",
			"family", family, "attempt", attempt, "maxRetries", retries,
			"delay", p.Delay.String(), "error", err)
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("fonts: download %q failed after %d attempts: %w", family, retries, lastErr)
}

// fetchOnce performs a single stylesheet fetch and downloads every asset it
// references.
func (p *GoogleFontsProvider) fetchOnce(ctx context.Context, family, destDir string) ([]string, error) {
	base := p.BaseURL
	if base == "" {
		base = GoogleFontsCSSURL
	}
	cssURL := base + "?family=" + strings.ReplaceAll(family, " ", "+")
	css, err := p.get(ctx, cssURL)
	if err != nil {
		return nil, fmt.Errorf("stylesheet: %w", err)
	}

	matches := assetPattern.FindAllStringSubmatch(string(css), -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("stylesheet for %q references no font assets", family)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, err
	}

	var files []string
	for i, m := range matches {
		assetURL := m[1]
		data, err := p.get(ctx, assetURL)
		if err != nil {
			return nil, fmt.Errorf("asset %s: %w", assetURL, err)
		}
		path := filepath.Join(destDir, assetFileName(family, i, assetURL))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	return files, nil
}

// get issues a single GET and returns the body byte-for-byte.
func (p *GoogleFontsProvider) get(ctx context.Context, url string) ([]byte, error) {
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	// A non-browser user agent makes the CSS API serve plain TTF URLs.
	req.Header.Set("User-Agent", "pdfrebuilder/1.0")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// assetFileName derives a stable local filename for a downloaded asset.
func assetFileName(family string, index int, assetURL string) string {
	ext := filepath.Ext(assetURL)
	if ext == "" || len(ext) > 6 {
		ext = ".ttf"
	}
	stem := strings.ReplaceAll(family, " ", "-")
	if index == 0 {
		return stem + ext
	}
	return fmt.Sprintf("%s-%d%s", stem, index, ext)
}
