package validate

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net"
	"net/url"
	"regexp"
	"strings"
	"sync"

	// Decoders for the formats catalog images arrive in. Dimension checks
	// decode whatever the remote host serves, independent of the
	// extension rule.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/shopaudit/catalog-validator/internal/catalog"
)

// imgSrcPattern extracts src attribute values when the image cell contains
// HTML markup instead of bare URLs.
var imgSrcPattern = regexp.MustCompile(`src=['"](.*?)['"]`)

// Fetcher retrieves a remote resource. Satisfied by *fetch.Client.
type Fetcher interface {
	GetBytes(ctx context.Context, url string) ([]byte, error)
}

// LookupHostFunc resolves a hostname. net.LookupHost in production;
// injectable so tests never touch the network.
type LookupHostFunc func(host string) ([]string, error)

// ImageOptions configures the image validator.
type ImageOptions struct {
	// RequiredWidth/RequiredHeight is the exact size that always passes.
	// Any square image also passes.
	RequiredWidth  int
	RequiredHeight int
	// LookupHost overrides DNS resolution. Defaults to net.LookupHost.
	LookupHost LookupHostFunc
	// SkipFetch disables the network half of validation: DNS resolution
	// and the fetch-and-decode dimension check. URL format and extension
	// checks still run.
	SkipFetch bool
}

// ImageValidator validates the image field of a row: URL extraction,
// well-formedness, domain resolvability, extension, and remote dimension
// verification. DNS results are cached per host for the lifetime of the
// validator, which is one run; the cache is owned by the instance so
// concurrent runs never share state.
type ImageValidator struct {
	fetcher    Fetcher
	lookupHost LookupHostFunc
	reqWidth   int
	reqHeight  int
	skipFetch  bool

	dnsMu    sync.Mutex
	dnsCache map[string]bool // host -> resolvable
}

// NewImageValidator returns an image validator using the given fetcher.
func NewImageValidator(fetcher Fetcher, opts ImageOptions) *ImageValidator {
	if opts.RequiredWidth <= 0 {
		opts.RequiredWidth = 825
	}
	if opts.RequiredHeight <= 0 {
		opts.RequiredHeight = 825
	}
	lookup := opts.LookupHost
	if lookup == nil {
		lookup = net.LookupHost
	}
	return &ImageValidator{
		fetcher:    fetcher,
		lookupHost: lookup,
		reqWidth:   opts.RequiredWidth,
		reqHeight:  opts.RequiredHeight,
		skipFetch:  opts.SkipFetch,
		dnsCache:   make(map[string]bool),
	}
}

// Validate checks every image URL of a row. Each URL is checked in
// isolation: a fetch failure for one URL never suppresses findings for its
// siblings.
func (v *ImageValidator) Validate(ctx context.Context, row catalog.Row) []Issue {
	if strings.TrimSpace(row.ImageSrc) == "" {
		return []Issue{newIssue(row.SKU, CodeImageURLFormat, "no image specified")}
	}

	urls := ExtractImageURLs(row.ImageSrc)
	if len(urls) == 0 {
		return []Issue{newIssue(row.SKU, CodeImageURLFormat, "no image URLs found in image field")}
	}

	var issues []Issue
	for _, raw := range urls {
		issues = append(issues, v.validateURL(ctx, row.SKU, raw)...)
	}
	return issues
}

// ExtractImageURLs pulls candidate URLs out of an image cell. Each
// semicolon-separated part is scanned for <img src> attributes; parts
// without markup are taken as bare URLs.
func ExtractImageURLs(field string) []string {
	var urls []string
	for _, part := range strings.Split(field, ";") {
		matches := imgSrcPattern.FindAllStringSubmatch(part, -1)
		if len(matches) > 0 {
			for _, m := range matches {
				urls = append(urls, m[1])
			}
			continue
		}
		urls = append(urls, strings.TrimSpace(part))
	}

	filtered := urls[:0]
	for _, u := range urls {
		if strings.TrimSpace(u) != "" {
			filtered = append(filtered, u)
		}
	}
	return filtered
}

func (v *ImageValidator) validateURL(ctx context.Context, sku, raw string) []Issue {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" || parsed.Path == "" {
		return []Issue{newIssue(sku, CodeImageURLFormat,
			fmt.Sprintf("malformed image URL %q", raw))}
	}

	var issues []Issue

	// Extension rule is independent of the fetch: a wrong extension is
	// reported even when the remote bytes would decode fine.
	if !hasJPEGExtension(parsed.Path) {
		issues = append(issues, newIssue(sku, CodeImageExtension,
			fmt.Sprintf("image URL %s does not end in .jpg or .jpeg", raw)))
	}

	if v.skipFetch {
		return issues
	}

	host := parsed.Hostname()
	if !v.resolvable(host) {
		issues = append(issues, newIssue(sku, CodeImageDomain,
			fmt.Sprintf("image domain %q does not resolve", host)))
		// Fetching a host that does not resolve would only duplicate
		// the finding.
		return issues
	}

	issues = append(issues, v.checkDimensions(ctx, sku, parsed.String())...)
	return issues
}

func hasJPEGExtension(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg")
}

// resolvable checks DNS for a host, caching the answer for the run.
func (v *ImageValidator) resolvable(host string) bool {
	v.dnsMu.Lock()
	defer v.dnsMu.Unlock()

	if ok, cached := v.dnsCache[host]; cached {
		return ok
	}

	_, err := v.lookupHost(host)
	ok := err == nil
	v.dnsCache[host] = ok
	return ok
}

// checkDimensions fetches the image and verifies its size. Fetch failures,
// non-2xx responses, and undecodable content are ImageFetchError; only a
// successfully decoded image can produce a dimension finding.
func (v *ImageValidator) checkDimensions(ctx context.Context, sku, imageURL string) []Issue {
	data, err := v.fetcher.GetBytes(ctx, imageURL)
	if err != nil {
		return []Issue{newIssue(sku, CodeImageFetch,
			fmt.Sprintf("failed to fetch image %s: %v", imageURL, err))}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return []Issue{newIssue(sku, CodeImageFetch,
			fmt.Sprintf("undecodable image content at %s: %v", imageURL, err))}
	}

	if cfg.Width == v.reqWidth && cfg.Height == v.reqHeight {
		return nil
	}
	if cfg.Width == cfg.Height {
		return nil
	}

	return []Issue{newIssue(sku, CodeImageDimension,
		fmt.Sprintf("image %s is %dx%d, expected %dx%d or square",
			imageURL, cfg.Width, cfg.Height, v.reqWidth, v.reqHeight))}
}
