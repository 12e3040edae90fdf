package resolver

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
)

var (
	// hrefRE extracts hyperlink targets from the download page.
	hrefRE = regexp.MustCompile(`href="([^"]+)"`)

	// artifactURLRE is the fixed pattern of a published Linux AppImage URL.
	artifactURLRE = regexp.MustCompile(
		`^https://downloads\.cursor\.com/production/[^"'\s<>]+/linux/appImage/x64/Cursor-[^"'\s<>/]+-x86_64\.AppImage$`)
)

// scrapeResolver finds the artifact URL by scanning hyperlinks on the vendor
// download page and taking the first one matching the artifact pattern, in
// document order.
type scrapeResolver struct {
	page   string
	client *http.Client
}

// Resolve implements Resolver.
func (r *scrapeResolver) Resolve(ctx context.Context) (string, error) {
	body, err := fetchPage(ctx, r.client, r.page)
	if err != nil {
		return "", err
	}

	for _, match := range hrefRE.FindAllStringSubmatch(body, -1) {
		target := decodeEntities(match[1])
		if artifactURLRE.MatchString(target) {
			return target, nil
		}
	}

	return "", fmt.Errorf("%w: no matching link on %s", ErrResolution, r.page)
}
