package resolver

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// apiEndpointRE is the fixed pattern of the vendor's download API endpoint
// for the stable Linux x64 build.
var apiEndpointRE = regexp.MustCompile(
	`https://(?:www\.)?cursor\.com/api/download\?[^"'\s<>]*platform=linux-x64[^"'\s<>]*`)

// apiResolver finds the download API endpoint on the vendor page and probes
// it for redirect metadata only; the redirect target is the artifact URL.
type apiResolver struct {
	page   string
	client *http.Client
}

// Resolve implements Resolver.
func (r *apiResolver) Resolve(ctx context.Context) (string, error) {
	body, err := fetchPage(ctx, r.client, r.page)
	if err != nil {
		return "", err
	}

	endpoint := apiEndpointRE.FindString(body)
	if endpoint == "" {
		return "", fmt.Errorf("%w: no download API endpoint on %s", ErrResolution, r.page)
	}

	return r.resolveRedirect(ctx, decodeEntities(endpoint))
}

// resolveRedirect asks the endpoint for its redirect target without
// downloading the artifact body.
func (r *apiResolver) resolveRedirect(ctx context.Context, endpoint string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, http.NoBody)
	if err != nil {
		return "", err
	}

	// Stop at the first response so the Location header stays visible.
	probe := &http.Client{
		Timeout: r.client.Timeout,
		CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	response, err := probe.Do(req)
	if err != nil {
		return "", fmt.Errorf("probe %s: %w", endpoint, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	location := response.Header.Get("Location")
	if response.StatusCode < http.StatusMultipleChoices ||
		response.StatusCode >= http.StatusBadRequest || location == "" {
		return "", fmt.Errorf("%w: %s did not redirect", ErrResolution, endpoint)
	}

	return location, nil
}

// decodeEntities undoes the HTML escaping seen in scraped attribute values.
func decodeEntities(s string) string {
	return strings.ReplaceAll(s, "&amp;", "&")
}
