// File: internal/publisher/extract.go
package publisher

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoPublicationID is returned when the post-publish URL does not carry a
// vehicle identifier, which means the site never accepted the listing.
var ErrNoPublicationID = errors.New("publication id not found in final url")

var publicationIDPattern = regexp.MustCompile(`/myvehicle/(\d+)`)

// extractPublication derives the publication id and canonical listing URL
// from the page the site lands on after publishing. The site appends a
// /plans segment for its upsell flow; the canonical URL drops it.
func extractPublication(finalURL string) (id, url string, err error) {
	url = strings.Replace(finalURL, "/plans", "", 1)
	m := publicationIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", "", ErrNoPublicationID
	}
	return m[1], url, nil
}
