package validation

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/api/request"
)

// ValidScrapSorts contains the accepted scrap list orders.
var ValidScrapSorts = []string{"newest", "oldest", "ticker"}

// ValidateCreateScrap validates a scrap creation request.
// Title is required; link, when given, must be an absolute http(s) URL.
// Over-long fields are truncated by the store rather than rejected.
func ValidateCreateScrap(req request.CreateScrapRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Title) == "" {
		errors["title"] = "title is required"
	}

	if link := strings.TrimSpace(req.Link); link != "" {
		u, err := url.Parse(link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors["link"] = "link must be an http or https URL"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateScrapSort checks the sort query parameter. Empty means newest.
func ValidateScrapSort(sort string) error {
	if sort == "" || slices.Contains(ValidScrapSorts, sort) {
		return nil
	}
	return &Error{Fields: map[string]string{"sort": fmt.Sprintf("invalid sort: %s", sort)}}
}
