package edge

import (
	"fmt"
	"net/url"

	"github.com/serroba/linkgate/internal/links"
	"github.com/serroba/linkgate/internal/resolution"
)

// Destination pages for non-target outcomes.
const (
	StatusPage   = "/link-status"
	PasswordPage = "/password-prompt"
)

type destination struct {
	page  string
	error string
}

// RedirectMap maps every non-target outcome to its destination page.
// It is built once and never modified.
type RedirectMap struct {
	destinations map[resolution.Kind]destination
}

// NewRedirectMap builds the canonical redirect table.
func NewRedirectMap() *RedirectMap {
	m, err := newRedirectMap(map[resolution.Kind]destination{
		resolution.KindMissing:           {StatusPage, "missing"},
		resolution.KindExpired:           {StatusPage, "expired"},
		resolution.KindDisabled:          {StatusPage, "disabled"},
		resolution.KindSystemError:       {StatusPage, "system"},
		resolution.KindPasswordRequired:  {PasswordPage, "0"},
		resolution.KindIncorrectPassword: {PasswordPage, "1"},
	})
	if err != nil {
		panic(err)
	}

	return m
}

func newRedirectMap(destinations map[resolution.Kind]destination) (*RedirectMap, error) {
	for _, kind := range resolution.Kinds() {
		if _, ok := destinations[kind]; !ok {
			return nil, fmt.Errorf("redirect map: no destination for %s", kind)
		}
	}

	return &RedirectMap{destinations: destinations}, nil
}

// Location returns the redirect target for an outcome on slug.
// Target outcomes return their URL unmodified.
func (m *RedirectMap) Location(out resolution.Outcome, slug links.Slug) string {
	if out.Kind == resolution.KindTarget {
		return out.URL
	}

	dest, ok := m.destinations[out.Kind]
	if !ok {
		dest = m.destinations[resolution.KindSystemError]
	}

	query := url.Values{}
	query.Set("error", dest.error)
	query.Set("slug", string(slug))

	return dest.page + "?" + query.Encode()
}
