package chi

import (
	"net/http"
	"net/url"

	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/flagsearch/internal/domain/search/request"
)

// SearchFeatures handles GET /api/admin/search/features.
//
// List parameters accept both the bracketed form (type[]=a&type[]=b) and the
// plain repeated form (type=a&type=b). The Link header holds the relative URL
// of the next page, or is empty on the last page.
func (s *Server) SearchFeatures(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	page, err := s.search.Search(r.Context(), params)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]Feature, len(page.Features()))
	for i := range page.Features() {
		items[i] = featureToAPI(&page.Features()[i])
	}

	w.Header().Set("Link", nextPageLink(r.URL, page.NextCursor()))
	writeJSON(w, http.StatusOK, SearchResponse{
		Features:   items,
		Total:      page.Total(),
		NextCursor: page.NextCursor(),
	})
}

func bindSearchParams(q url.Values) (request.Params, error) {
	p := request.Params{
		Query:     q.Get("query"),
		ProjectID: q.Get("projectId"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
		Cursor:    q.Get("cursor"),
		Limit:     q.Get("limit"),
		Archived:  q.Get("archived"),
	}

	var err error
	if p.Types, err = bindList(q, "type"); err != nil {
		return request.Params{}, err
	}
	if p.Tags, err = bindList(q, "tag"); err != nil {
		return request.Params{}, err
	}
	if p.Statuses, err = bindList(q, "status"); err != nil {
		return request.Params{}, err
	}
	return p, nil
}

// bindList collects an exploded form array under both name[] and name.
func bindList(q url.Values, name string) ([]string, error) {
	var bracketed, plain []string
	if err := runtime.BindQueryParameter("form", true, false, name+"[]", q, &bracketed); err != nil {
		return nil, err //nolint:wrapcheck // runtime errors name the parameter
	}
	if err := runtime.BindQueryParameter("form", true, false, name, q, &plain); err != nil {
		return nil, err //nolint:wrapcheck // runtime errors name the parameter
	}
	return append(bracketed, plain...), nil
}

// nextPageLink rebuilds the request URL with cursor replaced. Empty cursor yields "".
func nextPageLink(u *url.URL, cursor string) string {
	if cursor == "" {
		return ""
	}
	q := u.Query()
	q.Set("cursor", cursor)
	next := url.URL{Path: u.Path, RawQuery: q.Encode()}
	return next.String()
}
