package service

import (
	"context"
	"fmt"
	"math"
	"net/http"
)

// Credentials for HTTP Basic authentication
type Credentials struct {
	Username string
	Password string
}

// OpenConnection performs a GET on url, with basic authentication if creds is not nil.
// The caller must close the body of the response.
// If client is nil, a default http.Client is used.
func OpenConnection(ctx context.Context, client *http.Client, url string, creds *Credentials) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("OpenConnection.NewRequest: %w", err)
	}
	if creds != nil && creds.Username != "" {
		req.SetBasicAuth(creds.Username, creds.Password)
	}
	if client == nil {
		client = &http.Client{}
	}
	resp, err := client.Do(req)
	if err != nil {
		if Temporary(err) {
			err = MakeTemporary(err)
		}
		return nil, fmt.Errorf("OpenConnection.Do: %w", err)
	}
	return resp, nil
}

// PageQueryParam is a page to request to a catalog whose pages have a fixed size (Limit)
// FirstRowToSelect and LastRowToSelect are the indices (included) of the rows of the page to keep
type PageQueryParam struct {
	Limit            int
	Page             int
	FirstRowToSelect int
	LastRowToSelect  int
}

// ComputePagesToQuery maps the page <clientPage> of size <clientLimit> requested by a client
// on the pages of size <catalogLimit> of the catalog (pages start at 0).
// It returns nil if the index of the last row of the client page overflows.
func ComputePagesToQuery(clientPage, clientLimit, catalogLimit int) []PageQueryParam {
	if clientLimit <= 0 || catalogLimit <= 0 || clientPage < 0 || clientPage > (math.MaxInt-clientLimit)/clientLimit {
		return nil
	}
	first := clientPage * clientLimit
	last := first + clientLimit - 1

	var pages []PageQueryParam
	for p := first / catalogLimit; p <= last/catalogLimit; p++ {
		pageStart := p * catalogLimit
		pages = append(pages, PageQueryParam{
			Limit:            catalogLimit,
			Page:             p,
			FirstRowToSelect: max(first-pageStart, 0),
			LastRowToSelect:  min(last-pageStart, catalogLimit-1),
		})
	}
	return pages
}

// QueryGetResult returns the rows of a page selected by queryParams
func QueryGetResult[T any](queryParams *PageQueryParam, rows []T) []T {
	if queryParams.FirstRowToSelect >= len(rows) {
		return nil
	}
	last := min(queryParams.LastRowToSelect+1, len(rows))
	return rows[queryParams.FirstRowToSelect:last]
}
