package common

//go:generate go run github.com/dmarkham/enumer -json -type SearchStatus -trimprefix Status

// SearchStatus is the outcome of a catalog query
type SearchStatus int

const (
	StatusNotExecuted SearchStatus = iota
	StatusOK
	StatusUnauthorized
	StatusFailed
)

// Succeeded returns true if the catalog answered the query
func (s SearchStatus) Succeeded() bool {
	return s == StatusOK
}
