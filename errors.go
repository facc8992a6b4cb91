package livequery

import "github.com/friendsofgo/errors"

// ErrStorageUnavailable is the root of every storage-layer failure the
// engine surfaces. List screens must render an empty/loading state on it,
// never crash; wrap it with context when returning from a Collection.
var ErrStorageUnavailable = errors.New("storage unavailable")

// IsStorageUnavailable reports whether err stems from storage being
// unable to serve a query.
func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
