// Package catalog provides the product catalog behind the product-existence
// and price-lookup collaborators.
//
// The catalog is stored in SQLite. By default the pure Go driver
// (modernc.org/sqlite) is used; build with the cgo_sqlite tag to use
// github.com/mattn/go-sqlite3 instead:
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite ./...
//
// CachedStore puts a Redis read-through cache in front of any Store for
// price lookups.
package catalog
