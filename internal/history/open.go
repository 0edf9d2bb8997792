package history

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendCSV      = "csv"
	BackendPostgres = "postgres"
)

// Options selects and configures a history backend.
type Options struct {
	Backend string
	Dir     string
	DSN     string
}

// Open returns the store named by opts.Backend. An empty backend means CSV.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendCSV:
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		return NewCSVStore(dir)
	case BackendPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("postgres history backend requires a dsn")
		}
		return OpenPostgres(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("unknown history backend %q (use csv or postgres)", opts.Backend)
	}
}
