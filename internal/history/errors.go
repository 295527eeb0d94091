package history

import (
	"git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
)

var (
	// ErrRunNotFound indicates no run with the requested ID is stored.
	ErrRunNotFound = errors.StoreError("run not found").Build()

	ErrDatabaseOpenFailed     = errors.StoreError("could not open history database").Build()
	ErrInitializeSchemaFailed = errors.StoreError("failed to initialize history schema").Build()
	ErrRecordFailed           = errors.StoreError("failed to record run").Build()
	ErrQueryFailed            = errors.StoreError("failed to query runs").Build()
)
