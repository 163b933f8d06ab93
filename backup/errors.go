package backup

import "errors"

// Failure kinds returned by the service. Callers map these onto transport
// status codes with errors.Is.
var (
	// ErrNotFound: the named archive does not exist in the store.
	ErrNotFound = errors.New("backup not found")
	// ErrInvalidArchive: the archive exists but fails structural verification.
	ErrInvalidArchive = errors.New("invalid backup archive")
	// ErrCreationFailure: snapshot or archive write failed; no partial
	// archive remains.
	ErrCreationFailure = errors.New("backup creation failed")
	// ErrRestoreFailure: the live store could not be replaced. The
	// pre-restore state is preserved unless the error says otherwise.
	ErrRestoreFailure = errors.New("restore failed")
)
