package store

import "errors"

// Sentinel engine errors, rendered by the dispatcher as `-` error
// frames. Arity and IO errors carry their own descriptive text and are
// constructed where they occur rather than as sentinels.
var (
	ErrWrongType = errors.New("WRONGTYPE")
	ErrIO        = errors.New("IO ERROR")
)
