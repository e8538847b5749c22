package dump

import "errors"

var (
	// ErrNotFound reports a missing conversation, id, shard or archive entry.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument reports a lookup path that exists but is not a conversation directory.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDecode reports malformed JSON or text that does not repair to valid UTF-8.
	ErrDecode = errors.New("decode error")
)
