package snapshot

import "errors"

var (
	ErrInvalidPayload     = errors.New("invalid backup payload")
	ErrMissingManifest    = errors.New("backup archive has no data.json")
	ErrUnsupportedVersion = errors.New("unsupported backup version")
	ErrMissingData        = errors.New("backup has no data")
)
