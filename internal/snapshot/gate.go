package snapshot

import "fmt"

// Gate checks the declared schema version and that the envelope carries a data
// document. It runs before anything is deleted.
func Gate(env *Envelope) error {
	if env == nil {
		return ErrMissingData
	}
	switch env.Version {
	case VersionLegacy, VersionCurrent:
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	if env.Data == nil {
		return ErrMissingData
	}
	return nil
}
