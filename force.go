package genericmail

// Force is a tri-state flag for explicitly requesting or suppressing one
// of the two variants, independent of what the Email's fields imply.
type Force int

const (
	// ForceDefault leaves the decision to the Email's templates/bodies.
	ForceDefault Force = iota
	ForceOn
	ForceOff
)

func (f Force) resolve(fallback bool) bool {
	switch f {
	case ForceOn:
		return true
	case ForceOff:
		return false
	default:
		return fallback
	}
}

// SendOptions control a single Send call.
type SendOptions struct {
	Text Force
	HTML Force

	// FailSilently turns the nothing-to-send outcome into a plain
	// false return instead of an error. It never suppresses
	// configuration or body errors.
	FailSilently bool
}
