package livelist

// Loggable exposes details about a value for structured logging.
type Loggable interface {
	Details() map[string]string
}
