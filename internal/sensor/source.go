package sensor

// Source abstracts the two break-beam DIO lines so the poller can run
// against real hardware or a simulator interchangeably.
type Source interface {
	ReadA() (bool, error)
	ReadB() (bool, error)
	Close() error
}
