package system

// Key codes from linux/input-event-codes.h.
const (
	KeyF4 uint16 = 62
	KeyF5 uint16 = 63
	KeyF6 uint16 = 64
)

type logger = interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}
