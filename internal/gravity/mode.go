package gravity

import (
	"fmt"
	"strings"
)

type Mode int

const (
	// Impulse adds G*m_A*m_B/r^2 to velocity each step, ignoring dt.
	Impulse Mode = iota
	// Newtonian adds G*m_B/r^2*dt to velocity each step.
	Newtonian
)

func (m Mode) String() string {
	switch m {
	case Impulse:
		return "impulse"
	case Newtonian:
		return "newtonian"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts the names returned by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "impulse":
		return Impulse, nil
	case "newtonian":
		return Newtonian, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}
