package costbasis

import (
	"fmt"
	"strings"
)

// Method selects how disposals are matched against acquisitions.
type Method int

const (
	// FIFO (First-In, First-Out) assumes the oldest units are sold first.
	FIFO Method = iota + 1
	// LIFO (Last-In, First-Out) assumes the most recent units are sold first.
	LIFO
	// Average spreads the cost of all held units evenly.
	Average
)

func (m Method) String() string {
	switch m {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	case Average:
		return "average"
	default:
		return "unknown"
	}
}

// ParseMethod parses a string into a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fifo":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	case "average", "avg":
		return Average, nil
	default:
		return 0, fmt.Errorf("unknown cost basis method: %q", s)
	}
}

func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Method) UnmarshalText(b []byte) error {
	v, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
