package status

import "fmt"

// Status is the phase a synchronization run is in.
type Status int32

const (
	Ready Status = iota
	CheckingManifest
	Fetching
	Verifying
	Reconciling
	Completed
	Failed
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "Ready"
	case CheckingManifest:
		return "CheckingManifest"
	case Fetching:
		return "Fetching"
	case Verifying:
		return "Verifying"
	case Reconciling:
		return "Reconciling"
	case Completed:
		return "Completed"
	case Failed:
		return "Failed"
	case Cancelled:
		return "Cancelled"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// IsTerminal reports whether s ends a run.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Failed || s == Cancelled
}

// Parse converts the String form back into a Status.
func Parse(str string) (Status, error) {
	for s := Ready; s <= Cancelled; s++ {
		if s.String() == str {
			return s, nil
		}
	}

	return Ready, fmt.Errorf("unknown status %q", str)
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}
