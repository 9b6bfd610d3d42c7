package sales

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusFinalized Status = "FINALIZED"
	StatusCancelled Status = "CANCELLED"
)

// FINALIZED and CANCELLED are terminal; nothing leaves them.
var validNext = map[Status]map[Status]bool{
	StatusActive:    {StatusFinalized: true, StatusCancelled: true},
	StatusFinalized: {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusActive, StatusFinalized, StatusCancelled:
		return Status(s), true
	}
	return "", false
}
