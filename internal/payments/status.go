package payments

type Status string

const (
	StatusUnpaid Status = "UNPAID"
	StatusPaid   Status = "PAID"
)

// Paid is terminal; a failed verification keeps the order UNPAID.
var validNext = map[Status]map[Status]bool{
	StatusUnpaid: {StatusPaid: true},
	StatusPaid:   {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
