package domain

// SessionKind partitions the ledger. Balances are always tracked per
// (member, kind) pair, never globally.
type SessionKind string

const (
	KindIndividual SessionKind = "individual"
	KindDuo        SessionKind = "duo"
	KindCollective SessionKind = "collective"
)

func (k SessionKind) Valid() bool {
	switch k {
	case KindIndividual, KindDuo, KindCollective:
		return true
	}
	return false
}

func Kinds() []SessionKind {
	return []SessionKind{KindIndividual, KindDuo, KindCollective}
}
