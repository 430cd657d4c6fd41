package message

import "fmt"

// TransactionStatus is the lifecycle stage reported by the sitter. The client
// never computes it; it only sends it as a query filter and decodes it back.
type TransactionStatus int

const (
	// StatusQueued: waiting to be broadcast.
	StatusQueued TransactionStatus = iota
	// StatusPending: broadcast, not yet included.
	StatusPending
	// StatusMined: included in a block.
	StatusMined
	// StatusFinalized: included in a block older than the network's finality threshold.
	StatusFinalized
	// StatusDropped: failed to broadcast and will not be retried.
	StatusDropped
)

var statusNames = []string{"queued", "pending", "mined", "finalized", "dropped"}

func (s TransactionStatus) String() string {
	return enumName(statusNames, int(s))
}

func (s TransactionStatus) MarshalText() ([]byte, error) {
	return marshalEnum("transaction status", statusNames, int(s))
}

func (s *TransactionStatus) UnmarshalText(text []byte) error {
	v, err := parseEnum("transaction status", statusNames, string(text))
	if err != nil {
		return err
	}
	*s = TransactionStatus(v)
	return nil
}

// ParseTransactionStatus parses a wire literal such as "mined".
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	var st TransactionStatus
	err := st.UnmarshalText([]byte(s))
	return st, err
}

// TransactionPriority is ordered: PrioritySlowest < ... < PriorityFastest.
type TransactionPriority int

const (
	PrioritySlowest TransactionPriority = iota
	PrioritySlow
	PriorityRegular
	PriorityFast
	PriorityFastest
)

var priorityNames = []string{"slowest", "slow", "regular", "fast", "fastest"}

func (p TransactionPriority) String() string {
	return enumName(priorityNames, int(p))
}

func (p TransactionPriority) MarshalText() ([]byte, error) {
	return marshalEnum("transaction priority", priorityNames, int(p))
}

func (p *TransactionPriority) UnmarshalText(text []byte) error {
	v, err := parseEnum("transaction priority", priorityNames, string(text))
	if err != nil {
		return err
	}
	*p = TransactionPriority(v)
	return nil
}

// Ptr is a convenience for filling the optional TransactionInput.Priority.
func (p TransactionPriority) Ptr() *TransactionPriority {
	return &p
}

func ParseTransactionPriority(s string) (TransactionPriority, error) {
	var p TransactionPriority
	err := p.UnmarshalText([]byte(s))
	return p, err
}

// TransactionType is the domain kind of a relayed transaction.
type TransactionType int

const (
	TypeAll TransactionType = iota
	TypeSwap
	TypeTransfer
	TypeDrop
	TypeGrant
	TypeFunding
	TypeWalletDeployment
	TypeRootPropagation
	TypeNoop
	TypeBundle
)

var typeNames = []string{
	"all", "swap", "transfer", "drop", "grant", "funding",
	"walletDeployment", "rootPropagation", "noop", "bundle",
}

func (t TransactionType) String() string {
	return enumName(typeNames, int(t))
}

func (t TransactionType) MarshalText() ([]byte, error) {
	return marshalEnum("transaction type", typeNames, int(t))
}

func (t *TransactionType) UnmarshalText(text []byte) error {
	v, err := parseEnum("transaction type", typeNames, string(text))
	if err != nil {
		return err
	}
	*t = TransactionType(v)
	return nil
}

func (t TransactionType) Ptr() *TransactionType {
	return &t
}

func ParseTransactionType(s string) (TransactionType, error) {
	var t TransactionType
	err := t.UnmarshalText([]byte(s))
	return t, err
}

func enumName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("unknown(%d)", v)
	}
	return names[v]
}

func marshalEnum(kind string, names []string, v int) ([]byte, error) {
	if v < 0 || v >= len(names) {
		return nil, fmt.Errorf("invalid %s: %d", kind, v)
	}
	return []byte(names[v]), nil
}

func parseEnum(kind string, names []string, s string) (int, error) {
	for i, name := range names {
		if name == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, s)
}
