package message

// Role names which of the three sitter functions an invocation targets.
type Role string

const (
	RoleSend         Role = "send"
	RoleRPC          Role = "rpc"
	RoleTransactions Role = "transactions"
)

// Invocation is one call on the invocation channel. Function is the opaque
// identifier (for Lambda: a name or ARN) configured for Role.
type Invocation struct {
	Role     Role
	Function string
	Payload  []byte
}
