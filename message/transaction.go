// Package message defines every shape exchanged with the tx-sitter functions.
//
// Amounts (value, gasLimit) travel as decimal strings so no precision is lost
// between the caller, the sitter and the chain.
package message

// TransactionInput is what a caller asks the sitter to relay.
type TransactionInput struct {
	To       string `json:"to"`
	Data     string `json:"data,omitempty"` // hex calldata, omitted when empty
	Value    string `json:"value"`
	GasLimit string `json:"gasLimit"`

	RelayerID string `json:"relayerId"`

	// TransactionID is an optional idempotency key chosen by the caller.
	TransactionID   *string              `json:"transactionId,omitempty"`
	Priority        *TransactionPriority `json:"priority,omitempty"`
	TransactionType *TransactionType     `json:"transactionType,omitempty"`
}

// TransactionInputFields are the keys a TransactionInput-shaped record must carry.
var TransactionInputFields = []string{"to", "value", "gasLimit", "relayerId"}

// Transaction is the sitter's record of a relayed transaction.
type Transaction struct {
	ID string `json:"id"`
	TransactionInput
	// TxHash is the on-chain hash once the transaction has been broadcast.
	TxHash string `json:"txHash"`
}

// TransactionFields are the keys a Transaction record must carry.
var TransactionFields = []string{"id", "to", "value", "gasLimit", "relayerId", "txHash"}

// SendResponse is the reply of the send function. Result holds the
// transaction id assigned by the sitter.
type SendResponse struct {
	ID      uint64 `json:"id"`
	JSONRPC string `json:"jsonrpc"`
	Result  string `json:"result"`
}

// SendResponseFields are the keys a SendResponse must carry.
var SendResponseFields = []string{"id", "jsonrpc", "result"}

// CreateRelayerRequest describes a new relayer identity.
type CreateRelayerRequest struct {
	Name           string         `json:"name"`
	Network        string         `json:"network"`
	RelayerDetails RelayerDetails `json:"relayerDetails"`
}

type RelayerDetails struct {
	TransactionType TransactionType `json:"transactionType"`
	MaxL1GasPrice   string          `json:"maxL1GasPrice"`
	MaxL2GasPrice   string          `json:"maxL2GasPrice"`
}
