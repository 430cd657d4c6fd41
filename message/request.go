package message

import (
	"encoding/json"
	"errors"
	"fmt"
)

// QueryBy is the discriminant of a TransactionRequest on the wire.
type QueryBy string

const (
	QueryByTransactionID QueryBy = "TransactionId"
	QueryByRelayerID     QueryBy = "RelayerId"
)

// TransactionRequest is a query sent to the transactions function. It is
// implemented only by ByTransactionID and ByRelayerAndStatus.
type TransactionRequest interface {
	By() QueryBy
	sealed()
}

// ByTransactionID looks up a single transaction.
type ByTransactionID struct {
	TransactionID string `json:"transactionId"`
}

func (ByTransactionID) By() QueryBy { return QueryByTransactionID }
func (ByTransactionID) sealed()     {}

func (r ByTransactionID) MarshalJSON() ([]byte, error) {
	type plain ByTransactionID
	return json.Marshal(struct {
		By QueryBy `json:"by"`
		plain
	}{r.By(), plain(r)})
}

// ByRelayerAndStatus lists the transactions of a relayer in one status.
type ByRelayerAndStatus struct {
	RelayerID string            `json:"relayerId"`
	Status    TransactionStatus `json:"status"`
}

func (ByRelayerAndStatus) By() QueryBy { return QueryByRelayerID }
func (ByRelayerAndStatus) sealed()     {}

func (r ByRelayerAndStatus) MarshalJSON() ([]byte, error) {
	type plain ByRelayerAndStatus
	return json.Marshal(struct {
		By QueryBy `json:"by"`
		plain
	}{r.By(), plain(r)})
}

var ErrUnknownQuery = errors.New("unknown transaction request tag")

// DecodeTransactionRequest is the inverse of marshaling a TransactionRequest:
// it reads the "by" tag and decodes the matching variant.
func DecodeTransactionRequest(data []byte) (TransactionRequest, error) {
	var tag struct {
		By QueryBy `json:"by"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, err
	}

	switch tag.By {
	case QueryByTransactionID:
		var r ByTransactionID
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return r, nil
	case QueryByRelayerID:
		var r ByRelayerAndStatus
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuery, tag.By)
	}
}
