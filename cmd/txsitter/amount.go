package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

var unitExponents = map[string]int32{
	"wei":   0,
	"gwei":  9,
	"ether": 18,
}

// toWei converts an amount in unit to a decimal wei string.
func toWei(amount, unit string) (string, error) {
	exp, ok := unitExponents[strings.ToLower(unit)]
	if !ok {
		return "", fmt.Errorf("unknown unit %q", unit)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", err
	}
	if d.IsNegative() {
		return "", errors.New("amount must not be negative")
	}
	wei := d.Shift(exp)
	if !wei.IsInteger() {
		return "", fmt.Errorf("%s %s is not a whole number of wei", amount, unit)
	}
	return wei.String(), nil
}

func parseGasLimit(s string) (string, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", err
	}
	if !d.IsInteger() || !d.IsPositive() {
		return "", errors.New("gas limit must be a positive integer")
	}
	return d.String(), nil
}

func checkCalldata(data string) error {
	if data == "" {
		return nil
	}
	_, err := hexutil.Decode(data)
	return err
}

func parseHash(s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid transaction hash: %w", err)
	}
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid transaction hash: want %d bytes, got %d", common.HashLength, len(b))
	}
	return common.BytesToHash(b), nil
}
