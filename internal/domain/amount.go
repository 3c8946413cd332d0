package domain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// CloneAmount returns a copy of the amount, treating nil as zero
func CloneAmount(a *big.Int) *big.Int {
	if a == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a)
}

// AmountString formats an amount as a base-10 string, treating nil as zero
func AmountString(a *big.Int) string {
	if a == nil {
		return "0"
	}
	return a.String()
}

// IsPositive reports whether the amount is strictly greater than zero
func IsPositive(a *big.Int) bool {
	return a != nil && a.Sign() > 0
}

// ParseAmount parses a non-negative base-10 integer amount in the smallest unit
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty amount", ErrInvalidPrice)
	}
	a, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an integer amount", ErrInvalidPrice, s)
	}
	if a.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidPrice, s)
	}
	return a, nil
}

// NormalizeAddress validates a hex address and returns its EIP-55 checksummed form
func NormalizeAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if !common.IsHexAddress(addr) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return common.HexToAddress(addr).Hex(), nil
}
