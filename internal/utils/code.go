package utils

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// CodeAlphabet is the character set ticket codes are drawn from.
const CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultCodeLength gives 36^8 (about 2.8e12) possible codes.
const DefaultCodeLength = 8

var (
	// ErrInvalidReward is returned for anything that is not a positive whole number of points.
	ErrInvalidReward = errors.New("reward must be a positive whole number")
	// ErrEmptyCode is returned for a code that is blank after trimming.
	ErrEmptyCode = errors.New("code is required")
	// ErrInvalidCode is returned for codes containing characters outside CodeAlphabet.
	ErrInvalidCode = errors.New("code must be alphanumeric")
)

var alphabetSize = big.NewInt(int64(len(CodeAlphabet)))

// GenerateCode returns a random code of the given length drawn uniformly from CodeAlphabet.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid code length %d", length)
	}
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		b.WriteByte(CodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// NormalizeCode trims and upper-cases a user supplied code and checks its alphabet.
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", ErrEmptyCode
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(CodeAlphabet, rune(code[i])) {
			return "", ErrInvalidCode
		}
	}
	return code, nil
}

// ParseReward accepts a decoded JSON value (number or numeric string) and returns it as a
// positive integer number of points.
func ParseReward(v interface{}) (int64, error) {
	var (
		d   decimal.Decimal
		err error
	)
	switch r := v.(type) {
	case float64:
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return 0, ErrInvalidReward
		}
		d = decimal.NewFromFloat(r)
	case int:
		d = decimal.NewFromInt(int64(r))
	case int64:
		d = decimal.NewFromInt(r)
	case json.Number:
		d, err = decimal.NewFromString(r.String())
		if err != nil {
			return 0, ErrInvalidReward
		}
	case string:
		d, err = decimal.NewFromString(strings.TrimSpace(r))
		if err != nil {
			return 0, ErrInvalidReward
		}
	default:
		return 0, ErrInvalidReward
	}

	if !d.IsPositive() || !d.IsInteger() || d.GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
		return 0, ErrInvalidReward
	}
	return d.IntPart(), nil
}
