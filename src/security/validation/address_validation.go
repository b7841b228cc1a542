// src/security/validation/address_validation.go
package validation

import (
	"errors"
	"strings"

	"golang.org/x/crypto/sha3"
)

var (
	// ErrInvalidAddress marks an address that failed validation. Such
	// addresses are reported back to the caller as failures, never processed.
	ErrInvalidAddress = errors.New("invalid address")
)

const hexDigits = "0123456789abcdefABCDEF"

// CleanAddress normalizes an address to its EIP-55 checksummed form.
// All-lowercase and all-uppercase inputs are accepted and checksummed;
// mixed-case inputs must already carry a correct checksum.
func CleanAddress(address string) (string, error) {
	trimmed := strings.TrimSpace(address)
	hexPart := strings.TrimPrefix(trimmed, "0x")
	if len(hexPart) != 40 {
		return "", ErrInvalidAddress
	}
	for _, r := range hexPart {
		if !strings.ContainsRune(hexDigits, r) {
			return "", ErrInvalidAddress
		}
	}

	checksummed := checksumAddress(strings.ToLower(hexPart))

	lower := strings.ToLower(hexPart)
	upper := strings.ToUpper(hexPart)
	if hexPart != lower && hexPart != upper && "0x"+hexPart != checksummed {
		// Mixed case without a valid checksum is a typo, not a valid address.
		return "", ErrInvalidAddress
	}
	return checksummed, nil
}

// CleanAddresses splits a raw address list into checksummed good addresses
// and the original strings that failed validation.
func CleanAddresses(addresses []string) (good, bad []string) {
	for _, address := range addresses {
		cleaned, err := CleanAddress(address)
		if err != nil {
			bad = append(bad, address)
			continue
		}
		good = append(good, cleaned)
	}
	return good, bad
}

// checksumAddress applies EIP-55: each alphabetic hex digit is uppercased
// when the corresponding nibble of keccak256(lowercase hex string) is >= 8.
func checksumAddress(lowerHex string) string {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(lowerHex))
	digest := hasher.Sum(nil)

	var b strings.Builder
	b.WriteString("0x")
	for i, c := range []byte(lowerHex) {
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if c >= 'a' && c <= 'f' && nibble >= 8 {
			c -= 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}
