package signing

import (
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// ChecksumAddress normalizes an Ethereum address to its EIP-55
// mixed-case checksum form. The input may carry a 0x prefix and
// mixed-case hex; anything that is not exactly 40 hex characters after
// stripping the prefix is rejected with InvalidAddressError.
func ChecksumAddress(address string) (string, error) {
	addr := strings.TrimSpace(address)
	addr = strings.TrimPrefix(addr, "0x")
	addr = strings.TrimPrefix(addr, "0X")

	if len(addr) != 40 {
		return "", &InvalidAddressError{Input: address}
	}

	lower := strings.ToLower(addr)
	for _, c := range lower {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", &InvalidAddressError{Input: address}
		}
	}

	hash := crypto.Keccak256([]byte(lower))

	out := make([]byte, 0, 42)
	out = append(out, '0', 'x')
	for i := 0; i < 40; i++ {
		c := lower[i]
		if c >= 'a' && c <= 'f' {
			nibble := hash[i/2]
			if i%2 == 0 {
				nibble >>= 4
			} else {
				nibble &= 0x0f
			}
			if nibble >= 8 {
				c = c - 'a' + 'A'
			}
		}
		out = append(out, c)
	}

	return string(out), nil
}
