package signing

import (
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// ParseKey parses a hex-encoded secp256k1 private key. A leading 0x or
// 0X marker and surrounding whitespace are accepted; anything that does
// not decode to exactly 32 key bytes is a WalletError.
func ParseKey(privateKeyHex string) (*ecdsa.PrivateKey, error) {
	raw := strings.TrimSpace(privateKeyHex)
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		raw = raw[2:]
	}

	key, err := crypto.HexToECDSA(raw)
	if err != nil {
		return nil, &WalletError{Err: err}
	}

	return key, nil
}

// DeriveAddress returns the EIP-55 checksummed address controlled by
// the given private key: the low 20 bytes of the Keccak256 hash of the
// uncompressed public key without its prefix byte.
func DeriveAddress(privateKeyHex string) (string, error) {
	key, err := ParseKey(privateKeyHex)
	if err != nil {
		return "", err
	}

	return crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
}
