package signing

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/samber/mo"

	"github.com/hypercore-labs/go-hyperliquid-signer/action"
)

// HashAction computes the keccak256 connection id for an L1 action.
//
// The preimage is the msgpack encoding of the action, followed by the
// nonce as 8 big-endian bytes, then a vault marker (0x01 plus 20
// address bytes when a vault is set, a single 0x00 otherwise). When an
// expiry is set, a 0x00 marker byte plus the expiry as 8 big-endian
// bytes is appended; when it is not, nothing is appended.
func HashAction(
	a action.Action,
	nonce uint64,
	vaultAddress mo.Option[common.Address],
	expiresAfter mo.Option[uint64],
) (common.Hash, error) {
	data, err := action.Encode(a)
	if err != nil {
		return common.Hash{}, &EncodingError{Err: err}
	}

	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)
	data = append(data, nonceBytes[:]...)

	if vault, ok := vaultAddress.Get(); ok {
		data = append(data, 0x01)
		data = append(data, vault.Bytes()...)
	} else {
		data = append(data, 0x00)
	}

	if expiry, ok := expiresAfter.Get(); ok {
		var expiryBytes [8]byte
		binary.BigEndian.PutUint64(expiryBytes[:], expiry)
		data = append(data, 0x00)
		data = append(data, expiryBytes[:]...)
	}

	return crypto.Keccak256Hash(data), nil
}
