package signing

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/samber/mo"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/hypercore-labs/go-hyperliquid-signer/action"
)

// Signature is an ECDSA signature over a 32-byte digest, with V in the
// Ethereum 27/28 convention.
type Signature struct {
	R common.Hash
	S common.Hash
	V byte
}

// SignHash signs a 32-byte digest with deterministic nonce derivation
// and normalizes the recovery id to 27/28.
func SignHash(hash common.Hash, key *ecdsa.PrivateKey) (Signature, error) {
	var out Signature

	sig, err := crypto.Sign(hash.Bytes(), key)
	if err != nil {
		return out, &SignatureError{Err: err}
	}

	if len(sig) != 65 {
		return out, &SignatureError{
			Err: fmt.Errorf("invalid signature length: %d", len(sig)),
		}
	}

	// sig = [R || S || V]
	copy(out.R[:], sig[:32])
	copy(out.S[:], sig[32:64])
	v := sig[64]

	// Ethereum canonical V = 27 or 28
	if v < 27 {
		v += 27
	}

	out.V = v

	return out, nil
}

// Wire converts the signature to the hex triple embedded in multi-sig
// action bodies.
func (s Signature) Wire() action.SignatureWire {
	return action.SignatureWire{
		R: hexutil.Encode(s.R[:]),
		S: hexutil.Encode(s.S[:]),
		V: uint8(s.V),
	}
}

// MarshalJSON encodes the signature as:
// { "r": "0x...", "s": "0x...", "v": <number> }
func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Wire())
}

var _ msgpack.CustomEncoder = (*Signature)(nil)

func (s *Signature) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(s.Wire())
}

// UnmarshalJSON decodes from:
// { "r": "0x...", "s": "0x...", "v": <number> }
func (s *Signature) UnmarshalJSON(data []byte) error {
	var w action.SignatureWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	rBytes, err := hexutil.Decode(w.R)
	if err != nil {
		return fmt.Errorf("invalid r: %w", err)
	}
	if len(rBytes) != len(s.R) {
		return fmt.Errorf(
			"invalid r length: got %d, want %d",
			len(rBytes),
			len(s.R),
		)
	}
	copy(s.R[:], rBytes)

	sBytes, err := hexutil.Decode(w.S)
	if err != nil {
		return fmt.Errorf("invalid s: %w", err)
	}
	if len(sBytes) != len(s.S) {
		return fmt.Errorf(
			"invalid s length: got %d, want %d",
			len(sBytes),
			len(s.S),
		)
	}
	copy(s.S[:], sBytes)

	s.V = byte(w.V)

	return nil
}

func (s Signature) String() string {
	return fmt.Sprintf(
		"R: %s, S: %s, V: %d",
		hexutil.Encode(s.R[:]),
		hexutil.Encode(s.S[:]),
		s.V,
	)
}

// Result is the outcome of a signing operation. R and S are zero-padded
// to 64 hex characters regardless of magnitude; Signature is the
// 65-byte r||s||v concatenation. ConnectionId is set only by L1-style
// operations.
type Result struct {
	Signature    string `json:"signature"`
	R            string `json:"r"`
	S            string `json:"s"`
	V            uint64 `json:"v"`
	ConnectionId string `json:"connectionId,omitempty"`
}

func newResult(sig Signature, connectionId mo.Option[common.Hash]) Result {
	combined := make([]byte, 0, 65)
	combined = append(combined, sig.R[:]...)
	combined = append(combined, sig.S[:]...)
	combined = append(combined, sig.V)

	res := Result{
		Signature: hexutil.Encode(combined),
		R:         hexutil.Encode(sig.R[:]),
		S:         hexutil.Encode(sig.S[:]),
		V:         uint64(sig.V),
	}

	if cid, ok := connectionId.Get(); ok {
		res.ConnectionId = cid.Hex()
	}

	return res
}
