// Package signing implements the cryptographic core of the Hyperliquid
// exchange protocol: canonical msgpack action hashing, EIP-712 typed
// data digesting for both the fixed protocol payloads and arbitrary
// caller-supplied schemas, and secp256k1 signing with Ethereum V
// normalization.
package signing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/samber/mo"

	"github.com/hypercore-labs/go-hyperliquid-signer/action"
)

// ComputeActionHash parses an action body and computes its connection
// id for the given nonce, optional vault address and optional expiry.
func ComputeActionHash(
	actionJSON []byte,
	nonce uint64,
	vaultAddress mo.Option[common.Address],
	expiresAfter mo.Option[uint64],
) (common.Hash, error) {
	act, err := action.Parse(actionJSON)
	if err != nil {
		return common.Hash{}, &ParseError{What: "action", Err: err}
	}

	return HashAction(act, nonce, vaultAddress, expiresAfter)
}

// SignL1Action signs a precomputed connection id under the Exchange
// agent domain. The source field is "a" on mainnet and "b" otherwise.
func SignL1Action(
	privateKeyHex string,
	connectionId common.Hash,
	isMainnet bool,
) (Result, error) {
	key, err := ParseKey(privateKeyHex)
	if err != nil {
		return Result{}, err
	}

	phantomAgent := constructPhantomAgent(connectionId, isMainnet)

	digest, err := digestTypedData(l1Payload(phantomAgent))
	if err != nil {
		return Result{}, err
	}

	sig, err := SignHash(digest, key)
	if err != nil {
		return Result{}, err
	}

	return newResult(sig, mo.Some(connectionId)), nil
}

// SignExchangeAction hashes an action body into its connection id and
// signs it as an L1 action. The result carries the connection id so the
// caller can assemble the exchange request without rehashing.
func SignExchangeAction(
	privateKeyHex string,
	actionJSON []byte,
	nonce uint64,
	isMainnet bool,
	vaultAddress mo.Option[common.Address],
	expiresAfter mo.Option[uint64],
) (Result, error) {
	connectionId, err := ComputeActionHash(
		actionJSON,
		nonce,
		vaultAddress,
		expiresAfter,
	)
	if err != nil {
		return Result{}, err
	}

	return SignL1Action(privateKeyHex, connectionId, isMainnet)
}

// SignMultiSigAction hashes a multiSig action body and signs it under
// the HyperliquidTransaction:SendMultiSig shape. The body must be a
// JSON object carrying signatureChainId as a 0x hex string or a
// number; that chain id also parameterizes the signing domain. The
// body is hashed exactly as written, field order preserved.
func SignMultiSigAction(
	privateKeyHex string,
	actionJSON []byte,
	nonce uint64,
	isMainnet bool,
	vaultAddress mo.Option[common.Address],
	expiresAfter mo.Option[uint64],
) (Result, error) {
	key, err := ParseKey(privateKeyHex)
	if err != nil {
		return Result{}, err
	}

	body, err := action.ParseObject(actionJSON)
	if err != nil {
		return Result{}, &ParseError{What: "action", Err: err}
	}

	chainIdValue, ok := body.Get("signatureChainId")
	if !ok {
		return Result{}, &ParseError{
			What: "action",
			Err:  fmt.Errorf("missing signatureChainId"),
		}
	}

	signatureChainId, err := parseSignatureChainId(chainIdValue)
	if err != nil {
		return Result{}, err
	}

	actionHash, err := HashAction(
		action.GenericAction{Body: body},
		nonce,
		vaultAddress,
		expiresAfter,
	)
	if err != nil {
		return Result{}, err
	}

	digest, err := digestTypedData(sendMultiSigPayload(
		actionHash,
		nonce,
		signatureChainId,
		isMainnet,
	))
	if err != nil {
		return Result{}, err
	}

	sig, err := SignHash(digest, key)
	if err != nil {
		return Result{}, err
	}

	return newResult(sig, mo.None[common.Hash]()), nil
}

func parseSignatureChainId(v action.Value) (uint64, error) {
	switch cid := v.(type) {
	case string:
		if !strings.HasPrefix(cid, "0x") && !strings.HasPrefix(cid, "0X") {
			return 0, &ParseError{
				What: "action",
				Err:  fmt.Errorf("invalid signatureChainId: %q", cid),
			}
		}
		parsed, err := strconv.ParseUint(cid[2:], 16, 64)
		if err != nil {
			return 0, &ParseError{
				What: "action",
				Err:  fmt.Errorf("invalid signatureChainId: %w", err),
			}
		}
		return parsed, nil
	case int64:
		if cid < 0 {
			return 0, &ParseError{
				What: "action",
				Err:  fmt.Errorf("negative signatureChainId %d", cid),
			}
		}
		return uint64(cid), nil
	case uint64:
		return cid, nil
	default:
		return 0, &ParseError{
			What: "action",
			Err:  fmt.Errorf("invalid signatureChainId type %T", v),
		}
	}
}

// SignTypedData signs arbitrary EIP-712 typed data supplied as raw
// JSON fragments for the domain, the type graph and the message.
func SignTypedData(
	privateKeyHex string,
	domainJSON, typesJSON, messageJSON []byte,
	primaryType string,
) (Result, error) {
	key, err := ParseKey(privateKeyHex)
	if err != nil {
		return Result{}, err
	}

	typedData, err := assembleTypedData(
		domainJSON,
		typesJSON,
		messageJSON,
		primaryType,
	)
	if err != nil {
		return Result{}, err
	}

	digest, err := digestTypedData(typedData)
	if err != nil {
		return Result{}, err
	}

	sig, err := SignHash(digest, key)
	if err != nil {
		return Result{}, err
	}

	return newResult(sig, mo.None[common.Hash]()), nil
}

// SignUsdSend signs a perp USDC transfer to another address.
func SignUsdSend(
	privateKeyHex string,
	destination, amount string,
	time uint64,
	isMainnet bool,
) (Result, error) {
	return signUserPayload(
		privateKeyHex,
		usdSendPayload(destination, amount, time, isMainnet),
	)
}

// SignWithdraw signs a withdrawal of USDC to an external chain.
func SignWithdraw(
	privateKeyHex string,
	destination, amount string,
	time uint64,
	isMainnet bool,
) (Result, error) {
	return signUserPayload(
		privateKeyHex,
		withdrawPayload(destination, amount, time, isMainnet),
	)
}

// SignSpotSend signs a spot token transfer to another address.
func SignSpotSend(
	privateKeyHex string,
	destination, token, amount string,
	time uint64,
	isMainnet bool,
) (Result, error) {
	return signUserPayload(
		privateKeyHex,
		spotSendPayload(destination, token, amount, time, isMainnet),
	)
}

// SignApproveBuilderFee signs an approval allowing a builder address to
// charge up to maxFeeRate on the signer's orders.
func SignApproveBuilderFee(
	privateKeyHex string,
	builder string,
	maxFeeRate string,
	nonce uint64,
	isMainnet bool,
) (Result, error) {
	builderAddr, err := parseAddress(builder)
	if err != nil {
		return Result{}, err
	}

	return signUserPayload(
		privateKeyHex,
		approveBuilderFeePayload(builderAddr, maxFeeRate, nonce, isMainnet),
	)
}

// SignApproveAgent signs an approval registering an agent wallet that
// may sign L1 actions on the signer's behalf. An absent agent name is
// digested as the empty string.
func SignApproveAgent(
	privateKeyHex string,
	agentAddress string,
	agentName mo.Option[string],
	nonce uint64,
	isMainnet bool,
) (Result, error) {
	agentAddr, err := parseAddress(agentAddress)
	if err != nil {
		return Result{}, err
	}

	return signUserPayload(
		privateKeyHex,
		approveAgentPayload(
			agentAddr,
			agentName.OrElse(""),
			nonce,
			isMainnet,
		),
	)
}

func signUserPayload(
	privateKeyHex string,
	payload apitypes.TypedData,
) (Result, error) {
	key, err := ParseKey(privateKeyHex)
	if err != nil {
		return Result{}, err
	}

	digest, err := digestTypedData(payload)
	if err != nil {
		return Result{}, err
	}

	sig, err := SignHash(digest, key)
	if err != nil {
		return Result{}, err
	}

	return newResult(sig, mo.None[common.Hash]()), nil
}

func parseAddress(address string) (common.Address, error) {
	addr := strings.TrimSpace(address)
	if !common.IsHexAddress(addr) {
		return common.Address{}, &InvalidAddressError{Input: address}
	}
	return common.HexToAddress(addr), nil
}
