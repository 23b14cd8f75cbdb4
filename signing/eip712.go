package signing

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/hypercore-labs/go-hyperliquid-signer/constants"
)

var domainFields = []apitypes.Type{
	{Name: "name", Type: "string"},
	{Name: "version", Type: "string"},
	{Name: "chainId", Type: "uint256"},
	{Name: "verifyingContract", Type: "address"},
}

func constructPhantomAgent(
	hash common.Hash,
	isMainnet bool,
) apitypes.TypedDataMessage {
	var source string
	if isMainnet {
		source = "a"
	} else {
		source = "b"
	}

	return apitypes.TypedDataMessage{
		"source":       source,
		"connectionId": hash,
	}
}

func l1Payload(
	phantomAgent apitypes.TypedDataMessage,
) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": domainFields,
			"Agent": {
				{Name: "source", Type: "string"},
				{Name: "connectionId", Type: "bytes32"},
			},
		},
		PrimaryType: "Agent",
		Domain: apitypes.TypedDataDomain{
			Name:              "Exchange",
			Version:           "1",
			ChainId:           math.NewHexOrDecimal256(constants.L1_CHAIN_ID),
			VerifyingContract: constants.ZERO_ADDRESS,
		},
		Message: phantomAgent,
	}
}

// txDomain is the domain under which user-signed exchange transactions
// (UsdSend, Withdraw, SpotSend, builder fee and agent approvals,
// SendMultiSig) are digested.
func txDomain(chainId uint64) apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              "HyperliquidSignTransaction",
		Version:           "1",
		ChainId:           (*math.HexOrDecimal256)(new(big.Int).SetUint64(chainId)),
		VerifyingContract: constants.ZERO_ADDRESS,
	}
}

// userSignedPayload assembles the typed data for one of the fixed
// HyperliquidTransaction:* message shapes. Field order in fields is the
// protocol order and must not be rearranged.
func userSignedPayload(
	primaryType string,
	fields []apitypes.Type,
	chainId uint64,
	message apitypes.TypedDataMessage,
) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": domainFields,
			primaryType:    fields,
		},
		PrimaryType: primaryType,
		Domain:      txDomain(chainId),
		Message:     message,
	}
}

func hyperliquidChain(isMainnet bool) string {
	if isMainnet {
		return constants.MAINNET_CHAIN_NAME
	}
	return constants.TESTNET_CHAIN_NAME
}

// digestTypedData hashes an assembled typed-data payload to its 32-byte
// EIP-712 signing digest.
func digestTypedData(typedData apitypes.TypedData) (common.Hash, error) {
	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return common.Hash{}, &TypedDataError{Err: err}
	}
	return common.BytesToHash(hash), nil
}

func usdSendPayload(
	destination, amount string,
	time uint64,
	isMainnet bool,
) apitypes.TypedData {
	return userSignedPayload(
		"HyperliquidTransaction:UsdSend",
		[]apitypes.Type{
			{Name: "hyperliquidChain", Type: "string"},
			{Name: "destination", Type: "string"},
			{Name: "amount", Type: "string"},
			{Name: "time", Type: "uint64"},
		},
		constants.SIGNATURE_CHAIN_ID,
		apitypes.TypedDataMessage{
			"hyperliquidChain": hyperliquidChain(isMainnet),
			"destination":      destination,
			"amount":           amount,
			"time":             math.NewHexOrDecimal256(int64(time)),
		},
	)
}

func withdrawPayload(
	destination, amount string,
	time uint64,
	isMainnet bool,
) apitypes.TypedData {
	return userSignedPayload(
		"HyperliquidTransaction:Withdraw",
		[]apitypes.Type{
			{Name: "hyperliquidChain", Type: "string"},
			{Name: "destination", Type: "string"},
			{Name: "amount", Type: "string"},
			{Name: "time", Type: "uint64"},
		},
		constants.SIGNATURE_CHAIN_ID,
		apitypes.TypedDataMessage{
			"hyperliquidChain": hyperliquidChain(isMainnet),
			"destination":      destination,
			"amount":           amount,
			"time":             math.NewHexOrDecimal256(int64(time)),
		},
	)
}

func spotSendPayload(
	destination, token, amount string,
	time uint64,
	isMainnet bool,
) apitypes.TypedData {
	return userSignedPayload(
		"HyperliquidTransaction:SpotSend",
		[]apitypes.Type{
			{Name: "hyperliquidChain", Type: "string"},
			{Name: "destination", Type: "string"},
			{Name: "token", Type: "string"},
			{Name: "amount", Type: "string"},
			{Name: "time", Type: "uint64"},
		},
		constants.SIGNATURE_CHAIN_ID,
		apitypes.TypedDataMessage{
			"hyperliquidChain": hyperliquidChain(isMainnet),
			"destination":      destination,
			"token":            token,
			"amount":           amount,
			"time":             math.NewHexOrDecimal256(int64(time)),
		},
	)
}

func approveBuilderFeePayload(
	builder common.Address,
	maxFeeRate string,
	nonce uint64,
	isMainnet bool,
) apitypes.TypedData {
	return userSignedPayload(
		"HyperliquidTransaction:ApproveBuilderFee",
		[]apitypes.Type{
			{Name: "hyperliquidChain", Type: "string"},
			{Name: "maxFeeRate", Type: "string"},
			{Name: "builder", Type: "address"},
			{Name: "nonce", Type: "uint64"},
		},
		constants.SIGNATURE_CHAIN_ID,
		apitypes.TypedDataMessage{
			"hyperliquidChain": hyperliquidChain(isMainnet),
			"maxFeeRate":       maxFeeRate,
			"builder":          builder.Hex(),
			"nonce":            math.NewHexOrDecimal256(int64(nonce)),
		},
	)
}

func approveAgentPayload(
	agentAddress common.Address,
	agentName string,
	nonce uint64,
	isMainnet bool,
) apitypes.TypedData {
	return userSignedPayload(
		"HyperliquidTransaction:ApproveAgent",
		[]apitypes.Type{
			{Name: "hyperliquidChain", Type: "string"},
			{Name: "agentAddress", Type: "address"},
			{Name: "agentName", Type: "string"},
			{Name: "nonce", Type: "uint64"},
		},
		constants.SIGNATURE_CHAIN_ID,
		apitypes.TypedDataMessage{
			"hyperliquidChain": hyperliquidChain(isMainnet),
			"agentAddress":     agentAddress.Hex(),
			"agentName":        agentName,
			"nonce":            math.NewHexOrDecimal256(int64(nonce)),
		},
	)
}

func sendMultiSigPayload(
	actionHash common.Hash,
	nonce uint64,
	signatureChainId uint64,
	isMainnet bool,
) apitypes.TypedData {
	return userSignedPayload(
		"HyperliquidTransaction:SendMultiSig",
		[]apitypes.Type{
			{Name: "hyperliquidChain", Type: "string"},
			{Name: "multiSigActionHash", Type: "bytes32"},
			{Name: "nonce", Type: "uint64"},
		},
		signatureChainId,
		apitypes.TypedDataMessage{
			"hyperliquidChain":   hyperliquidChain(isMainnet),
			"multiSigActionHash": actionHash,
			"nonce":              math.NewHexOrDecimal256(int64(nonce)),
		},
	)
}

// assembleTypedData builds an apitypes.TypedData from caller-supplied
// JSON fragments. When the type graph omits EIP712Domain, one is
// synthesized from the fields present in the domain itself, in the
// standard order.
func assembleTypedData(
	domainJSON, typesJSON, messageJSON []byte,
	primaryType string,
) (apitypes.TypedData, error) {
	var typedData apitypes.TypedData

	var domain apitypes.TypedDataDomain
	if err := json.Unmarshal(domainJSON, &domain); err != nil {
		return typedData, &ParseError{What: "domain", Err: err}
	}

	var types apitypes.Types
	if err := json.Unmarshal(typesJSON, &types); err != nil {
		return typedData, &ParseError{What: "types", Err: err}
	}

	var message apitypes.TypedDataMessage
	if err := json.Unmarshal(messageJSON, &message); err != nil {
		return typedData, &ParseError{What: "message", Err: err}
	}

	// A JSON null leaves the map nil
	if types == nil {
		types = apitypes.Types{}
	}

	if _, ok := types["EIP712Domain"]; !ok {
		types["EIP712Domain"] = synthesizeDomainType(domain)
	}

	if _, ok := types[primaryType]; !ok {
		return typedData, &TypedDataError{
			Err: fmt.Errorf("unknown primary type %q", primaryType),
		}
	}

	typedData = apitypes.TypedData{
		Types:       types,
		PrimaryType: primaryType,
		Domain:      domain,
		Message:     message,
	}

	return typedData, nil
}

func synthesizeDomainType(domain apitypes.TypedDataDomain) []apitypes.Type {
	var fields []apitypes.Type
	if domain.Name != "" {
		fields = append(fields, apitypes.Type{Name: "name", Type: "string"})
	}
	if domain.Version != "" {
		fields = append(fields, apitypes.Type{Name: "version", Type: "string"})
	}
	if domain.ChainId != nil {
		fields = append(fields, apitypes.Type{Name: "chainId", Type: "uint256"})
	}
	if domain.VerifyingContract != "" {
		fields = append(
			fields,
			apitypes.Type{Name: "verifyingContract", Type: "address"},
		)
	}
	if domain.Salt != "" {
		fields = append(fields, apitypes.Type{Name: "salt", Type: "bytes32"})
	}
	return fields
}
