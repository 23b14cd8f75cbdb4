package action

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/hypercore-labs/go-hyperliquid-signer/internal/wire"
)

// Action is implemented by every signable exchange action. The msgpack
// encoding of an Action is the canonical byte form fed into the action
// hash: struct fields encode as a map in declaration order, absent
// optional fields are omitted entirely.
type Action interface {
	ActionType() string
}

// ============================================================================
// Leverage / Margin
// ============================================================================

type UpdateLeverageAction struct {
	Type     string `json:"type" msgpack:"type"`
	Asset    int64  `json:"asset" msgpack:"asset"`
	IsCross  bool   `json:"isCross" msgpack:"isCross"`
	Leverage int64  `json:"leverage" msgpack:"leverage"`
}

func (u UpdateLeverageAction) ActionType() string {
	return u.Type
}

// UpdateLeverageToAction builds an updateLeverage action
func UpdateLeverageToAction(
	asset int64,
	isCross bool,
	leverage int64,
) UpdateLeverageAction {
	return UpdateLeverageAction{
		Type:     "updateLeverage",
		Asset:    asset,
		IsCross:  isCross,
		Leverage: leverage,
	}
}

type UpdateIsolatedMarginAction struct {
	Type  string `json:"type" msgpack:"type"`
	Asset int64  `json:"asset" msgpack:"asset"`
	IsBuy bool   `json:"isBuy" msgpack:"isBuy"`
	Ntli  int64  `json:"ntli" msgpack:"ntli"`
}

func (u UpdateIsolatedMarginAction) ActionType() string {
	return u.Type
}

// UpdateIsolatedMarginToAction builds an updateIsolatedMargin action.
// The amount is a USD float rendered as a 6-decimal integer; amounts
// that lose precision at 6 decimals are rejected.
func UpdateIsolatedMarginToAction(
	asset int64,
	amount float64,
) (UpdateIsolatedMarginAction, error) {
	ntli, err := wire.FloatToUsdInt(amount)
	if err != nil {
		return UpdateIsolatedMarginAction{}, fmt.Errorf(
			"failed to convert margin amount: %w",
			err,
		)
	}

	return UpdateIsolatedMarginAction{
		Type:  "updateIsolatedMargin",
		Asset: asset,
		IsBuy: true,
		Ntli:  ntli,
	}, nil
}

// ============================================================================
// Transfers
// ============================================================================

type ClassTransfer struct {
	Usdc   int64 `json:"usdc" msgpack:"usdc"`
	ToPerp bool  `json:"toPerp" msgpack:"toPerp"`
}

type SpotUserAction struct {
	Type          string        `json:"type" msgpack:"type"`
	ClassTransfer ClassTransfer `json:"classTransfer" msgpack:"classTransfer"`
}

func (s SpotUserAction) ActionType() string {
	return s.Type
}

type VaultTransferAction struct {
	Type         string `json:"type" msgpack:"type"`
	VaultAddress string `json:"vaultAddress" msgpack:"vaultAddress"`
	IsDeposit    bool   `json:"isDeposit" msgpack:"isDeposit"`
	Usd          int64  `json:"usd" msgpack:"usd"`
}

func (v VaultTransferAction) ActionType() string {
	return v.Type
}

type SubAccountTransferAction struct {
	Type           string `json:"type" msgpack:"type"`
	SubAccountUser string `json:"subAccountUser" msgpack:"subAccountUser"`
	IsDeposit      bool   `json:"isDeposit" msgpack:"isDeposit"`
	Usd            int64  `json:"usd" msgpack:"usd"`
}

func (s SubAccountTransferAction) ActionType() string {
	return s.Type
}

type SubAccountSpotTransferAction struct {
	Type           string `json:"type" msgpack:"type"`
	SubAccountUser string `json:"subAccountUser" msgpack:"subAccountUser"`
	IsDeposit      bool   `json:"isDeposit" msgpack:"isDeposit"`
	Token          string `json:"token" msgpack:"token"`
	Amount         string `json:"amount" msgpack:"amount"`
}

func (s SubAccountSpotTransferAction) ActionType() string {
	return s.Type
}

type UsdClassTransferAction struct {
	Type             string `json:"type" msgpack:"type"`
	SignatureChainId string `json:"signatureChainId" msgpack:"signatureChainId"`
	HyperliquidChain string `json:"hyperliquidChain" msgpack:"hyperliquidChain"`
	Amount           string `json:"amount" msgpack:"amount"`
	ToPerp           bool   `json:"toPerp" msgpack:"toPerp"`
	Nonce            int64  `json:"nonce" msgpack:"nonce"`
}

func (u UsdClassTransferAction) ActionType() string {
	return u.Type
}

// ============================================================================
// Account settings
// ============================================================================

type SetReferrerAction struct {
	Type string `json:"type" msgpack:"type"`
	Code string `json:"code" msgpack:"code"`
}

func (s SetReferrerAction) ActionType() string {
	return s.Type
}

type EvmUserModifyAction struct {
	Type           string `json:"type" msgpack:"type"`
	UsingBigBlocks bool   `json:"usingBigBlocks" msgpack:"usingBigBlocks"`
}

func (e EvmUserModifyAction) ActionType() string {
	return e.Type
}

type ScheduleCancelAction struct {
	Type string  `json:"type" msgpack:"type"`
	Time *uint64 `json:"time,omitempty" msgpack:"time,omitempty"`
}

func (s ScheduleCancelAction) ActionType() string {
	return s.Type
}

// ScheduleCancelToAction builds a scheduleCancel (dead man's switch)
// action. A nil time clears a previously scheduled cancel.
func ScheduleCancelToAction(t *uint64) ScheduleCancelAction {
	return ScheduleCancelAction{
		Type: "scheduleCancel",
		Time: t,
	}
}

type ClaimRewardsAction struct {
	Type string `json:"type" msgpack:"type"`
}

func (c ClaimRewardsAction) ActionType() string {
	return c.Type
}

// ============================================================================
// Generic / forward-compatible
// ============================================================================

// GenericAction carries an action body the tagged union does not, or
// does not fully, describe: forward-compatible action types and
// multi-sig payloads. The body hashes exactly as written in the source
// JSON document.
type GenericAction struct {
	Body Object
}

var _ msgpack.CustomEncoder = GenericAction{}

func (g GenericAction) ActionType() string {
	v, _ := g.Body.Get("type")
	s, _ := v.(string)
	return s
}

func (g GenericAction) EncodeMsgpack(enc *msgpack.Encoder) error {
	return g.Body.EncodeMsgpack(enc)
}

// ============================================================================
// Canonical encoding
// ============================================================================

// Encode returns the canonical msgpack form of an action, the byte
// sequence the action hash is computed over. Integers take their
// shortest encoding to match the reference serializers; the reflection
// default would write them fixed-width.
func Encode(a Action) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	if err := enc.Encode(a); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ============================================================================
// Parsing
// ============================================================================

type actionCodec struct {
	newAction func() Action
	required  []string
}

// Declaration order of the typed structs fixes the canonical field
// order for each tag; required lists the top-level keys that must be
// present for the typed form to be byte-equivalent to the document.
var actionCodecs = map[string]actionCodec{
	"updateLeverage": {
		func() Action { return &UpdateLeverageAction{} },
		[]string{"asset", "isCross", "leverage"},
	},
	"updateIsolatedMargin": {
		func() Action { return &UpdateIsolatedMarginAction{} },
		[]string{"asset", "isBuy", "ntli"},
	},
	"order": {
		func() Action { return &OrderAction{} },
		[]string{"orders", "grouping"},
	},
	"cancel": {
		func() Action { return &CancelAction{} },
		[]string{"cancels"},
	},
	"cancelByCloid": {
		func() Action { return &CancelByCloidAction{} },
		[]string{"cancels"},
	},
	"batchModify": {
		func() Action { return &BatchModifyAction{} },
		[]string{"modifies"},
	},
	"spotUser": {
		func() Action { return &SpotUserAction{} },
		[]string{"classTransfer"},
	},
	"vaultTransfer": {
		func() Action { return &VaultTransferAction{} },
		[]string{"vaultAddress", "isDeposit", "usd"},
	},
	"subAccountTransfer": {
		func() Action { return &SubAccountTransferAction{} },
		[]string{"subAccountUser", "isDeposit", "usd"},
	},
	"subAccountSpotTransfer": {
		func() Action { return &SubAccountSpotTransferAction{} },
		[]string{"subAccountUser", "isDeposit", "token", "amount"},
	},
	"usdClassTransfer": {
		func() Action { return &UsdClassTransferAction{} },
		[]string{"signatureChainId", "hyperliquidChain", "amount", "toPerp", "nonce"},
	},
	"setReferrer": {
		func() Action { return &SetReferrerAction{} },
		[]string{"code"},
	},
	"evmUserModify": {
		func() Action { return &EvmUserModifyAction{} },
		[]string{"usingBigBlocks"},
	},
	"scheduleCancel": {
		func() Action { return &ScheduleCancelAction{} },
		nil,
	},
	"claimRewards": {
		func() Action { return &ClaimRewardsAction{} },
		nil,
	},
}

// Parse decodes an action JSON body into its tagged variant. Bodies
// with an unknown type tag, extra fields, or missing protocol fields
// fall back to GenericAction so they hash exactly as written; known
// well-formed bodies take the typed route, which canonicalizes field
// order to the protocol declaration order.
func Parse(data []byte) (Action, error) {
	obj, err := ParseObject(data)
	if err != nil {
		return nil, err
	}

	typeName := ""
	if v, ok := obj.Get("type"); ok {
		typeName, _ = v.(string)
	}

	codec, ok := actionCodecs[typeName]
	if !ok {
		return GenericAction{Body: obj}, nil
	}

	for _, key := range codec.required {
		if _, ok := obj.Get(key); !ok {
			return GenericAction{Body: obj}, nil
		}
	}

	a := codec.newAction()
	if err := strictUnmarshal(data, a); err != nil {
		return GenericAction{Body: obj}, nil
	}

	return a, nil
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
