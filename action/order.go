package action

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/mo"

	"github.com/hypercore-labs/go-hyperliquid-signer/internal/wire"
	"github.com/hypercore-labs/go-hyperliquid-signer/types"
)

// ============================================================================
// Order types
// ============================================================================

type OrderType struct {
	Limit   *LimitOrder
	Trigger *TriggerOrder
}

type LimitOrder struct {
	Tif string `json:"tif" msgpack:"tif"`
}

type TriggerOrder struct {
	IsMarket  bool
	TriggerPx float64
	TpSl      string
}

type OrderTypeWire struct {
	Limit   *LimitOrder       `json:"limit,omitempty" msgpack:"limit,omitempty"`
	Trigger *TriggerOrderWire `json:"trigger,omitempty" msgpack:"trigger,omitempty"`
}

type TriggerOrderWire struct {
	IsMarket  bool   `json:"isMarket" msgpack:"isMarket"`
	TriggerPx string `json:"triggerPx" msgpack:"triggerPx"`
	TpSl      string `json:"tpsl" msgpack:"tpsl"`
}

type BuilderInfo struct {
	// Lowercase hex address of the builder
	Builder string `json:"b" msgpack:"b"`
	// Amount of the fee in tenths of basis points.
	// eg. 10 means 1 basis point
	Fee int64 `json:"f" msgpack:"f"`
}

// ToWire converts OrderType to wire format
func (t OrderType) ToWire() (OrderTypeWire, error) {
	w := OrderTypeWire{}

	if t.Limit != nil {
		w.Limit = &LimitOrder{
			Tif: t.Limit.Tif,
		}
	}

	if t.Trigger != nil {
		triggerPxStr, err := wire.FloatToWire(t.Trigger.TriggerPx)
		if err != nil {
			return OrderTypeWire{}, fmt.Errorf(
				"failed to convert trigger price: %w",
				err,
			)
		}

		w.Trigger = &TriggerOrderWire{
			IsMarket:  t.Trigger.IsMarket,
			TriggerPx: triggerPxStr,
			TpSl:      t.Trigger.TpSl,
		}
	}

	return w, nil
}

// ============================================================================
// Order wire
// ============================================================================

type OrderWire struct {
	A int64         `json:"a" msgpack:"a"`
	B bool          `json:"b" msgpack:"b"`
	P string        `json:"p" msgpack:"p"`
	S string        `json:"s" msgpack:"s"`
	R bool          `json:"r" msgpack:"r"`
	T OrderTypeWire `json:"t" msgpack:"t"`
	C *types.Cloid  `json:"c,omitempty" msgpack:"c,omitempty"`
}

type orderWireOption func(*orderWireConfig)

type orderWireConfig struct {
	reduceOnly bool
	cloid      mo.Option[types.Cloid]
}

// WithReduceOnly sets the reduce-only flag
func WithReduceOnly(reduceOnly bool) orderWireOption {
	return func(cfg *orderWireConfig) {
		cfg.reduceOnly = reduceOnly
	}
}

// WithCloid sets the client order ID
func WithCloid(c types.Cloid) orderWireOption {
	return func(cfg *orderWireConfig) {
		cfg.cloid = mo.Some(c)
	}
}

// NewOrderWire converts an order into wire format, rendering size and
// price as wire decimal strings
func NewOrderWire(
	asset int64,
	isBuy bool,
	sz float64,
	limitPx float64,
	orderType OrderType,
	opts ...orderWireOption,
) (OrderWire, error) {
	cfg := orderWireConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	sizeStr, err := wire.FloatToWire(sz)
	if err != nil {
		return OrderWire{}, fmt.Errorf("failed to convert size: %w", err)
	}

	priceStr, err := wire.FloatToWire(limitPx)
	if err != nil {
		return OrderWire{}, fmt.Errorf("failed to convert limit price: %w", err)
	}

	orderTypeWire, err := orderType.ToWire()
	if err != nil {
		return OrderWire{}, fmt.Errorf("failed to convert order type: %w", err)
	}

	return OrderWire{
		A: asset,
		B: isBuy,
		P: priceStr,
		S: sizeStr,
		R: cfg.reduceOnly,
		T: orderTypeWire,
		C: cfg.cloid.ToPointer(),
	}, nil
}

// UnmarshalJSON accepts both the short wire keys and their long-form
// aliases (asset, isBuy, limitPx, sz, reduceOnly, orderType, cloid),
// canonicalizing to the wire form. Unknown keys and key/alias
// duplicates are rejected.
func (w *OrderWire) UnmarshalJSON(data []byte) error {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if err := takeAliased(fields, "a", "asset", &w.A); err != nil {
		return err
	}
	if err := takeAliased(fields, "b", "isBuy", &w.B); err != nil {
		return err
	}

	rawP, err := takeRequired(fields, "p", "limitPx")
	if err != nil {
		return err
	}
	if w.P, err = wireDecimal(rawP); err != nil {
		return err
	}

	rawS, err := takeRequired(fields, "s", "sz")
	if err != nil {
		return err
	}
	if w.S, err = wireDecimal(rawS); err != nil {
		return err
	}

	// reduceOnly defaults to false when absent
	w.R = false
	raw, err := takeOptional(fields, "r", "reduceOnly")
	if err != nil {
		return err
	}
	if raw != nil {
		if err := json.Unmarshal(raw, &w.R); err != nil {
			return err
		}
	}

	if err := takeAliased(fields, "t", "orderType", &w.T); err != nil {
		return err
	}

	if raw, err = takeOptional(fields, "c", "cloid"); err != nil {
		return err
	}
	w.C = nil
	if raw != nil && !bytes.Equal(raw, []byte("null")) {
		var c types.Cloid
		if err := json.Unmarshal(raw, &c); err != nil {
			return err
		}
		w.C = &c
	}

	for key := range fields {
		return fmt.Errorf("unknown field %q", key)
	}

	return nil
}

type OrderAction struct {
	Type     string        `json:"type" msgpack:"type"`
	Orders   []OrderWire   `json:"orders" msgpack:"orders"`
	Grouping OrderGrouping `json:"grouping" msgpack:"grouping"`
	Builder  *BuilderInfo  `json:"builder,omitempty" msgpack:"builder,omitempty"`
}

type OrderGrouping string

const (
	OrderGroupingNA           OrderGrouping = "na"
	OrderGroupingNormalTpSl   OrderGrouping = "normalTpsl"
	OrderGroupingPositionTpSl OrderGrouping = "positionTpsl"
)

func (o OrderAction) ActionType() string {
	return o.Type
}

// OrdersToAction converts a list of order wires to an order action
func OrdersToAction(
	orders []OrderWire,
	builder mo.Option[BuilderInfo],
	grouping mo.Option[OrderGrouping],
) OrderAction {
	action := OrderAction{
		Type:   "order",
		Orders: orders,
	}

	if g, ok := grouping.Get(); ok {
		action.Grouping = g
	} else {
		action.Grouping = OrderGroupingNA
	}

	if b, ok := builder.Get(); ok {
		action.Builder = &b
	}

	return action
}

// ============================================================================
// Cancel
// ============================================================================

type CancelWire struct {
	AssetId int64 `json:"a" msgpack:"a"`
	Oid     int64 `json:"o" msgpack:"o"`
}

// UnmarshalJSON accepts asset/oid as aliases for the short wire keys.
func (w *CancelWire) UnmarshalJSON(data []byte) error {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if err := takeAliased(fields, "a", "asset", &w.AssetId); err != nil {
		return err
	}
	if err := takeAliased(fields, "o", "oid", &w.Oid); err != nil {
		return err
	}

	for key := range fields {
		return fmt.Errorf("unknown field %q", key)
	}

	return nil
}

func takeAliased(
	fields map[string]json.RawMessage,
	short, long string,
	v any,
) error {
	raw, err := takeRequired(fields, short, long)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func takeRequired(
	fields map[string]json.RawMessage,
	short, long string,
) (json.RawMessage, error) {
	raw, err := takeOptional(fields, short, long)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("missing field %q", short)
	}
	return raw, nil
}

// wireDecimal decodes a price or size field. Wire documents carry these
// as decimal strings, kept exactly as written; long-form bodies from
// other SDKs may carry raw numbers instead, which render through the
// wire decimal formatter.
func wireDecimal(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var f types.FloatString
	if err := json.Unmarshal(raw, &f); err != nil {
		return "", err
	}
	return wire.FloatToWire(f.Raw())
}

func takeOptional(
	fields map[string]json.RawMessage,
	short, long string,
) (json.RawMessage, error) {
	s, okShort := fields[short]
	l, okLong := fields[long]
	delete(fields, short)
	delete(fields, long)
	if okShort && okLong {
		return nil, fmt.Errorf("duplicate field %q/%q", short, long)
	}
	if okLong {
		return l, nil
	}
	return s, nil
}

type CancelAction struct {
	Type    string       `json:"type" msgpack:"type"`
	Cancels []CancelWire `json:"cancels" msgpack:"cancels"`
}

func (c CancelAction) ActionType() string {
	return c.Type
}

// CancelsToAction converts a list of cancel wires to a cancel action
func CancelsToAction(cancels []CancelWire) CancelAction {
	return CancelAction{
		Type:    "cancel",
		Cancels: cancels,
	}
}

type CancelByCloidWire struct {
	AssetId int64       `json:"asset" msgpack:"asset"`
	Cloid   types.Cloid `json:"cloid" msgpack:"cloid"`
}

type CancelByCloidAction struct {
	Type    string              `json:"type" msgpack:"type"`
	Cancels []CancelByCloidWire `json:"cancels" msgpack:"cancels"`
}

func (c CancelByCloidAction) ActionType() string {
	return c.Type
}

// CancelsByCloidToAction converts a list of cancel-by-cloid wires to a
// cancelByCloid action
func CancelsByCloidToAction(cancels []CancelByCloidWire) CancelByCloidAction {
	return CancelByCloidAction{
		Type:    "cancelByCloid",
		Cancels: cancels,
	}
}

// ============================================================================
// Modify
// ============================================================================

type ModifyWire struct {
	Oid   int64     `json:"o" msgpack:"o"`
	Order OrderWire `json:"order" msgpack:"order"`
}

// UnmarshalJSON accepts oid as an alias for the short wire key.
func (w *ModifyWire) UnmarshalJSON(data []byte) error {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if err := takeAliased(fields, "o", "oid", &w.Oid); err != nil {
		return err
	}

	raw, ok := fields["order"]
	delete(fields, "order")
	if !ok {
		return fmt.Errorf("missing field %q", "order")
	}
	if err := json.Unmarshal(raw, &w.Order); err != nil {
		return err
	}

	for key := range fields {
		return fmt.Errorf("unknown field %q", key)
	}

	return nil
}

type BatchModifyAction struct {
	Type     string       `json:"type" msgpack:"type"`
	Modifies []ModifyWire `json:"modifies" msgpack:"modifies"`
}

func (b BatchModifyAction) ActionType() string {
	return b.Type
}

// ModifiesToAction converts a list of modify wires to a batch modify action
func ModifiesToAction(modifies []ModifyWire) BatchModifyAction {
	return BatchModifyAction{
		Type:     "batchModify",
		Modifies: modifies,
	}
}

// ============================================================================
// Multi-sig
// ============================================================================

// SignatureWire is the r/s/v triple in the hex form collected from
// inner multi-sig signers
type SignatureWire struct {
	R string `json:"r" msgpack:"r"`
	S string `json:"s" msgpack:"s"`
	V uint8  `json:"v" msgpack:"v"`
}

// MultiSigEnvelope wraps the inner action together with the multi-sig
// user and the outer signer. Its canonical encoding, alongside the
// collected inner signatures and the signature chain id, is what the
// outer signature ultimately covers.
type MultiSigEnvelope struct {
	MultiSigUser string `json:"multiSigUser" msgpack:"multiSigUser"`
	OuterSigner  string `json:"outerSigner" msgpack:"outerSigner"`
	Action       Action `json:"action" msgpack:"action"`
}

type MultiSigAction struct {
	Type             string           `json:"type" msgpack:"type"`
	SignatureChainId string           `json:"signatureChainId" msgpack:"signatureChainId"`
	Signatures       []SignatureWire  `json:"signatures" msgpack:"signatures"`
	Payload          MultiSigEnvelope `json:"payload" msgpack:"payload"`
}

func (a MultiSigAction) ActionType() string {
	return a.Type
}

// NewMultiSigAction wraps an inner action for a multi-sig vault flow.
// Addresses render lowercase, matching what the exchange hashes.
func NewMultiSigAction(
	signatureChainId string,
	signatures []SignatureWire,
	multiSigUser common.Address,
	outerSigner common.Address,
	inner Action,
) MultiSigAction {
	return MultiSigAction{
		Type:             "multiSig",
		SignatureChainId: signatureChainId,
		Signatures:       signatures,
		Payload: MultiSigEnvelope{
			MultiSigUser: strings.ToLower(multiSigUser.Hex()),
			OuterSigner:  strings.ToLower(outerSigner.Hex()),
			Action:       inner,
		},
	}
}
