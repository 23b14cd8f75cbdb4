package action

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/mo"

	"github.com/hypercore-labs/go-hyperliquid-signer/types"
)

func mustAddress(t *testing.T, s string) common.Address {
	t.Helper()
	if !common.IsHexAddress(s) {
		t.Fatalf("invalid address %q", s)
	}
	return common.HexToAddress(s)
}

func TestParseTypedVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  any
	}{
		{
			name:  "updateLeverage",
			input: `{"type":"updateLeverage","asset":4,"isCross":true,"leverage":20}`,
			want:  &UpdateLeverageAction{},
		},
		{
			name:  "updateIsolatedMargin",
			input: `{"type":"updateIsolatedMargin","asset":0,"isBuy":true,"ntli":100}`,
			want:  &UpdateIsolatedMarginAction{},
		},
		{
			name:  "order",
			input: `{"type":"order","orders":[{"a":4,"b":true,"p":"1670.1","s":"0.0147","r":false,"t":{"limit":{"tif":"Ioc"}}}],"grouping":"na"}`,
			want:  &OrderAction{},
		},
		{
			name:  "cancel",
			input: `{"type":"cancel","cancels":[{"a":4,"o":91490942}]}`,
			want:  &CancelAction{},
		},
		{
			name:  "cancelByCloid",
			input: `{"type":"cancelByCloid","cancels":[{"asset":4,"cloid":"0x00000000000000000000000000000001"}]}`,
			want:  &CancelByCloidAction{},
		},
		{
			name:  "batchModify",
			input: `{"type":"batchModify","modifies":[{"o":91490942,"order":{"a":4,"b":true,"p":"1670.1","s":"0.0147","r":false,"t":{"limit":{"tif":"Gtc"}}}}]}`,
			want:  &BatchModifyAction{},
		},
		{
			name:  "spotUser",
			input: `{"type":"spotUser","classTransfer":{"usdc":1000000,"toPerp":true}}`,
			want:  &SpotUserAction{},
		},
		{
			name:  "vaultTransfer",
			input: `{"type":"vaultTransfer","vaultAddress":"0x1d9470d4b963f552e6f671a81619d395877bf409","isDeposit":true,"usd":10}`,
			want:  &VaultTransferAction{},
		},
		{
			name:  "subAccountTransfer",
			input: `{"type":"subAccountTransfer","subAccountUser":"0x1d9470d4b963f552e6f671a81619d395877bf409","isDeposit":true,"usd":10}`,
			want:  &SubAccountTransferAction{},
		},
		{
			name:  "subAccountSpotTransfer",
			input: `{"type":"subAccountSpotTransfer","subAccountUser":"0x1d9470d4b963f552e6f671a81619d395877bf409","isDeposit":false,"token":"PURR:0xc1fb593aeffbeb02f85e0308e9956a90","amount":"1"}`,
			want:  &SubAccountSpotTransferAction{},
		},
		{
			name:  "usdClassTransfer",
			input: `{"type":"usdClassTransfer","signatureChainId":"0x66eee","hyperliquidChain":"Mainnet","amount":"1","toPerp":true,"nonce":1687816341423}`,
			want:  &UsdClassTransferAction{},
		},
		{
			name:  "setReferrer",
			input: `{"type":"setReferrer","code":"WAGMI"}`,
			want:  &SetReferrerAction{},
		},
		{
			name:  "evmUserModify",
			input: `{"type":"evmUserModify","usingBigBlocks":true}`,
			want:  &EvmUserModifyAction{},
		},
		{
			name:  "scheduleCancel with time",
			input: `{"type":"scheduleCancel","time":1687816341423}`,
			want:  &ScheduleCancelAction{},
		},
		{
			name:  "scheduleCancel without time",
			input: `{"type":"scheduleCancel"}`,
			want:  &ScheduleCancelAction{},
		},
		{
			name:  "claimRewards",
			input: `{"type":"claimRewards"}`,
			want:  &ClaimRewardsAction{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("Parse(%s) unexpected error: %v", tt.input, err)
			}
			if gotType, wantType := typeName(got), typeName(tt.want); gotType != wantType {
				t.Fatalf("Parse(%s) = %s, want %s", tt.input, gotType, wantType)
			}
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *UpdateLeverageAction:
		return "UpdateLeverageAction"
	case *UpdateIsolatedMarginAction:
		return "UpdateIsolatedMarginAction"
	case *OrderAction:
		return "OrderAction"
	case *CancelAction:
		return "CancelAction"
	case *CancelByCloidAction:
		return "CancelByCloidAction"
	case *BatchModifyAction:
		return "BatchModifyAction"
	case *SpotUserAction:
		return "SpotUserAction"
	case *VaultTransferAction:
		return "VaultTransferAction"
	case *SubAccountTransferAction:
		return "SubAccountTransferAction"
	case *SubAccountSpotTransferAction:
		return "SubAccountSpotTransferAction"
	case *UsdClassTransferAction:
		return "UsdClassTransferAction"
	case *SetReferrerAction:
		return "SetReferrerAction"
	case *EvmUserModifyAction:
		return "EvmUserModifyAction"
	case *ScheduleCancelAction:
		return "ScheduleCancelAction"
	case *ClaimRewardsAction:
		return "ClaimRewardsAction"
	case GenericAction:
		return "GenericAction"
	}
	return "unknown"
}

func TestParseFallsBackToGeneric(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "unknown type tag",
			input: `{"type":"futureAction","payload":{"x":1}}`,
		},
		{
			name:  "missing type tag",
			input: `{"payload":{"x":1}}`,
		},
		{
			name:  "extra field on known type",
			input: `{"type":"setReferrer","code":"WAGMI","extra":1}`,
		},
		{
			name:  "missing required field",
			input: `{"type":"updateLeverage","asset":4,"isCross":true}`,
		},
		{
			name:  "multiSig body",
			input: `{"type":"multiSig","signatureChainId":"0x66eee","signatures":[],"payload":{"multiSigUser":"0x1d","outerSigner":"0x2e","action":{"type":"noop","time":1}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("Parse(%s) unexpected error: %v", tt.input, err)
			}
			if _, ok := got.(GenericAction); !ok {
				t.Fatalf("Parse(%s) = %T, want GenericAction", tt.input, got)
			}
		})
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	for _, input := range []string{``, `{`, `[1,2]`, `"str"`, `{"a":}`} {
		if _, err := Parse([]byte(input)); err == nil {
			t.Fatalf("Parse(%q) expected error, got nil", input)
		}
	}
}

func TestParseAcceptsLongFormOrderKeys(t *testing.T) {
	t.Parallel()

	short := `{"type":"order","orders":[{"a":1,"b":true,"p":"100","s":"100","r":false,"t":{"limit":{"tif":"Gtc"}},"c":"0x00000000000000000000000000000001"}],"grouping":"na"}`
	long := `{"type":"order","orders":[{"asset":1,"isBuy":true,"limitPx":"100","sz":"100","orderType":{"limit":{"tif":"Gtc"}},"cloid":"0x00000000000000000000000000000001"}],"grouping":"na"}`

	shortAction, err := Parse([]byte(short))
	if err != nil {
		t.Fatal(err)
	}
	longAction, err := Parse([]byte(long))
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := longAction.(*OrderAction); !ok {
		t.Fatalf("long-form parse = %T, want *OrderAction", longAction)
	}

	shortBytes, err := Encode(shortAction)
	if err != nil {
		t.Fatal(err)
	}
	longBytes, err := Encode(longAction)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(shortBytes, longBytes) {
		t.Fatalf(
			"long-form keys did not canonicalize: %x != %x",
			longBytes,
			shortBytes,
		)
	}
}

func TestParseAcceptsLongFormCancelAndModifyKeys(t *testing.T) {
	t.Parallel()

	shortCancel := `{"type":"cancel","cancels":[{"a":4,"o":91490942}]}`
	longCancel := `{"type":"cancel","cancels":[{"asset":4,"oid":91490942}]}`

	a, err := Parse([]byte(shortCancel))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse([]byte(longCancel))
	if err != nil {
		t.Fatal(err)
	}

	aBytes, _ := Encode(a)
	bBytes, _ := Encode(b)
	if !bytes.Equal(aBytes, bBytes) {
		t.Fatal("cancel aliases did not canonicalize")
	}

	shortModify := `{"type":"batchModify","modifies":[{"o":1,"order":{"a":1,"b":true,"p":"1","s":"1","r":false,"t":{"limit":{"tif":"Gtc"}}}}]}`
	longModify := `{"type":"batchModify","modifies":[{"oid":1,"order":{"a":1,"b":true,"p":"1","s":"1","r":false,"t":{"limit":{"tif":"Gtc"}}}}]}`

	c, err := Parse([]byte(shortModify))
	if err != nil {
		t.Fatal(err)
	}
	d, err := Parse([]byte(longModify))
	if err != nil {
		t.Fatal(err)
	}

	cBytes, _ := Encode(c)
	dBytes, _ := Encode(d)
	if !bytes.Equal(cBytes, dBytes) {
		t.Fatal("modify aliases did not canonicalize")
	}
}

func TestParseAcceptsNumericOrderValues(t *testing.T) {
	t.Parallel()

	// Long-form bodies may carry prices and sizes as raw numbers; they
	// canonicalize through the wire decimal formatter.
	short := `{"type":"order","orders":[{"a":4,"b":true,"p":"1670.1","s":"0.0147","r":false,"t":{"limit":{"tif":"Ioc"}}}],"grouping":"na"}`
	long := `{"type":"order","orders":[{"asset":4,"isBuy":true,"limitPx":1670.1,"sz":0.0147,"orderType":{"limit":{"tif":"Ioc"}}}],"grouping":"na"}`

	a, err := Parse([]byte(short))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse([]byte(long))
	if err != nil {
		t.Fatal(err)
	}

	aBytes, err := Encode(a)
	if err != nil {
		t.Fatal(err)
	}
	bBytes, err := Encode(b)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(aBytes, bBytes) {
		t.Fatalf(
			"numeric order values did not canonicalize: %x != %x",
			bBytes,
			aBytes,
		)
	}
}

func TestUpdateIsolatedMarginToAction(t *testing.T) {
	t.Parallel()

	act, err := UpdateIsolatedMarginToAction(4, 1.5)
	if err != nil {
		t.Fatal(err)
	}

	if act.Type != "updateIsolatedMargin" {
		t.Fatalf("type = %q, want updateIsolatedMargin", act.Type)
	}
	if !act.IsBuy {
		t.Fatal("isBuy should default to true")
	}
	if act.Ntli != 1500000 {
		t.Fatalf("ntli = %d, want 1500000", act.Ntli)
	}

	if _, err := UpdateIsolatedMarginToAction(4, 0.0000001); err == nil {
		t.Fatal("expected error for amount below 6-decimal precision")
	}
}

func TestOrderWireRejectsDuplicateAliases(t *testing.T) {
	t.Parallel()

	input := `{"type":"order","orders":[{"a":1,"asset":1,"b":true,"p":"1","s":"1","t":{"limit":{"tif":"Gtc"}}}],"grouping":"na"}`

	got, err := Parse([]byte(input))
	if err != nil {
		t.Fatal(err)
	}

	// A body with both an alias and its short key is not well-formed for
	// the typed route; it hashes exactly as written instead.
	if _, ok := got.(GenericAction); !ok {
		t.Fatalf("Parse = %T, want GenericAction", got)
	}
}

func TestTypedAndGenericEncodeEquivalence(t *testing.T) {
	t.Parallel()

	// The same logical document must hash identically whether it takes
	// the typed route or the generic one.
	docs := []string{
		`{"type":"updateLeverage","asset":4,"isCross":true,"leverage":20}`,
		`{"type":"subAccountTransfer","subAccountUser":"0x1d9470d4b963f552e6f671a81619d395877bf409","isDeposit":true,"usd":10}`,
		`{"type":"order","orders":[{"a":4,"b":true,"p":"1670.1","s":"0.0147","r":false,"t":{"limit":{"tif":"Ioc"}}}],"grouping":"na"}`,
		`{"type":"scheduleCancel","time":1687816341423}`,
		`{"type":"scheduleCancel"}`,
		`{"type":"claimRewards"}`,
	}

	for _, doc := range docs {
		typed, err := Parse([]byte(doc))
		if err != nil {
			t.Fatalf("Parse(%s): %v", doc, err)
		}
		if _, ok := typed.(GenericAction); ok {
			t.Fatalf("Parse(%s) took the generic route", doc)
		}

		obj, err := ParseObject([]byte(doc))
		if err != nil {
			t.Fatal(err)
		}

		typedBytes, err := Encode(typed)
		if err != nil {
			t.Fatal(err)
		}
		genericBytes, err := Encode(GenericAction{Body: obj})
		if err != nil {
			t.Fatal(err)
		}

		if !bytes.Equal(typedBytes, genericBytes) {
			t.Fatalf(
				"typed and generic encodings differ for %s:\n%x\n%x",
				doc,
				typedBytes,
				genericBytes,
			)
		}
	}
}

func TestOrdersToAction(t *testing.T) {
	t.Parallel()

	wire, err := NewOrderWire(
		4,
		true,
		0.0147,
		1670.1,
		OrderType{Limit: &LimitOrder{Tif: "Ioc"}},
	)
	if err != nil {
		t.Fatal(err)
	}

	if wire.P != "1670.1" {
		t.Fatalf("limit price = %q, want %q", wire.P, "1670.1")
	}
	if wire.S != "0.0147" {
		t.Fatalf("size = %q, want %q", wire.S, "0.0147")
	}

	action := OrdersToAction(
		[]OrderWire{wire},
		mo.None[BuilderInfo](),
		mo.None[OrderGrouping](),
	)

	if action.Type != "order" {
		t.Fatalf("type = %q, want order", action.Type)
	}
	if action.Grouping != OrderGroupingNA {
		t.Fatalf("grouping = %q, want %q", action.Grouping, OrderGroupingNA)
	}
	if action.Builder != nil {
		t.Fatal("builder should be nil when not supplied")
	}
}

func TestNewOrderWireWithCloid(t *testing.T) {
	t.Parallel()

	cloid := types.HexToCloid("0x00000000000000000000000000000001")

	wire, err := NewOrderWire(
		1,
		true,
		100,
		100,
		OrderType{Limit: &LimitOrder{Tif: "Gtc"}},
		WithCloid(cloid),
	)
	if err != nil {
		t.Fatal(err)
	}

	if wire.C == nil {
		t.Fatal("cloid not set")
	}
	if wire.C.Hex() != "0x00000000000000000000000000000001" {
		t.Fatalf("cloid = %s", wire.C.Hex())
	}
}

func TestNewMultiSigAction(t *testing.T) {
	t.Parallel()

	inner := SetReferrerAction{Type: "setReferrer", Code: "WAGMI"}

	act := NewMultiSigAction(
		"0x66eee",
		[]SignatureWire{{R: "0x1", S: "0x2", V: 27}},
		mustAddress(t, "0x1D9470d4b963f552e6f671A81619d395877bf409"),
		mustAddress(t, "0x5E9Ee1089755c3435139848e47e6635505d5A13A"),
		inner,
	)

	if act.Type != "multiSig" {
		t.Fatalf("type = %q, want multiSig", act.Type)
	}
	if act.Payload.MultiSigUser != "0x1d9470d4b963f552e6f671a81619d395877bf409" {
		t.Fatalf("multiSigUser not lowercased: %s", act.Payload.MultiSigUser)
	}
	if act.Payload.OuterSigner != "0x5e9ee1089755c3435139848e47e6635505d5a13a" {
		t.Fatalf("outerSigner not lowercased: %s", act.Payload.OuterSigner)
	}
}
