package signing

import "fmt"

// WalletError reports a private key that could not be parsed into a
// valid secp256k1 key.
type WalletError struct {
	Err error
}

func (e *WalletError) Error() string {
	return fmt.Sprintf("wallet error: %v", e.Err)
}

func (e *WalletError) Unwrap() error { return e.Err }

// ParseError reports malformed JSON for one of the operation inputs
// (action body, domain, types or message).
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s parse error: %v", e.What, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// EncodingError reports a value that has no canonical byte encoding,
// such as a non-finite number or an unsupported node type.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding error: %v", e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// TypedDataError reports an EIP-712 type graph that could not be
// resolved against the message: unknown type references, field/type
// mismatches or a malformed domain.
type TypedDataError struct {
	Err error
}

func (e *TypedDataError) Error() string {
	return fmt.Sprintf("typed data error: %v", e.Err)
}

func (e *TypedDataError) Unwrap() error { return e.Err }

// SignatureError reports an unexpected failure in the underlying
// signer. It is fatal for the operation; nothing is retried.
type SignatureError struct {
	Err error
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("signature failure: %v", e.Err)
}

func (e *SignatureError) Unwrap() error { return e.Err }

// InvalidAddressError reports an address string that is not 40 hex
// characters once the optional 0x prefix and whitespace are stripped.
type InvalidAddressError struct {
	Input string
}

func (e *InvalidAddressError) Error() string {
	return "invalid address; expected 40 hex chars (with or without 0x)"
}
