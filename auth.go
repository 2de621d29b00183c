package isis

import "github.com/go-isis/isisd/pkg/wire"

// authTLV picks the Authentication TLV this speaker originates, if any.
// Grounded directly on confidentiality.go's algorithmCipher switch shape
// — a one-case-plus-default dispatch on a configured algorithm — but
// over authentication types instead of confidentiality algorithms: this
// speaker only ever originates cleartext passwords (spec.md §4.8), never
// HMAC-MD5, so the switch has a single live case.
func authTLV(password string) (wire.TLV, bool) {
	if password == "" {
		return wire.TLV{}, false
	}
	v := wire.AuthenticationTLV{Method: wire.AuthTypeCleartext, Value: []byte(password)}
	raw, err := wire.EncodeTLV(wire.TLVAuthentication, v)
	if err != nil {
		// A cleartext password can't overflow MaxTLVValueLen short of an
		// absurdly long configured string; treat that as a configuration
		// error the caller should have caught, not a runtime fault.
		return wire.TLV{}, false
	}
	return wire.TLV{Type: wire.TLVAuthentication, Raw: raw[2:], V: v}, true
}
