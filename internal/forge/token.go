package forge

// Token holds a forge API token. All formatting surfaces print a fixed
// placeholder instead of the secret, so a token passed through %v, %s,
// %#v, or JSON marshaling cannot end up in logs or diagnostics. Code
// that builds the Authorization header reads the raw value via Value.
type Token string

const redactedToken = "[REDACTED]"

// String implements fmt.Stringer and hides the token value.
func (t Token) String() string { return redactedToken }

// GoString implements fmt.GoStringer and hides the token value.
func (t Token) GoString() string { return redactedToken }

// MarshalJSON hides the token value in serialized output.
func (t Token) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redactedToken + `"`), nil
}

// Value returns the raw token for header construction.
func (t Token) Value() string { return string(t) }

// Empty reports whether no token is held.
func (t Token) Empty() bool { return t == "" }
