package authz

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Wallet credential header pair for the buyer channel. Both must be present
// for a buyer identity to resolve; signature verification happens upstream
// at the gateway, this layer only binds the address to the request.
const (
	HeaderWalletAddress   = "X-Wallet-Address"
	HeaderWalletSignature = "X-Wallet-Signature"
)

var (
	// ErrMissingSubject indicates the token claims carry no usable subject.
	ErrMissingSubject = errors.New("token claims missing subject")

	// ErrInvalidRole indicates the token carries an unknown role claim.
	ErrInvalidRole = errors.New("token claims carry invalid role")
)

// PrincipalFromClaims resolves a merchant/admin channel principal from
// validated JWT claims. The subject claim must be the user id; the role
// claim defaults to "user" when absent, matching tokens issued before roles
// existed.
func PrincipalFromClaims(claims jwt.MapClaims) (Principal, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Principal{}, ErrMissingSubject
	}

	id, err := uuid.Parse(sub)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: subject is not a user id", ErrMissingSubject)
	}

	role := RoleUser
	if raw, ok := claims["role"].(string); ok && raw != "" {
		role = Role(raw)
	}
	if !role.Valid() {
		return Principal{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	return NewPrincipal(id, role), nil
}

// BuyerFromRequest resolves a buyer identity from the wallet credential
// headers. It returns false when the request carries no complete credential
// pair; an address without a signature is treated as no identity at all
// rather than an error, since most requests are not buyer requests.
func BuyerFromRequest(r *http.Request) (BuyerIdentity, bool) {
	addr := strings.TrimSpace(r.Header.Get(HeaderWalletAddress))
	sig := strings.TrimSpace(r.Header.Get(HeaderWalletSignature))
	if addr == "" || sig == "" {
		return BuyerIdentity{}, false
	}
	return BuyerIdentity{WalletAddress: strings.ToLower(addr)}, true
}
