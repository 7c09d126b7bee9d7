package authz

import (
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipalFromClaims(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	testCases := []struct {
		name    string
		claims  jwt.MapClaims
		want    Principal
		wantErr error
	}{
		{
			name:   "merchant token",
			claims: jwt.MapClaims{"sub": userID.String(), "role": "merchant"},
			want:   NewPrincipal(userID, RoleMerchant),
		},
		{
			name:   "admin token",
			claims: jwt.MapClaims{"sub": userID.String(), "role": "admin"},
			want:   NewPrincipal(userID, RoleAdmin),
		},
		{
			name:   "missing role defaults to user",
			claims: jwt.MapClaims{"sub": userID.String()},
			want:   NewPrincipal(userID, RoleUser),
		},
		{
			name:    "missing subject",
			claims:  jwt.MapClaims{"role": "merchant"},
			wantErr: ErrMissingSubject,
		},
		{
			name:    "non-uuid subject",
			claims:  jwt.MapClaims{"sub": "bob", "role": "merchant"},
			wantErr: ErrMissingSubject,
		},
		{
			name:    "unknown role",
			claims:  jwt.MapClaims{"sub": userID.String(), "role": "superuser"},
			wantErr: ErrInvalidRole,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p, err := PrincipalFromClaims(tc.claims)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, p)
		})
	}
}

func TestBuyerFromRequest(t *testing.T) {
	t.Parallel()

	t.Run("complete credential pair", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set(HeaderWalletAddress, "0xABCdef")
		r.Header.Set(HeaderWalletSignature, "sig")

		buyer, ok := BuyerFromRequest(r)
		require.True(t, ok)
		assert.Equal(t, "0xabcdef", buyer.WalletAddress)
	})

	t.Run("address without signature resolves to no identity", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set(HeaderWalletAddress, "0xabc")

		_, ok := BuyerFromRequest(r)
		assert.False(t, ok)
	})

	t.Run("no headers", func(t *testing.T) {
		t.Parallel()

		_, ok := BuyerFromRequest(httptest.NewRequest("GET", "/", nil))
		assert.False(t, ok)
	})
}
