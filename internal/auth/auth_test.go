package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"menstrualcare-api/internal/domain"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	req := require.New(t)
	tokens, err := NewTokenManager("test-secret", time.Hour)
	req.NoError(err)

	token, err := tokens.Issue("user-1")
	req.NoError(err)
	req.NotEmpty(token)

	userID, err := tokens.Verify(token)
	req.NoError(err)
	req.Equal("user-1", userID)
}

func TestTokenManager_Rejects(t *testing.T) {
	tokens, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	expired, err := NewTokenManager("test-secret", -time.Minute)
	require.NoError(t, err)
	other, err := NewTokenManager("other-secret", time.Hour)
	require.NoError(t, err)

	expiredToken, err := expired.Issue("user-1")
	require.NoError(t, err)
	foreignToken, err := other.Issue("user-1")
	require.NoError(t, err)
	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{User: ClaimsUser{ID: "user-1"}}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"expired", expiredToken},
		{"wrong signature", foreignToken},
		{"unsigned", noneToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Verify(tt.token)
			require.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	_, err := NewTokenManager("  ", time.Hour)
	require.Error(t, err)
}

func TestHasher_HashAndCompare(t *testing.T) {
	req := require.New(t)
	h := NewHasher(4)

	hash, err := h.Hash("pw123456")
	req.NoError(err)
	req.NotEqual("pw123456", hash)
	req.NoError(h.Compare(hash, "pw123456"))
	req.Error(h.Compare(hash, "wrong"))
}

func TestNewHasher_ClampsCost(t *testing.T) {
	req := require.New(t)
	req.Equal(10, NewHasher(0).Cost)
	req.Equal(4, NewHasher(2).Cost)
	req.Equal(31, NewHasher(99).Cost)
}

func TestTokenFromRequest(t *testing.T) {
	req := require.New(t)

	r := httptest.NewRequest("GET", "/api/auth", nil)
	r.Header.Set(HeaderToken, "from-header")
	req.Equal("from-header", TokenFromRequest(r, false))

	r = httptest.NewRequest("GET", "/api/auth", nil)
	r.Header.Set("Authorization", "Bearer from-bearer")
	req.Equal("from-bearer", TokenFromRequest(r, false))

	r = httptest.NewRequest("GET", "/ws?token=from-query", nil)
	req.Empty(TokenFromRequest(r, false))
	req.Equal("from-query", TokenFromRequest(r, true))
}

func TestUserIDContext(t *testing.T) {
	req := require.New(t)

	_, ok := UserID(context.Background())
	req.False(ok)

	id, ok := UserID(WithUserID(context.Background(), "user-1"))
	req.True(ok)
	req.Equal("user-1", id)
}
