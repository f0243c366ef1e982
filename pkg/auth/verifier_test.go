package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/abgdnv/catalog/pkg/config"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://idp.example.com/realms/catalog"
	testClientID = "catalog-admin"
)

// newSigningKey returns a private key and a key set holding its public half.
func newSigningKey(t *testing.T) (jwk.Key, jwk.Set) {
	t.Helper()
	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	private, err := jwk.Import(raw)
	require.NoError(t, err)
	require.NoError(t, private.Set(jwk.KeyIDKey, "test-key"))
	require.NoError(t, private.Set(jwk.AlgorithmKey, jwa.RS256()))

	public, err := jwk.PublicKeyOf(private)
	require.NoError(t, err)
	set := jwk.NewSet()
	require.NoError(t, set.AddKey(public))
	return private, set
}

func signToken(t *testing.T, key jwk.Key, issuer, azp string) string {
	t.Helper()
	token, err := jwt.NewBuilder().
		Issuer(issuer).
		Subject("user-1").
		Expiration(time.Now().Add(time.Hour)).
		Claim("azp", azp).
		Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.RS256(), key))
	require.NoError(t, err)
	return string(signed)
}

func newTestVerifier(t *testing.T, set jwk.Set) *JWTVerifier {
	t.Helper()
	cfg := config.IdP{Enabled: true, JwksURL: "http://jwks", Issuer: testIssuer, ClientID: testClientID, MinInterval: time.Minute}
	v, err := newJWTVerifier(context.Background(), cfg, func(context.Context, string) (jwk.Set, error) {
		return set, nil
	})
	require.NoError(t, err)
	return v
}

func TestJWTVerifier_Verify(t *testing.T) {
	key, set := newSigningKey(t)
	otherKey, _ := newSigningKey(t)
	verifier := newTestVerifier(t, set)

	testCases := []struct {
		name      string
		token     string
		expectErr bool
	}{
		{name: "valid token", token: signToken(t, key, testIssuer, testClientID)},
		{name: "wrong issuer", token: signToken(t, key, "https://evil", testClientID), expectErr: true},
		{name: "wrong client", token: signToken(t, key, testIssuer, "other-client"), expectErr: true},
		{name: "unknown signing key", token: signToken(t, otherKey, testIssuer, testClientID), expectErr: true},
		{name: "garbage", token: "not-a-jwt", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := verifier.Verify(context.Background(), tc.token)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			sub, ok := token.Subject()
			require.True(t, ok)
			assert.Equal(t, "user-1", sub)
		})
	}
}

func TestNewJWTVerifier_InitialFetchFails(t *testing.T) {
	errFetch := errors.New("connection refused")
	cfg := config.IdP{Enabled: true, JwksURL: "http://jwks", Issuer: testIssuer, ClientID: testClientID, MinInterval: time.Minute}

	_, err := newJWTVerifier(context.Background(), cfg, func(context.Context, string) (jwk.Set, error) {
		return nil, errFetch
	})

	assert.ErrorIs(t, err, errFetch)
}

func TestJWTVerifier_KeepsCachedSetWhenRefreshFails(t *testing.T) {
	key, set := newSigningKey(t)
	calls := 0
	cfg := config.IdP{Enabled: true, JwksURL: "http://jwks", Issuer: testIssuer, ClientID: testClientID, MinInterval: time.Nanosecond}
	verifier, err := newJWTVerifier(context.Background(), cfg, func(context.Context, string) (jwk.Set, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("jwks unavailable")
		}
		return set, nil
	})
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	_, err = verifier.Verify(context.Background(), signToken(t, key, testIssuer, testClientID))

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
