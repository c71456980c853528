package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-0123456789abcdef")

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewCodec(testSecret)
	claims := NewClaims("user-1", "Alice", true, true, KindAuthorization, AuthorizationTokenTTL, time.Now().UTC())

	tok, err := codec.Encode(claims)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	got, err := codec.Decode(tok)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "Alice", got.Name)
	require.True(t, got.Admin)
	require.True(t, got.Active)
	require.Equal(t, KindAuthorization, got.Kind)
	require.Equal(t, claims.ID, got.TokenID())
}

func TestDecodeRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	claims := NewClaims("user-1", "Alice", false, true, KindSession, SessionTokenTTL, time.Now().UTC())
	tok, err := NewCodec(testSecret).Encode(claims)
	require.NoError(t, err)

	_, err = NewCodec([]byte("another-secret")).Decode(tok)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	t.Parallel()

	codec := NewCodec(testSecret)

	for _, tok := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := codec.Decode(tok)
		require.ErrorIs(t, err, ErrMalformed, "token %q", tok)
	}
}

func TestDecodeExpiryBoundaryIsExclusive(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := issued
	codec := NewCodecAt(testSecret, func() time.Time { return clock })

	claims := NewClaims("user-1", "Alice", false, true, KindAuthorization, time.Hour, issued)
	tok, err := codec.Encode(claims)
	require.NoError(t, err)

	// One second before expiry: still valid.
	clock = issued.Add(time.Hour - time.Second)
	_, err = codec.Decode(tok)
	require.NoError(t, err)

	// Exactly at expiry: already expired.
	clock = issued.Add(time.Hour)
	_, err = codec.Decode(tok)
	require.ErrorIs(t, err, ErrExpired)

	// Past expiry.
	clock = issued.Add(2 * time.Hour)
	_, err = codec.Decode(tok)
	require.ErrorIs(t, err, ErrExpired)
}

func TestDecodeRequiresSubject(t *testing.T) {
	t.Parallel()

	codec := NewCodec(testSecret)
	claims := NewClaims("", "nobody", false, true, KindAuthorization, time.Hour, time.Now().UTC())

	tok, err := codec.Encode(claims)
	require.NoError(t, err)

	_, err = codec.Decode(tok)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeRejectsUnknownClaimFields(t *testing.T) {
	t.Parallel()

	codec := NewCodec(testSecret)

	// Sign a payload with an extra field using the same secret. The claim
	// set is fixed, so a correctly signed but fatter payload is still not
	// one of our tokens.
	now := time.Now().UTC()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       "user-1",
		"iat":       now.Unix(),
		"exp":       now.Add(time.Hour).Unix(),
		"jti":       NewJTI(),
		"admin":     false,
		"is_active": true,
		"name":      "Alice",
		"kind":      KindAuthorization,
		"scope":     "everything",
	}).SignedString(testSecret)
	require.NoError(t, err)

	_, err = codec.Decode(tok)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestTamperedSignatureIsNeverExpired(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := issued
	codec := NewCodecAt(testSecret, func() time.Time { return clock })

	claims := NewClaims("user-1", "Alice", false, true, KindSession, time.Hour, issued)
	tok, err := codec.Encode(claims)
	require.NoError(t, err)

	// Flip a byte in the signature segment.
	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	// Even with the clock far past expiry, tampering must surface as a
	// signature failure, not Expired.
	clock = issued.Add(48 * time.Hour)
	_, err = codec.Decode(tampered)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestNewJTIUniqueness(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		id := NewJTI()
		require.NotEmpty(t, id)
		_, dup := seen[id]
		require.False(t, dup, "duplicate jti %q", id)
		seen[id] = struct{}{}
	}
}
