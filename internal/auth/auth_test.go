package auth

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/carhire/apiserver/types"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	a, err := h.Hash("hunter2")
	require.NoError(t, err)
	b, err := h.Hash("hunter2")
	require.NoError(t, err)

	require.NotEqual(t, "hunter2", a)
	require.NotEqual(t, a, b, "digests are salted")
	require.True(t, h.Verify("hunter2", a))
	require.True(t, h.Verify("hunter2", b))
	require.False(t, h.Verify("hunter3", a))
	require.False(t, h.Verify("hunter2", "not-a-digest"))
}

func TestBcryptHasherRejectsLongPasswords(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MinCost).Hash(strings.Repeat("x", 73))
	require.Error(t, err)
}

func TestBcryptHasherCostOutOfRange(t *testing.T) {
	require.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	require.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).cost)
}

func TestCodeGeneratorBounds(t *testing.T) {
	zeros := NewCodeGenerator(bytes.NewReader([]byte{0, 0, 0, 0}))
	code, err := zeros.Generate()
	require.NoError(t, err)
	require.Equal(t, "100000", code)

	// 899999 is the largest offset.
	top := NewCodeGenerator(bytes.NewReader([]byte{0x00, 0x0d, 0xbb, 0x9f}))
	code, err = top.Generate()
	require.NoError(t, err)
	require.Equal(t, "999999", code)
}

func TestCodeGeneratorRejectsBiasedDraws(t *testing.T) {
	g := NewCodeGenerator(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x07}))
	code, err := g.Generate()
	require.NoError(t, err)
	require.Equal(t, "100007", code)
}

func TestCodeGeneratorShortRead(t *testing.T) {
	_, err := NewCodeGenerator(bytes.NewReader([]byte{1, 2})).Generate()
	require.Error(t, err)
}

func TestCodeGeneratorCryptoRand(t *testing.T) {
	g := NewCodeGenerator(nil)
	for i := 0; i < 200; i++ {
		code, err := g.Generate()
		require.NoError(t, err)
		require.Len(t, code, 6)
		require.GreaterOrEqual(t, code, "100000")
		require.LessOrEqual(t, code, "999999")
	}
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newIssuer(t *testing.T, c *clock) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer("test-secret", "carhire")
	require.NoError(t, err)
	return issuer.WithClock(c.Now)
}

func TestTokenRoundTrip(t *testing.T) {
	c := &clock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newIssuer(t, c)

	token, err := issuer.Issue(Claims{AccountID: 42, Role: types.RoleAdmin, FirstName: "Ada", LastName: "Lovelace"}, 24*time.Hour)
	require.NoError(t, err)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, 42, got.AccountID)
	require.Equal(t, types.RoleAdmin, got.Role)
	require.Equal(t, "Ada", got.FirstName)
	require.True(t, got.IssuedAt.Equal(c.t))
	require.True(t, got.ExpiresAt.Equal(c.t.Add(24*time.Hour)))
}

func TestTokenExpires(t *testing.T) {
	c := &clock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newIssuer(t, c)

	token, err := issuer.Issue(Claims{AccountID: 1, Role: types.RoleUser}, 24*time.Hour)
	require.NoError(t, err)

	c.t = c.t.Add(24*time.Hour - time.Second)
	_, err = issuer.Verify(token)
	require.NoError(t, err)

	c.t = c.t.Add(2 * time.Second)
	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenTampered(t *testing.T) {
	c := &clock{t: time.Now()}
	issuer := newIssuer(t, c)

	token, err := issuer.Issue(Claims{AccountID: 1, Role: types.RoleUser}, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	_, err = issuer.Verify(parts[0] + "." + parts[1] + "." + string(sig))
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = issuer.Verify("")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWrongSecret(t *testing.T) {
	c := &clock{t: time.Now()}
	other, err := NewTokenIssuer("another-secret", "carhire")
	require.NoError(t, err)
	token, err := other.WithClock(c.Now).Issue(Claims{AccountID: 1, Role: types.RoleUser}, time.Hour)
	require.NoError(t, err)

	_, err = newIssuer(t, c).Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsNoneAlgorithm(t *testing.T) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    "carhire",
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newIssuer(t, &clock{t: now}).Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRequiresSubject(t *testing.T) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "carhire",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = newIssuer(t, &clock{t: now}).Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRequiresExpiry(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: "carhire", Subject: "1"})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = newIssuer(t, &clock{t: time.Now()}).Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuerMismatch(t *testing.T) {
	c := &clock{t: time.Now()}
	other, err := NewTokenIssuer("test-secret", "someone-else")
	require.NoError(t, err)
	token, err := other.WithClock(c.Now).Issue(Claims{AccountID: 1}, time.Hour)
	require.NoError(t, err)

	_, err = newIssuer(t, c).Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("   ", "carhire")
	require.Error(t, err)
}
