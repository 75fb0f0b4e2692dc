package sealing_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/bestcars/internal/adapter/driven/sealing"
	"github.com/ericfisherdev/bestcars/internal/domain/model"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, sealing.KeySize)
}

func TestNewSealer_RejectsShortKey(t *testing.T) {
	_, err := sealing.NewSealer([]byte("too-short"))
	assert.ErrorIs(t, err, sealing.ErrInvalidKey)

	_, err = sealing.NewSealer(nil)
	assert.ErrorIs(t, err, sealing.ErrInvalidKey)
}

func TestSealer_RoundTrip(t *testing.T) {
	s, err := sealing.NewSealer(testKey(1))
	require.NoError(t, err)

	sealed, err := s.Seal([]byte("secret value"))
	require.NoError(t, err)
	assert.NotContains(t, sealed, "secret")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "secret value", string(plain))
}

func TestSealer_NonceDiffersPerSeal(t *testing.T) {
	s, err := sealing.NewSealer(testKey(1))
	require.NoError(t, err)

	a, err := s.Seal([]byte("x"))
	require.NoError(t, err)
	b, err := s.Seal([]byte("x"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestSealer_OpenWithWrongKeyFails(t *testing.T) {
	s1, err := sealing.NewSealer(testKey(1))
	require.NoError(t, err)
	s2, err := sealing.NewSealer(testKey(2))
	require.NoError(t, err)

	sealed, err := s1.Seal([]byte("x"))
	require.NoError(t, err)

	_, err = s2.Open(sealed)
	assert.Error(t, err)
}

func TestSealer_OpenRejectsGarbage(t *testing.T) {
	s, err := sealing.NewSealer(testKey(1))
	require.NoError(t, err)

	_, err = s.Open("!!!not base64")
	assert.Error(t, err)

	_, err = s.Open("YWJj")
	assert.Error(t, err)
}

func TestSealer_AuthRoundTrip(t *testing.T) {
	s, err := sealing.NewSealer(testKey(3))
	require.NoError(t, err)

	auth := model.BackendAuth{Cookies: []*http.Cookie{
		{Name: "sessionid", Value: "abc", Path: "/", HttpOnly: true},
		{Name: "csrftoken", Value: "tok"},
	}}

	sealed, err := s.SealAuth(auth)
	require.NoError(t, err)
	assert.NotContains(t, sealed, "sessionid")

	got, err := s.OpenAuth(sealed)
	require.NoError(t, err)
	require.Len(t, got.Cookies, 2)
	assert.Equal(t, "sessionid", got.Cookies[0].Name)
	assert.Equal(t, "abc", got.Cookies[0].Value)
	assert.Equal(t, "csrftoken", got.Cookies[1].Name)
	assert.Equal(t, "tok", got.Cookies[1].Value)
}

func TestSealer_EmptyAuth(t *testing.T) {
	s, err := sealing.NewSealer(testKey(3))
	require.NoError(t, err)

	sealed, err := s.SealAuth(model.BackendAuth{})
	require.NoError(t, err)
	assert.Empty(t, sealed)

	got, err := s.OpenAuth("")
	require.NoError(t, err)
	assert.Empty(t, got.Cookies)
}
