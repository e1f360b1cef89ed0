package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) { return nil, errors.New("expired") }

func TestPersonalAccessToken(t *testing.T) {
	h, err := PersonalAccessToken("ghp_abc").AuthorizationHeader()
	require.NoError(t, err)
	require.Equal(t, map[string]string{"Authorization": "Bearer ghp_abc"}, h)
}

func TestTokenErrors(t *testing.T) {
	_, err := PersonalAccessToken("").AuthorizationHeader()
	require.ErrorIs(t, err, ErrEmptyToken)

	_, err = (&Token{Source: failingSource{}}).AuthorizationHeader()
	require.ErrorContains(t, err, "expired")

	var nilTok *Token
	_, err = nilTok.AuthorizationHeader()
	require.ErrorIs(t, err, ErrEmptyToken)
}
