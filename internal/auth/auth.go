// Package auth produces the authorization headers sent with every GitHub
// GraphQL request.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// Authenticator produces the headers that authorize one request.
type Authenticator interface {
	AuthorizationHeader() (map[string]string, error)
}

// ErrEmptyToken indicates the token source returned no access token.
var ErrEmptyToken = errors.New("auth: empty access token")

// Token authorizes requests with a bearer token from an oauth2 token source.
// The source is consulted on every request, so refreshing sources work.
type Token struct {
	Source oauth2.TokenSource
}

// PersonalAccessToken returns an authenticator for a static GitHub token.
func PersonalAccessToken(token string) *Token {
	return &Token{Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})}
}

func (t *Token) AuthorizationHeader() (map[string]string, error) {
	if t == nil || t.Source == nil {
		return nil, ErrEmptyToken
	}
	tok, err := t.Source.Token()
	if err != nil {
		return nil, fmt.Errorf("auth: token: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, ErrEmptyToken
	}
	return map[string]string{"Authorization": tok.Type() + " " + tok.AccessToken}, nil
}
