package platform

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the candidate identity the platform encodes in the access
// token. The gateway decodes without verifying — the signature is the
// platform's to check; the gateway only needs the identifiers to scope its
// requests.
type Claims struct {
	CandidateID   string `json:"candidate_id"`
	ApplicationID string `json:"application_id"`
	jwt.RegisteredClaims
}

// ParseClaims decodes the candidate claims from an access token.
func ParseClaims(token string) (*Claims, error) {
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return nil, err
	}
	if claims.ApplicationID == "" {
		return nil, errors.New("token carries no application_id claim")
	}
	return &claims, nil
}
