package auth

import "github.com/google/uuid"

// Identity is the authenticated principal attached to a request after its
// token has been validated. It lives only as long as the request.
type Identity struct {
	UserID uuid.UUID
}

// TokenValidator is the part of JWTService the request authenticator depends on.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// IdentityFromToken validates token and decodes its subject into an Identity.
func IdentityFromToken(v TokenValidator, token string) (*Identity, error) {
	subject, err := v.Validate(token)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: id}, nil
}
