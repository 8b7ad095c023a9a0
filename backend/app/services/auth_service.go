package services

import (
	"crypto/subtle"
	"errors"

	jwtutil "dia-relay/backend/app/jwt"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService checks the single configured operator account.
type AuthService struct {
	username     string
	passwordHash []byte
	signer       *jwtutil.Signer
}

func NewAuthService(username, passwordHash string, signer *jwtutil.Signer) *AuthService {
	return &AuthService{username: username, passwordHash: []byte(passwordHash), signer: signer}
}

func (s *AuthService) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	if bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) != nil || !userOK {
		return "", ErrInvalidCredentials
	}
	return s.signer.Sign(username, jwtutil.RoleAdmin)
}
