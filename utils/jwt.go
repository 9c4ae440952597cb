package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

const StateTokenTTL = 10 * time.Minute

// StateClaims travel through the OAuth provider as the state parameter. The
// nonce is also kept in the caller's session so a state minted for one browser
// cannot complete a login in another.
type StateClaims struct {
	Nonce string `json:"nonce"`
	jwt.StandardClaims
}

func GenerateStateToken(nonce, secret string) (string, error) {
	now := time.Now()
	claims := &StateClaims{
		Nonce: nonce,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(StateTokenTTL).Unix(),
			Issuer:    "estatehub",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateStateToken verifies signature and expiry and returns the nonce.
func ValidateStateToken(tokenString, secret string) (string, error) {
	claims := &StateClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrSignatureInvalid
	}
	if claims.Nonce == "" {
		return "", errors.New("state token carries no nonce")
	}
	return claims.Nonce, nil
}
