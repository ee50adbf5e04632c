package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Claims is the JWT payload issued on login.
type Claims struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	Exp     int64  `json:"exp"`
	Iat     int64  `json:"iat"`
}

var ErrInvalidToken = errors.New("invalid token")

func signingSecret() ([]byte, error) {
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	return []byte(secret), nil
}

// SignJWT produces a compact HS256 token for the given claims.
func SignJWT(claims Claims) (string, error) {
	secret, err := signingSecret()
	if err != nil {
		return "", err
	}
	header := map[string]string{"alg": "HS256", "typ": "JWT"}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", err
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	enc := base64.RawURLEncoding
	unsigned := enc.EncodeToString(headerJSON) + "." + enc.EncodeToString(claimsJSON)
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(unsigned))
	sig := enc.EncodeToString(mac.Sum(nil))
	return unsigned + "." + sig, nil
}

// VerifyJWT checks the signature and expiry and returns the claims.
func VerifyJWT(token string) (Claims, error) {
	var claims Claims
	secret, err := signingSecret()
	if err != nil {
		return claims, err
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return claims, ErrInvalidToken
	}
	enc := base64.RawURLEncoding
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(parts[0] + "." + parts[1]))
	expected := mac.Sum(nil)
	actual, err := enc.DecodeString(parts[2])
	if err != nil {
		return claims, ErrInvalidToken
	}
	if !hmac.Equal(expected, actual) {
		return claims, ErrInvalidToken
	}
	payload, err := enc.DecodeString(parts[1])
	if err != nil {
		return claims, ErrInvalidToken
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return claims, ErrInvalidToken
	}
	if claims.Exp > 0 && time.Now().Unix() > claims.Exp {
		return claims, fmt.Errorf("%w: expired", ErrInvalidToken)
	}
	return claims, nil
}

// NewSessionClaims builds claims for a signed-in user valid for seven days.
func NewSessionClaims(sub, email, name, picture string) Claims {
	now := time.Now()
	return Claims{
		Sub:     sub,
		Email:   email,
		Name:    name,
		Picture: picture,
		Iat:     now.Unix(),
		Exp:     now.Add(7 * 24 * time.Hour).Unix(),
	}
}
