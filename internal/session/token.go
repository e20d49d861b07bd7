package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/signcore/service-auth-go/pkg/utilities"
)

var (
	// ErrTokenExpired marks a token whose signature checks out but whose
	// expiry has elapsed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers every other verification failure: bad
	// signature, malformed token, wrong algorithm.
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the payload embedded in every session token: the account id and
// display name, plus registered claims carrying jti and expiry.
type Claims struct {
	AccountID int64  `json:"id"`
	Name      string `json:"name"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies HS256 bearer tokens with a fixed TTL.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Issuer{secret: secret, ttl: ttl}
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue mints a signed token for the given account. The jti is a KSUID so
// sign-out can revoke the exact token later.
func (i *Issuer) Issue(accountID int64, name string) (string, error) {
	now := time.Now()
	claims := &Claims{
		AccountID: accountID,
		Name:      name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        utilities.NewKSUID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify parses the token, checks signature and expiry, and returns the
// decoded claims. Only HMAC signatures are accepted.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
