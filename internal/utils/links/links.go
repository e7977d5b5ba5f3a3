package links

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Dan9191/rental-service/internal/models"
)

// ErrDisabled is returned when no signing secret is configured
var ErrDisabled = errors.New("invoice links are disabled")

// ErrInvalidLink is returned for tampered, malformed or expired tokens
var ErrInvalidLink = errors.New("invalid or expired invoice link")

const issuer = "rental-service"

// invoiceClaims carries everything needed to rebuild an invoice
type invoiceClaims struct {
	models.MeterReadings
	jwt.RegisteredClaims
}

// Signer issues and verifies signed invoice download links
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a signer. An empty secret disables signing.
func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Enabled reports whether links can be issued
func (s *Signer) Enabled() bool {
	return len(s.secret) > 0
}

// Sign returns a token identifying the tenant and the readings for an invoice
func (s *Signer) Sign(tenantID int64, readings models.MeterReadings) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}
	now := s.now()
	claims := invoiceClaims{
		MeterReadings: readings,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(tenantID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign invoice link: %w", err)
	}
	return token, nil
}

// Verify checks a token and returns the tenant id and readings it carries
func (s *Signer) Verify(token string) (int64, models.MeterReadings, error) {
	if !s.Enabled() {
		return 0, models.MeterReadings{}, ErrDisabled
	}

	claims := &invoiceClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, models.MeterReadings{}, fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}

	tenantID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, models.MeterReadings{}, fmt.Errorf("%w: bad subject", ErrInvalidLink)
	}
	return tenantID, claims.MeterReadings, nil
}
