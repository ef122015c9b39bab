package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Buffden/Event-Management-System-sub005/internal/domain"
)

// QRClaims is the signed content of a ticket QR payload
type QRClaims struct {
	TicketID string `json:"tid"`
	EventID  string `json:"eid"`
	jwt.RegisteredClaims
}

// QRSigner signs and verifies ticket QR payloads. The payload is an HS256
// compact token binding ticket ID and event ID to a server-side secret, so
// payloads cannot be guessed or transplanted between tickets. Expiry is not
// encoded in the token; the ticket row is the authority and is re-checked
// at scan time.
type QRSigner struct {
	secret []byte
	issuer string
}

// NewQRSigner creates a new QRSigner
func NewQRSigner(secret, issuer string) *QRSigner {
	return &QRSigner{secret: []byte(secret), issuer: issuer}
}

// Sign produces the QR payload for a ticket
func (s *QRSigner) Sign(ticketID, eventID string, issuedAt time.Time) (string, error) {
	claims := QRClaims{
		TicketID: ticketID,
		EventID:  eventID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   s.issuer,
			Subject:  ticketID,
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign qr payload: %w", err)
	}
	return signed, nil
}

// Verify checks a QR payload and returns its claims. A payload that does
// not decode or verify resolves to no ticket, so every failure is reported
// uniformly as ticket-not-found; the caller never learns whether a forged
// payload named a real ticket.
func (s *QRSigner) Verify(payload string) (*QRClaims, error) {
	claims := &QRClaims{}
	token, err := jwt.ParseWithClaims(payload, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrTicketNotFound
	}
	if claims.TicketID == "" || claims.EventID == "" {
		return nil, domain.ErrTicketNotFound
	}
	return claims, nil
}
