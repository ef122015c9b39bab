package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/Buffden/Event-Management-System-sub005/internal/domain"
)

func TestQRSigner_RoundTrip(t *testing.T) {
	signer := NewQRSigner("test-qr-secret-please-rotate", "event-engine")

	payload, err := signer.Sign("ticket-001", "event-001", time.Now())
	assert.NoError(t, err)
	assert.NotEmpty(t, payload)

	claims, err := signer.Verify(payload)
	assert.NoError(t, err)
	assert.Equal(t, "ticket-001", claims.TicketID)
	assert.Equal(t, "event-001", claims.EventID)
	assert.Equal(t, "event-engine", claims.Issuer)
}

func TestQRSigner_NoExpiryClaim(t *testing.T) {
	signer := NewQRSigner("test-qr-secret-please-rotate", "event-engine")

	payload, err := signer.Sign("ticket-001", "event-001", time.Now().Add(-48*time.Hour))
	assert.NoError(t, err)

	// Token validity is independent of wall-clock time; the ticket row
	// decides expiry.
	claims, err := signer.Verify(payload)
	assert.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestQRSigner_WrongSecret(t *testing.T) {
	signer := NewQRSigner("test-qr-secret-please-rotate", "event-engine")
	other := NewQRSigner("a-completely-different-secret", "event-engine")

	payload, err := other.Sign("ticket-001", "event-001", time.Now())
	assert.NoError(t, err)

	_, err = signer.Verify(payload)
	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestQRSigner_TamperedPayload(t *testing.T) {
	signer := NewQRSigner("test-qr-secret-please-rotate", "event-engine")

	payload, err := signer.Sign("ticket-001", "event-001", time.Now())
	assert.NoError(t, err)

	_, err = signer.Verify(payload + "x")
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)

	_, err = signer.Verify("not-a-token")
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestQRSigner_RejectsUnsignedAlgorithm(t *testing.T) {
	signer := NewQRSigner("test-qr-secret-please-rotate", "event-engine")

	token := jwt.NewWithClaims(jwt.SigningMethodNone, &QRClaims{
		TicketID: "ticket-001",
		EventID:  "event-001",
	})
	payload, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	_, err = signer.Verify(payload)
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestQRSigner_MissingBinding(t *testing.T) {
	signer := NewQRSigner("test-qr-secret-please-rotate", "event-engine")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &QRClaims{
		TicketID: "",
		EventID:  "event-001",
	})
	payload, err := token.SignedString([]byte("test-qr-secret-please-rotate"))
	assert.NoError(t, err)

	_, err = signer.Verify(payload)
	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}
