package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvass/internal/token"
	id "canvass/pkg/domain"
	dErrors "canvass/pkg/domain-errors"
)

func newService() *token.Service {
	return token.NewService("test-signing-key", "canvass", "canvass-api")
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newService()
	ownerID := id.NewOwnerID()

	raw, err := svc.GenerateOwnerToken(ownerID, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(raw)
	require.NoError(t, err)
	assert.Equal(t, ownerID.String(), claims.OwnerID)
	assert.NotEmpty(t, claims.SessionID)

	extracted, err := svc.ExtractOwnerID(raw)
	require.NoError(t, err)
	assert.Equal(t, ownerID, extracted)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := newService()

	raw, err := svc.GenerateOwnerToken(id.NewOwnerID(), -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(raw)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestWrongKeyRejected(t *testing.T) {
	raw, err := newService().GenerateOwnerToken(id.NewOwnerID(), time.Hour)
	require.NoError(t, err)

	other := token.NewService("different-key", "canvass", "canvass-api")
	_, err = other.ValidateToken(raw)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestGarbageRejected(t *testing.T) {
	svc := newService()
	_, err := svc.ValidateToken("not-a-token")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestMiddlewareAdapter(t *testing.T) {
	svc := newService()
	ownerID := id.NewOwnerID()
	raw, err := svc.GenerateOwnerToken(ownerID, time.Hour)
	require.NoError(t, err)

	claims, err := token.NewMiddlewareAdapter(svc).ValidateToken(raw)
	require.NoError(t, err)
	assert.Equal(t, ownerID.String(), claims.OwnerID)
}
