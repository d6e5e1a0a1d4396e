package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRequestIDFromContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	id, err := GetRequestIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "req-123", id)
}

func TestGetRequestIDFromContext_Missing(t *testing.T) {
	_, err := GetRequestIDFromContext(context.Background())
	assert.ErrorIs(t, err, ErrRequestIDNotFound)
}

func TestGetOrganizationIDFromContext(t *testing.T) {
	ctx := WithOrganizationID(context.Background(), "org-9")
	id, err := GetOrganizationIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "org-9", id)
}

func TestGetOrganizationIDFromContext_Missing(t *testing.T) {
	_, err := GetOrganizationIDFromContext(context.Background())
	assert.ErrorIs(t, err, ErrOrganizationIDNotFound)
}
