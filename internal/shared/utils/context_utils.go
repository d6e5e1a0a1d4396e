package utils

import (
	"context"
	"errors"

	"org-registry/internal/shared/contextkeys"
)

// Common context errors
var (
	ErrRequestIDNotFound       = errors.New("requestID not found in context")
	ErrRequestIDNotString      = errors.New("requestID in context is not a string")
	ErrOrganizationIDNotFound  = errors.New("organizationID not found in context")
	ErrOrganizationIDNotString = errors.New("organizationID in context is not a string")
)

// GetRequestIDFromContext retrieves the request ID from the context.
// It returns the request ID and an error if it is not found or is not a string.
func GetRequestIDFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(contextkeys.RequestIDKey)
	if val == nil {
		return "", ErrRequestIDNotFound
	}
	requestID, ok := val.(string)
	if !ok {
		return "", ErrRequestIDNotString
	}
	return requestID, nil
}

// GetOrganizationIDFromContext retrieves the organization ID from the context.
func GetOrganizationIDFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(contextkeys.OrganizationIDKey)
	if val == nil {
		return "", ErrOrganizationIDNotFound
	}
	organizationID, ok := val.(string)
	if !ok {
		return "", ErrOrganizationIDNotString
	}
	return organizationID, nil
}

// WithRequestID returns a context carrying the given request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextkeys.RequestIDKey, requestID)
}

// WithOrganizationID returns a context carrying the given organization ID.
func WithOrganizationID(ctx context.Context, organizationID string) context.Context {
	return context.WithValue(ctx, contextkeys.OrganizationIDKey, organizationID)
}
