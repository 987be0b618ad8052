package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureTokenIsStableWithinSession(t *testing.T) {
	m := NewCSRFManager("secret")
	sess := &Session{ID: "abc", values: map[string]string{}}

	first, err := m.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := m.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestVerifyToken(t *testing.T) {
	m := NewCSRFManager("secret")
	sess := &Session{ID: "abc", values: map[string]string{}}
	token, err := m.EnsureToken(context.Background(), sess)
	require.NoError(t, err)

	assert.NoError(t, m.VerifyToken(context.Background(), sess, token))
	assert.ErrorIs(t, m.VerifyToken(context.Background(), sess, "forged"), ErrCSRFTokenMismatch)
	assert.ErrorIs(t, m.VerifyToken(context.Background(), sess, ""), ErrCSRFTokenMissing)
	assert.ErrorIs(t, m.VerifyToken(context.Background(), nil, token), ErrCSRFTokenMissing)
}
