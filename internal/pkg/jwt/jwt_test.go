package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitapat/internal/pkg/config"
	pkgErrors "pitapat/pkg/errors"
)

func TestCallbackSignerRoundTrip(t *testing.T) {
	s := NewCallbackSigner(&config.CallbackConfig{Secret: "s3cret", Expire: 60})
	require.True(t, s.Enabled())

	token, err := s.Generate(42, "abc1234")
	require.NoError(t, err)

	claims, err := s.Validate(token, 42)
	require.NoError(t, err)
	assert.Equal(t, "abc1234", claims.ImageTag)
}

func TestCallbackSignerRejectsOtherProject(t *testing.T) {
	s := NewCallbackSigner(&config.CallbackConfig{Secret: "s3cret"})
	token, err := s.Generate(1, "abc1234")
	require.NoError(t, err)

	_, err = s.Validate(token, 2)
	assert.ErrorIs(t, err, pkgErrors.ErrInvalidToken)
}

func TestCallbackSignerRejectsForeignSignature(t *testing.T) {
	a := NewCallbackSigner(&config.CallbackConfig{Secret: "a"})
	b := NewCallbackSigner(&config.CallbackConfig{Secret: "b"})
	token, _ := a.Generate(1, "abc1234")

	_, err := b.Validate(token, 1)
	assert.Equal(t, pkgErrors.KindUnauthorized, pkgErrors.KindOf(err))
}

func TestCallbackSignerDisabled(t *testing.T) {
	s := NewCallbackSigner(&config.CallbackConfig{})
	assert.False(t, s.Enabled())

	token, err := s.Generate(1, "abc1234")
	require.NoError(t, err)
	assert.Empty(t, token)
}
