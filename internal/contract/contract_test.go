package contract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recovered(fn func()) (r any) {
	defer func() { r = recover() }()
	fn()
	return nil
}

func TestRequire_Passes(t *testing.T) {
	assert.NotPanics(t, func() { Require(true, "never") })
}

func TestRequire_PanicsWithViolation(t *testing.T) {
	r := recovered(func() { Require(false, "unexpected input size for %s", "BinaryLogLoss") })
	require.NotNil(t, r)
	assert.True(t, IsViolation(r))

	err, ok := r.(error)
	require.True(t, ok)
	assert.True(t, errors.Is(err, ErrViolation))
	assert.Contains(t, err.Error(), "unexpected input size for BinaryLogLoss")
}

func TestIsViolation_OtherValues(t *testing.T) {
	assert.False(t, IsViolation("plain string"))
	assert.False(t, IsViolation(errors.New("other")))
	assert.False(t, IsViolation(nil))
}
