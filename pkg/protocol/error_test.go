package protocol

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind error
	}{
		{NewConfigurationError("missing %s", "USERNAME"), ErrConfiguration},
		{NewAuthenticationError("status %d", 401), ErrAuthentication},
		{NewValidationError("missing vid param"), ErrValidation},
		{NewUnsupportedLinkError("host example.com"), ErrUnsupportedLink},
		{NewNetworkError(context.DeadlineExceeded, false), ErrNetwork},
		{NewRemoteCommandError("vehicle offline"), ErrRemoteCommand},
	}

	all := []error{ErrConfiguration, ErrAuthentication, ErrValidation, ErrUnsupportedLink, ErrNetwork, ErrRemoteCommand}
	for _, test := range tests {
		for _, kind := range all {
			assert.Equal(t, kind == test.kind, errors.Is(test.err, kind), "%v is %v", test.err, kind)
		}
	}
}

func TestWrappedKindSurvives(t *testing.T) {
	err := fmt.Errorf("while locking: %w", NewRemoteCommandError("busy"))
	assert.ErrorIs(t, err, ErrRemoteCommand)
	assert.Equal(t, "while locking: remote command failed: busy", err.Error())
}

func TestNetworkErrorExposesCause(t *testing.T) {
	err := NewNetworkError(context.DeadlineExceeded, true)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, MayHaveSucceeded(err))
	assert.True(t, Temporary(err))
	assert.False(t, MayHaveSucceeded(NewValidationError("bad")))
}

func TestParseRegion(t *testing.T) {
	for _, r := range Regions() {
		parsed, err := ParseRegion(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}

	parsed, err := ParseRegion(" mme ")
	require.NoError(t, err)
	assert.Equal(t, RegionEurope, parsed)

	_, err = ParseRegion("MARS")
	assert.ErrorIs(t, err, ErrValidation)
}
