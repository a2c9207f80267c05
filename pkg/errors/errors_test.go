package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/agentstation/qiitabrowser/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{Resource: "item", ID: "c686397e4a0f4f11683d"}
		assert.Equal(t, "item with ID c686397e4a0f4f11683d not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("user", "jun_nama")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("cache.backend", "tape", "unknown backend")
		assert.Equal(t, "validation failed for field cache.backend: unknown backend", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "invalid configuration"}
		assert.Equal(t, "validation failed: invalid configuration", err.Error())
	})
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		target error
	}{
		{"not found", 404, pkgerrors.ErrNotFound},
		{"unauthorized", 401, pkgerrors.ErrAPIKeyRequired},
		{"rate limited", 429, pkgerrors.ErrRateLimited},
		{"server error", 503, pkgerrors.ErrProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pkgerrors.NewAPIError("qiita", tt.status, "boom")
			assert.True(t, errors.Is(err, tt.target))
			assert.Contains(t, err.Error(), fmt.Sprintf("status %d", tt.status))
		})
	}

	t.Run("bad request matches nothing", func(t *testing.T) {
		err := pkgerrors.NewAPIError("qiita", 400, "bad")
		assert.False(t, pkgerrors.IsNotFound(err))
		assert.False(t, pkgerrors.IsRateLimited(err))
		assert.False(t, pkgerrors.IsUnavailable(err))
	})

	t.Run("without status", func(t *testing.T) {
		err := &pkgerrors.APIError{Service: "qiita", Message: "connection reset"}
		assert.Equal(t, "API error from qiita: connection reset", err.Error())
	})
}

func TestMisuseError(t *testing.T) {
	err := pkgerrors.NewMisuseError("hub", "Profile", pkgerrors.ErrNotInitialized)
	assert.Equal(t, "misuse of hub: Profile: not initialized", err.Error())
	assert.ErrorIs(t, err, pkgerrors.ErrNotInitialized)
}

func TestIOAndResourceErrors(t *testing.T) {
	cause := errors.New("permission denied")
	ioErr := pkgerrors.NewIOError("create", "/cache/okhttp3", cause)
	assert.Equal(t, "IO error during create of /cache/okhttp3: permission denied", ioErr.Error())

	resErr := pkgerrors.WrapResource("create", "cached client", "", ioErr)
	require.Error(t, resErr)
	assert.Contains(t, resErr.Error(), "failed to create cached client")

	var target *pkgerrors.IOError
	require.True(t, errors.As(resErr, &target))
	assert.Equal(t, "/cache/okhttp3", target.Path)
	assert.ErrorIs(t, resErr, cause)
}

func TestParseAndConfigErrors(t *testing.T) {
	parseErr := pkgerrors.WrapParse("json", "", errors.New("unexpected EOF"))
	assert.Equal(t, "json parse error: unexpected EOF", parseErr.Error())

	withFile := pkgerrors.NewParseError("yaml", ".qiitabrowser.yaml", "bad indent", nil)
	assert.Equal(t, "parse error in yaml .qiitabrowser.yaml: bad indent", withFile.Error())

	cfgErr := pkgerrors.NewConfigError("config", "read failed", errors.New("eof"))
	assert.Equal(t, "configuration error in config: read failed", cfgErr.Error())
	assert.EqualError(t, errors.Unwrap(cfgErr), "eof")
}

func TestAuthenticationError(t *testing.T) {
	err := pkgerrors.NewAuthenticationError("qiita", "bearer", "token missing", nil)
	assert.Equal(t, "authentication error for qiita (bearer): token missing", err.Error())
	assert.True(t, errors.Is(err, pkgerrors.ErrAPIKeyRequired))

	rejected := pkgerrors.NewAuthenticationError("qiita", "bearer", "Unauthorized", pkgerrors.NewAPIError("qiita", 401, "Unauthorized"))
	var apiErr *pkgerrors.APIError
	require.ErrorAs(t, rejected, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
}

func TestIsCanceled(t *testing.T) {
	err := fmt.Errorf("%w: %w", pkgerrors.ErrCanceled, errors.New("context canceled"))
	assert.True(t, pkgerrors.IsCanceled(err))
	assert.False(t, pkgerrors.IsTimeout(err))
}

func TestWrapHelpersNil(t *testing.T) {
	assert.NoError(t, pkgerrors.WrapIO("read", "x", nil))
	assert.NoError(t, pkgerrors.WrapResource("create", "x", "", nil))
	assert.NoError(t, pkgerrors.WrapParse("json", "", nil))
	assert.NoError(t, pkgerrors.WrapValidation("field", nil))
}
