package errorbank

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestKindMappings(t *testing.T) {
	tests := []struct {
		err    *AppError
		kind   Kind
		status int
		code   codes.Code
	}{
		{err: BadRequest("bad"), kind: KindBadRequest, status: http.StatusBadRequest, code: codes.InvalidArgument},
		{err: NotFound("missing"), kind: KindNotFound, status: http.StatusNotFound, code: codes.NotFound},
		{err: Unprocessable("nope"), kind: KindUnprocessableEntity, status: http.StatusUnprocessableEntity, code: codes.FailedPrecondition},
		{err: Unavailable("slow"), kind: KindUnavailable, status: http.StatusServiceUnavailable, code: codes.Unavailable},
		{err: Internal("boom"), kind: KindInternal, status: http.StatusInternalServerError, code: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind())
			assert.Equal(t, tt.status, tt.err.StatusCode())
			assert.Equal(t, tt.code, tt.err.GRPCCode())
		})
	}
}

func TestNilAppError(t *testing.T) {
	var e *AppError
	assert.Equal(t, "<nil>", e.Error())
	assert.Equal(t, KindInternal, e.Kind())
	assert.Equal(t, http.StatusInternalServerError, e.StatusCode())
	assert.Nil(t, e.Unwrap())
}

func TestCauseAndDetails(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("failed to load order",
		WithCause(cause),
		WithDetail("order.id", 7),
		WithDetails(map[string]any{"attempt": 2}),
	)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load order: connection refused", err.Error())
	assert.Equal(t, "failed to load order", err.Message())
	assert.Equal(t, map[string]any{"order.id": 7, "attempt": 2}, err.Details())
}

func TestFromAndKindOf(t *testing.T) {
	assert.Nil(t, From(nil))
	assert.Equal(t, Kind(""), KindOf(nil))

	wrapped := fmt.Errorf("handler: %w", NotFound("order not found"))
	require.NotNil(t, From(wrapped))
	assert.Equal(t, KindNotFound, KindOf(wrapped))

	plain := errors.New("boom")
	assert.Equal(t, KindInternal, KindOf(plain))
	assert.ErrorIs(t, From(plain), plain)
}

func TestEmptyMessageDefaultsToKind(t *testing.T) {
	assert.Equal(t, "not_found", NotFound("").Message())
}
