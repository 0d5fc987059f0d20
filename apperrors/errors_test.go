package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		kind   Kind
	}{
		{http.StatusBadRequest, KindValidation},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusUnauthorized, KindAuth},
		{http.StatusForbidden, KindNotFoundOrPermission},
		{http.StatusNotFound, KindNotFoundOrPermission},
		{http.StatusConflict, KindConflict},
		{http.StatusTooManyRequests, KindTransient},
		{http.StatusServiceUnavailable, KindTransient},
		{http.StatusInternalServerError, KindServer},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.kind, FromStatus("op", tt.status, "", nil).Kind)
		})
	}
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", FromStatus("load modules", http.StatusNotFound, "Not found.", nil))

	assert.True(t, errors.Is(err, ErrNotFoundOrPermission))
	assert.False(t, errors.Is(err, ErrAuth))
	assert.True(t, IsKind(err, KindNotFoundOrPermission))
}

func TestMessagePrefersServerDetail(t *testing.T) {
	e := FromStatus("enroll", http.StatusBadRequest, "Email already registered.", nil)
	assert.Equal(t, "Email already registered.", e.Message())

	e = Validation("create module", map[string]string{"order": "Order must be zero or greater!"})
	assert.Equal(t, "Order must be zero or greater!", e.Message())

	e = Transient("load", errors.New("dial tcp: refused"))
	assert.Equal(t, "Could not reach the server. Please try again.", e.Message())
	assert.Equal(t, http.StatusServiceUnavailable, e.HTTPStatus())
}

func TestAsWrapsForeignErrors(t *testing.T) {
	assert.Nil(t, As(nil))
	e := As(errors.New("boom"))
	assert.Equal(t, KindServer, e.Kind)
	assert.Equal(t, http.StatusBadGateway, e.HTTPStatus())
}
