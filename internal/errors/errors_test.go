package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"agrodesk/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := ValidationError("bad amount")
	wrapped := Wrap(base, "failed to add cost")

	assert.Equal(t, CodeValidationError, GetCode(wrapped))
	assert.Equal(t, "failed to add cost: bad amount", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Nil(t, Wrapf(nil, "nothing %d", 1))
	assert.Nil(t, WithCode(CodeNotFound, nil))
}

func TestGetCodeFromDomainSentinels(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		http int
	}{
		{"not found", core.NewNotFoundError("cost", "1"), CodeNotFound, http.StatusNotFound},
		{"validation", core.NewMissingFieldError("name"), CodeValidationError, http.StatusBadRequest},
		{"session", fmt.Errorf("list costs: %w", core.ErrNoSession), CodeUnauthorized, http.StatusUnauthorized},
		{"degenerate", fmt.Errorf("anova: %w", core.ErrDegenerateInput), CodeDegenerateInput, http.StatusUnprocessableEntity},
		{"undefined cv", core.ErrUndefinedStatistic, CodeDegenerateInput, http.StatusUnprocessableEntity},
		{"plain", stderrors.New("boom"), CodeInternalError, http.StatusInternalServerError},
		{"external", ExternalServiceError("storage", stderrors.New("timeout")), CodeExternalService, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, GetCode(tt.err))
			assert.Equal(t, tt.http, HTTPStatus(tt.err))
		})
	}
}

func TestWithCodeOverrides(t *testing.T) {
	err := WithCode(CodeForbidden, stderrors.New("role required"))
	assert.Equal(t, CodeForbidden, GetCode(err))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(err))
	assert.True(t, IsAppError(err))
	assert.False(t, IsAppError(stderrors.New("x")))
}
