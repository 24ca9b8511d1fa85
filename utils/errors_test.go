package utils

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestHttpStatusFromError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HttpStatusFromError(NewValidationError("bad input")))
	assert.Equal(t, http.StatusUnauthorized, HttpStatusFromError(&NotConnectedError{}))
	assert.Equal(t, http.StatusUnauthorized, HttpStatusFromError(&TokenExpiredError{}))
	assert.Equal(t, http.StatusBadGateway, HttpStatusFromError(&UpstreamError{API: "x", StatusCode: 500}))
	assert.Equal(t, http.StatusInternalServerError, HttpStatusFromError(NewConfigurationError("no key")))
	assert.Equal(t, http.StatusInternalServerError, HttpStatusFromError(NewPersistenceError("write", errors.New("boom"))))
	assert.Equal(t, http.StatusInternalServerError, HttpStatusFromError(errors.New("unknown")))
}

func TestHttpStatusFromWrappedError(t *testing.T) {
	wrapped := errors.Wrap(&TokenExpiredError{}, "while publishing")
	assert.Equal(t, http.StatusUnauthorized, HttpStatusFromError(wrapped))
}
