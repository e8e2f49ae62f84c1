package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("join: %w", New(ResourceUnavailable, "The requested queue is out of capacity."))
	assert.Equal(t, ResourceUnavailable, KindOf(err))
	assert.True(t, Is(err, ResourceUnavailable))
	assert.False(t, Is(err, NotFound))

	assert.Equal(t, Internal, KindOf(errors.New("boom")))
}

func TestMessageOfHidesForeignErrors(t *testing.T) {
	cause := errors.New("pq: connection refused")
	wrapped := Wrap(Internal, cause, "Unable to reach the database.")

	assert.Equal(t, "Unable to reach the database.", MessageOf(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.NotContains(t, MessageOf(cause), "pq")
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		InvalidInput:        http.StatusBadRequest,
		Unauthorized:        http.StatusUnauthorized,
		NotFound:            http.StatusNotFound,
		ResourceUnavailable: http.StatusForbidden,
		NoOperation:         http.StatusUnprocessableEntity,
		Internal:            http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, HTTPStatus(kind), kind)
	}
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, StatusOf(Unprocessable(nil, "Field \"name\" is required.")))
	assert.Equal(t, http.StatusNotFound, StatusOf(New(NotFound, "No queue exists with code \"12345\".")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
}
