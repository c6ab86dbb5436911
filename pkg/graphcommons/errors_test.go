package graphcommons

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "graphcommons: 404: not found", (&APIError{StatusCode: 404, Message: "not found"}).Error())
	assert.Equal(t, `edge 10: unresolved node "2"`, (&UnresolvedReferenceError{Kind: KindNode, ID: "2", From: "edge 10"}).Error())
	assert.Equal(t, `unresolved edgetype "5"`, (&UnresolvedReferenceError{Kind: KindEdgeType, ID: "5"}).Error())
}

func TestTransportErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := fmt.Errorf("fetching: %w", &TransportError{Method: "GET", URL: "http://x", Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "fetching: GET http://x: dial tcp: refused", err.Error())
}

func TestErrorCodes(t *testing.T) {
	for _, code := range []int{400, 401, 403, 404, 405, 500} {
		assert.True(t, ErrorCodes[code], "code %d", code)
	}
	assert.False(t, ErrorCodes[200])
	assert.False(t, ErrorCodes[502])
}
