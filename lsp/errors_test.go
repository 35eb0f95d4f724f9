package lsp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProtocolErrorMessage(t *testing.T) {
	err := &ProtocolError{Code: -32601, Message: "method not found"}
	assert.Equal(t, "LS error -32601: method not found", err.Error())
}

func TestTimeoutErrorMessage(t *testing.T) {
	err := &TimeoutError{Method: "textDocument/hover"}
	assert.Equal(t, "request textDocument/hover timed out", err.Error())
}

func TestConnectionLostErrorMessage(t *testing.T) {
	assert.Equal(t, "connection to language server lost", (&ConnectionLostError{}).Error())
	assert.Equal(t, "connection to language server lost: subprocess exited",
		(&ConnectionLostError{Reason: "subprocess exited"}).Error())
}

func TestBootstrapErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("write: broken pipe")
	err := &BootstrapError{Step: "initialize", Err: cause}

	assert.Equal(t, "bootstrap failed at initialize: write: broken pipe", err.Error())
	assert.ErrorIs(t, err, cause)
}
