package greeter_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"greeter"
)

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", greeter.ErrorCode(nil))
	assert.Equal(t, greeter.ENOTFOUND, greeter.ErrorCode(greeter.Errorf(greeter.ENOTFOUND, "missing")))
	assert.Equal(t, greeter.EINTERNAL, greeter.ErrorCode(errors.New("disk on fire")))

	wrapped := fmt.Errorf("find: %w", greeter.Errorf(greeter.ECONFLICT, "dup"))
	assert.Equal(t, greeter.ECONFLICT, greeter.ErrorCode(wrapped))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "", greeter.ErrorMessage(nil))
	assert.Equal(t, "Greeter 5 not found.", greeter.ErrorMessage(greeter.Errorf(greeter.ENOTFOUND, "Greeter %d not found.", 5)))
	assert.Equal(t, "Internal error.", greeter.ErrorMessage(errors.New("boom")))
}

func TestBadRequestf(t *testing.T) {
	err := greeter.BadRequestf(greeter.KeyIDExists, "A new greeter cannot already have an ID.")
	assert.Equal(t, greeter.EINVALID, greeter.ErrorCode(err))
	assert.Equal(t, greeter.KeyIDExists, greeter.ErrorKey(err))
	assert.Equal(t, "", greeter.ErrorKey(errors.New("plain")))
	assert.Equal(t, "greeter error: code=invalid message=A new greeter cannot already have an ID.", err.Error())
}
