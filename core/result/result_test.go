package result

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("")))
	assert.Equal(t, KindForbidden, KindOf(fmt.Errorf("wrapped: %w", Forbidden(""))))
	assert.Equal(t, KindInternal, KindOf(errors.New("db down")))
	assert.False(t, Is(nil, KindInternal))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Cannot find audio in storage.", Message(BadRequest("Cannot find audio in storage.")))
	assert.Equal(t, "The requested resource was not found.", Message(NotFound("")))
	assert.Equal(t, "An unknown error has occurred.", Message(errors.New("dial tcp 10.0.0.3:3306: refused")))
}
