package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationError(t *testing.T) {
	base := errors.New("boom")

	err := NewOperationError("inference.load", "", base)
	assert.EqualError(t, err, "inference.load: boom")
	assert.ErrorIs(t, err, base)

	err = NewOperationError("credentials.verify", "r-9", base)
	assert.EqualError(t, err, "credentials.verify (request_id=r-9): boom")

	assert.NoError(t, NewOperationError("noop", "", nil))

	var nilErr *OperationError
	assert.Equal(t, "", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}

