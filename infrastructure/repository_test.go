package infrastructure

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestStoreError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"record not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"bad conn", driver.ErrBadConn, ErrTransientStore},
		{"connection failure", &pq.Error{Code: "08006"}, ErrTransientStore},
		{"serialization failure", &pq.Error{Code: "40001"}, ErrTransientStore},
		{"admin shutdown", &pq.Error{Code: "57P01"}, ErrTransientStore},
		{"already classified", Validation("text is required"), ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StoreError("op", tt.err)
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestStoreError_PassesThroughOtherErrors(t *testing.T) {
	cause := &pq.Error{Code: "23505"}
	err := StoreError("insert", cause)

	assert.False(t, errors.Is(err, ErrTransientStore))
	var pqErr *pq.Error
	assert.True(t, errors.As(err, &pqErr))
	assert.Equal(t, pq.ErrorCode("23505"), pqErr.Code)
	assert.Nil(t, StoreError("noop", nil))
}

func TestReasonErrors(t *testing.T) {
	err := fmt.Errorf("post: %w", NotAuthorized("Not a group member."))

	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Equal(t, "post: Not a group member.", err.Error())
	assert.ErrorIs(t, NotFound("file not found"), ErrNotFound)
}
