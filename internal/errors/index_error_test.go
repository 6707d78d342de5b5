package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexErrorFormatting(t *testing.T) {
	err := NewNotFoundError("GetByLabel", "price")
	assert.Equal(t, "GetByLabel operation failed on label 'price': label does not exist", err.Error())

	err = NewTypeConversionError("Coerce", "cannot cast string to numeric type")
	assert.Equal(t, "Coerce operation failed: cannot cast string to numeric type", err.Error())
}

func TestRangeErrorMessage(t *testing.T) {
	err := NewRangeError("At", 5, 3)
	assert.Equal(t, KindRange, err.Kind)
	assert.Contains(t, err.Error(), "index 5 is out of bounds for axis 0 with size 3")
}

func TestConstructorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  *IndexError
		kind Kind
	}{
		{name: "type conversion", err: NewTypeConversionError("op", "m"), kind: KindTypeConversion},
		{name: "range", err: NewRangeError("op", 1, 1), kind: KindRange},
		{name: "overflow", err: NewOverflowError("op", "m"), kind: KindOverflow},
		{name: "unsupported", err: NewUnsupportedError("op", "m"), kind: KindUnsupported},
		{name: "not found", err: NewNotFoundError("op", "l"), kind: KindNotFound},
		{name: "chained assignment", err: NewChainedAssignmentError("op"), kind: KindChainedAssignment},
		{name: "internal", err: NewInternalError("op", nil), kind: KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.True(t, IsKind(tt.err, tt.kind))
		})
	}
}

func TestIsKind(t *testing.T) {
	err := NewOverflowError("Coerce", "m")
	assert.True(t, IsKind(err, KindOverflow))
	assert.False(t, IsKind(err, KindRange))
	assert.False(t, IsKind(errors.New("plain"), KindOverflow))
	assert.False(t, IsKind(nil, KindOverflow))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewInternalError("Rebuild", cause)

	require.ErrorIs(t, err, cause)
	wrapped := fmt.Errorf("outer: %w", err)
	var ie *IndexError
	require.ErrorAs(t, wrapped, &ie)
	assert.Equal(t, KindInternal, ie.Kind)
}

func TestIsComparesFields(t *testing.T) {
	a := NewNotFoundError("GetByLabel", "x")
	b := NewNotFoundError("GetByLabel", "x")
	c := NewNotFoundError("GetByLabel", "y")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestPredefinedErrors(t *testing.T) {
	assert.True(t, IsKind(ErrEmptyIndex, KindUnsupported))
	assert.True(t, IsKind(ErrMismatchedLength, KindInternal))
	assert.ErrorIs(t, ErrMismatchedLength, ErrMismatchedLength)
}
