package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	require.Equal(t, NotFound, CodeOf(New(NotFound, "book not found")))
	require.Equal(t, OutOfStock, CodeOf(fmt.Errorf("checkout: %w", New(OutOfStock, "x"))))
	require.Equal(t, Code(""), CodeOf(errors.New("plain")))
	require.Equal(t, Code(""), CodeOf(nil))
}

func TestWrap(t *testing.T) {
	require.NoError(t, Wrap(StorageFailure, nil, "insert"))

	cause := errors.New("conn reset")
	err := Wrap(StorageFailure, cause, "insert order")
	require.ErrorIs(t, err, cause)
	require.True(t, Is(err, StorageFailure))
	require.Equal(t, "insert order: conn reset", err.Error())
}

func TestStorageKeepsExistingCode(t *testing.T) {
	coded := New(OutOfStock, "book 7 is out of stock")
	require.Same(t, coded, Storage(coded, "take"))

	err := Storage(errors.New("boom"), "take")
	require.Equal(t, StorageFailure, CodeOf(err))
}

func TestMessage(t *testing.T) {
	require.Equal(t, "cart is empty", Message(New(Validation, "cart is empty")))
	require.Equal(t, "internal error", Message(errors.New("secret dsn in here")))
	require.Equal(t, "internal error", Message(&Error{Code: Internal}))
}
