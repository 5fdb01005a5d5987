// Package apperr carries the error classes every layer agrees on. Services
// return *Error values; the HTTP boundary maps a Code to a status.
package apperr

import (
	"errors"
	"fmt"
)

type Code string

const (
	Unauthenticated     Code = "UNAUTHENTICATED"
	InvalidToken        Code = "INVALID_TOKEN"
	ExpiredToken        Code = "EXPIRED_TOKEN"
	Forbidden           Code = "FORBIDDEN"
	InvalidCredentials  Code = "INVALID_CREDENTIALS"
	VerificationFailure Code = "VERIFICATION_FAILURE"
	Validation          Code = "VALIDATION_ERROR"
	NoFieldsProvided    Code = "NO_FIELDS_PROVIDED"
	NotFound            Code = "NOT_FOUND"
	UsernameTaken       Code = "USERNAME_TAKEN"
	NotRented           Code = "NOT_RENTED"
	OutOfStock          Code = "OUT_OF_STOCK"
	StorageFailure      Code = "STORAGE_FAILURE"
	Internal            Code = "INTERNAL"
)

type Error struct {
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(code Code, msg string) error { return &Error{Code: code, Msg: msg} }

func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under code. A nil err stays nil.
func Wrap(code Code, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Msg: msg, Err: err}
}

// Storage classifies err as a storage fault unless it already carries a code.
func Storage(err error, msg string) error {
	if err == nil {
		return nil
	}
	if CodeOf(err) != "" {
		return err
	}
	return Wrap(StorageFailure, err, msg)
}

// CodeOf extracts the outermost code, or "" for unclassified errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func Is(err error, code Code) bool { return err != nil && CodeOf(err) == code }

// Message returns the client-safe message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}
