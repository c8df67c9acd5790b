package jsc

import (
	"errors"
	"fmt"

	"github.com/javascriptcore-go/jsc/pkg/jscsys"
)

var (
	// ErrNotBuilt is returned by constructors when the binary carries no
	// native engine and Config.Native is nil.
	ErrNotBuilt = errors.New("jsc: native JavaScriptCore not built into this binary")

	// ErrReleased reports use of a Context, ContextGroup, Value, Class or String
	// after it was released.
	ErrReleased = errors.New("jsc: use after release")

	// ErrForeignGroup reports a Value passed to a context of another group.
	ErrForeignGroup = errors.New("jsc: value belongs to a different context group")

	// ErrInvalidClassName is returned for an empty class name or one that
	// contains NUL.
	ErrInvalidClassName = errors.New("jsc: invalid class name")

	// ErrConversion matches every *ConversionError.
	ErrConversion = errors.New("jsc: conversion failed")

	// ErrAllocation matches every *AllocationError.
	ErrAllocation = errors.New("jsc: allocation failed")
)

// ConversionError reports a value that could not be converted. Err carries the
// engine's *Exception when the conversion threw.
type ConversionError struct {
	From Type
	To   string
	Err  error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("jsc: cannot convert %s to %s: %v", e.From, e.To, e.Err)
	}
	return fmt.Sprintf("jsc: cannot convert %s to %s", e.From, e.To)
}

func (e *ConversionError) Unwrap() error { return e.Err }

func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

// AllocationError reports a native create or instantiate call that returned
// NULL.
type AllocationError struct {
	Op string
}

func (e *AllocationError) Error() string {
	return "jsc: allocation failed: " + e.Op
}

func (e *AllocationError) Is(target error) bool { return target == ErrAllocation }

// RemapError converts raw binding layer errors to public API errors.
func RemapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, jscsys.ErrNotBuilt) {
		return ErrNotBuilt
	}
	return err
}
