package jsc

import (
	"runtime"
	"unicode/utf16"

	"github.com/javascriptcore-go/jsc/pkg/jscsys"
)

// String is an owned engine string of UTF-16 code units. Unlike a Go string it
// can hold any code unit sequence, including NUL and unpaired surrogates.
type String struct {
	api jscsys.API
	ref jscsys.StringRef
	own *ownership
}

// NewJSString creates an engine string from s. NUL bytes are kept.
func (c *Context) NewJSString(s string) (*String, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	return adoptString(c.api, jsString(c.api, s))
}

// NewJSStringUTF16 creates an engine string from raw code units.
func (c *Context) NewJSStringUTF16(units []uint16) (*String, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	return adoptString(c.api, c.api.StringCreateWithCharacters(units))
}

// adoptString takes ownership of a freshly created or copied string.
func adoptString(api jscsys.API, ref jscsys.StringRef) (*String, error) {
	if ref == 0 {
		return nil, &AllocationError{Op: "create string"}
	}
	s := &String{api: api, ref: ref, own: ownString(api, ref)}
	runtime.SetFinalizer(s, (*String).Release)
	return s, nil
}

func (s *String) live() error {
	if s == nil || s.own.released() {
		return ErrReleased
	}
	return nil
}

// Release drops the string. Further calls are no-ops.
func (s *String) Release() {
	if s == nil {
		return
	}
	if s.own.release() {
		runtime.SetFinalizer(s, nil)
	}
}

// Len returns the length in UTF-16 code units.
func (s *String) Len() int {
	if s.live() != nil {
		return 0
	}
	return s.api.StringGetLength(s.ref)
}

// IsEmpty reports whether the string has no code units.
func (s *String) IsEmpty() bool { return s.Len() == 0 }

// UTF16 returns a copy of the code units.
func (s *String) UTF16() []uint16 {
	if s.live() != nil {
		return nil
	}
	return s.api.StringGetCharacters(s.ref)
}

// String decodes the string. Unpaired surrogates become U+FFFD.
func (s *String) String() string {
	return string(utf16.Decode(s.UTF16()))
}

// Equal compares code units.
func (s *String) Equal(other *String) bool {
	if s.live() != nil || other.live() != nil {
		return false
	}
	return s.api.StringIsEqual(s.ref, other.ref)
}

// EqualString compares against a Go string, NUL bytes included.
func (s *String) EqualString(other string) bool {
	if s.live() != nil {
		return false
	}
	units := utf16.Encode([]rune(other))
	got := s.api.StringGetCharacters(s.ref)
	if len(got) != len(units) {
		return false
	}
	for i := range got {
		if got[i] != units[i] {
			return false
		}
	}
	return true
}

// jsString creates a caller-owned engine string for s. It goes through UTF-16
// so NUL bytes survive.
func jsString(api jscsys.API, s string) jscsys.StringRef {
	return api.StringCreateWithCharacters(utf16.Encode([]rune(s)))
}

func goString(api jscsys.API, ref jscsys.StringRef) string {
	return string(utf16.Decode(api.StringGetCharacters(ref)))
}
