package jsc

// Exception is a JavaScript exception surfaced as a Go error. It holds the
// thrown value, which may be any value, not only an Error object.
type Exception struct {
	value *Value
	msg   string
}

func newException(v *Value) *Exception {
	e := &Exception{value: v, msg: "uncaught exception"}
	if s, err := v.ToString(); err == nil {
		e.msg = s
	}
	return e
}

// Error returns the thrown value converted to a string when it was caught,
// such as "Error: x".
func (e *Exception) Error() string { return e.msg }

// Value returns the thrown value.
func (e *Exception) Value() *Value { return e.value }

// Name returns the thrown object's name property, such as "TypeError".
func (e *Exception) Name() string { return e.property("name") }

// Message returns the thrown object's message property.
func (e *Exception) Message() string { return e.property("message") }

// Stack returns the thrown object's stack property when the engine set one.
func (e *Exception) Stack() string { return e.property("stack") }

func (e *Exception) property(name string) string {
	if !e.value.IsObject() {
		return ""
	}
	v, err := (&Object{Value: e.value}).Property(name)
	if err != nil || v == nil {
		return ""
	}
	defer v.Free()
	if v.IsUndefined() {
		return ""
	}
	s, _ := v.ToString()
	return s
}
