package jscsys

// Flavor names the JavaScriptCore library this binary links against, or ""
// when the native layer is not built.
func Flavor() string { return flavor }
