package models

// String methods for custom string types, used by toon serialization.

// Kind
func (k Kind) String() string { return string(k) }
