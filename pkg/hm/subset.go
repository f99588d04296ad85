package hm

import (
	"fmt"
)

// Subset reports whether a value of type t1 may be passed where t2 is
// expected. Only equal types are accepted.
func Subset(t1, t2 Type) bool {
	if t1.Eq(t2) {
		return true
	}

	// TODO: variance once base types have subtypes (contravariant
	// argument, covariant result).
	return false
}

// SubsetError is returned when an argument type is not accepted by a
// function's parameter type.
type SubsetError struct {
	Have Type
	Want Type
}

func (e SubsetError) Error() string {
	return fmt.Sprintf("cannot use %s as %s", e.Have, e.Want)
}

// CheckSubset is Subset with an error describing the mismatch.
func CheckSubset(have, want Type) error {
	if Subset(have, want) {
		return nil
	}
	return SubsetError{Have: have, Want: want}
}
