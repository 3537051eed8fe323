// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package annotate

import (
	"fmt"
	"strings"
)

// HeaderLineType is the value type declared by an INFO header line.
type HeaderLineType int

const (
	// Integer is a signed integer value.
	Integer HeaderLineType = iota
	// Float is a floating-point value.
	Float
	// Flag is a valueless presence marker.
	Flag
	// Character is a single character.
	Character
	// String is an arbitrary string.
	String
)

var headerLineTypeNames = [...]string{"Integer", "Float", "Flag", "Character", "String"}

func (t HeaderLineType) String() string {
	if t < 0 || int(t) >= len(headerLineTypeNames) {
		return fmt.Sprintf("HeaderLineType(%d)", int(t))
	}
	return headerLineTypeNames[t]
}

// HeaderLine describes one INFO field produced by an annotation.  It carries
// the metadata a host needs to declare the field before writing any values.
type HeaderLine struct {
	ID string
	// Number is the value count, e.g. "1", "A", or ".".
	Number      string
	Type        HeaderLineType
	Description string
}

// String renders l as a "##INFO=<...>" metadata line, without a trailing
// newline.
func (l HeaderLine) String() string {
	desc := strings.Replace(l.Description, `"`, `\"`, -1)
	return fmt.Sprintf("##INFO=<ID=%s,Number=%s,Type=%s,Description=\"%s\">", l.ID, l.Number, l.Type, desc)
}
