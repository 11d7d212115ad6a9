// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import "fmt"

// SourceLocation is a position in a script, used for diagnostics.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

func (l SourceLocation) String() string {
	file := l.File
	if file == "" {
		file = "<eval>"
	}
	return fmt.Sprintf("%s:%d:%d", file, l.Line, l.Column)
}

// Span is the source range one token covers.
type Span struct {
	Start SourceLocation
	End   SourceLocation
}
