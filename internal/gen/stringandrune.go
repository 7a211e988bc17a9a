//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package gen

import "strings"

//
// STRINGS and []RUNE
//

// CollapseSpace - every run of whitespace becomes one space; leading and trailing space goes
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TrimRunes - at most max runes of s; "..." is appended when something was cut
func TrimRunes(s string, max int) string {
	const (
		ELLIPSIS = "..."
	)
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	return string(r[:max]) + ELLIPSIS
}
