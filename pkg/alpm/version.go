package alpm

import "strings"

// VerCmp compares two package versions the way pacman does. It returns
// -1, 0 or 1 when a is older than, equal to or newer than b.
//
// A version is [epoch:]version[-release]. Epochs are compared first,
// then versions, then releases if both sides have one.
func VerCmp(a, b string) int {
	if a == b {
		return 0
	}
	e1, v1, r1 := parseEVR(a)
	e2, v2, r2 := parseEVR(b)

	if c := segmentCmp(e1, e2); c != 0 {
		return c
	}
	if c := segmentCmp(v1, v2); c != 0 {
		return c
	}
	if r1 != "" && r2 != "" {
		return segmentCmp(r1, r2)
	}
	return 0
}

func parseEVR(s string) (epoch, version, release string) {
	n := 0
	for n < len(s) && isDigit(s[n]) {
		n++
	}
	epoch, version = "0", s
	if n < len(s) && s[n] == ':' {
		if n > 0 {
			epoch = s[:n]
		}
		version = s[n+1:]
	}
	if i := strings.LastIndexByte(version, '-'); i >= 0 {
		version, release = version[:i], version[i+1:]
	}
	return epoch, version, release
}

// segmentCmp splits both strings into runs of digits and runs of
// letters and compares them pairwise. Numeric runs compare by value
// and are newer than alphabetic ones. When one side runs out, a
// trailing letter run is older and anything else is newer.
func segmentCmp(a, b string) int {
	if a == b {
		return 0
	}
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		si, sj := i, j
		for i < len(a) && !isAlnum(a[i]) {
			i++
		}
		for j < len(b) && !isAlnum(b[j]) {
			j++
		}
		if i == len(a) || j == len(b) {
			break
		}
		// differing separator lengths decide the comparison
		if i-si != j-sj {
			return compareLen(i-si, j-sj)
		}

		si, sj = i, j
		numeric := isDigit(a[i])
		if numeric {
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			for j < len(b) && isDigit(b[j]) {
				j++
			}
		} else {
			for i < len(a) && isAlpha(a[i]) {
				i++
			}
			for j < len(b) && isAlpha(b[j]) {
				j++
			}
		}
		// segments of different types
		if sj == j {
			if numeric {
				return 1
			}
			return -1
		}

		x, y := a[si:i], b[sj:j]
		if numeric {
			x, y = strings.TrimLeft(x, "0"), strings.TrimLeft(y, "0")
			if len(x) != len(y) {
				return compareLen(len(x), len(y))
			}
		}
		if c := strings.Compare(x, y); c != 0 {
			return c
		}
	}

	if i == len(a) && j == len(b) {
		return 0
	}
	if (i == len(a) && !isAlpha(b[j])) || (i < len(a) && isAlpha(a[i])) {
		return -1
	}
	return 1
}

func compareLen(x, y int) int {
	if x < y {
		return -1
	}
	return 1
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool {
	return isDigit(c) || isAlpha(c)
}
