package pack

import "strconv"

func idFor(family, tag string, index int) string {
	return family + ":" + tag + strconv.Itoa(index)
}

func intStr(v int) string       { return strconv.Itoa(v) }
func uint64Str(v uint64) string { return strconv.FormatUint(v, 10) }

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
