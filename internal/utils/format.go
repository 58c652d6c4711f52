package utils

import "strconv"

// CreateRankList creates a slice of ranks based on position.
// The rank starts at 1 for the first item and increments for subsequent items.
// Useful for ranking items that are already sorted.
func CreateRankList(count int) []uint16 {
	if count <= 0 {
		return []uint16{}
	}
	ranks := make([]uint16, count)
	for i := 0; i < count; i++ {
		ranks[i] = uint16(i + 1)
	}
	return ranks
}

// FormatWithCommas renders an integer with thousands separators
func FormatWithCommas(n int) string {
	s := strconv.Itoa(n)
	start := 0
	if len(s) > 0 && s[0] == '-' {
		start = 1
	}
	digits := len(s) - start
	if digits <= 3 {
		return s
	}
	out := make([]byte, 0, len(s)+digits/3)
	out = append(out, s[:start]...)
	lead := digits % 3
	if lead == 0 {
		lead = 3
	}
	out = append(out, s[start:start+lead]...)
	for i := start + lead; i < len(s); i += 3 {
		out = append(out, ',')
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}

// FormatWeight renders a weight compactly: integral values without a
// decimal point, everything else in plain decimal form.
func FormatWeight(w float64) string {
	if w == float64(int64(w)) {
		return strconv.FormatInt(int64(w), 10)
	}
	return strconv.FormatFloat(w, 'f', -1, 64)
}
