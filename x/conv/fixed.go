// Package conv formats readings for println-only builds: no fmt, no strconv,
// no allocations beyond the caller's buffer.
package conv

// Utoa writes base-10 n into the tail of buf and returns the used slice.
// buf should be length >= 20 for uint64.
func Utoa(buf []byte, n uint64) []byte {
	if len(buf) == 0 {
		return buf[:0]
	}
	i := len(buf)
	if n == 0 {
		i--
		buf[i] = '0'
	}
	for n > 0 && i > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return buf[i:]
}

// Fixed writes n / 10^frac with exactly frac decimals, e.g. Fixed(b, 505, 1)
// is "50.5" and Fixed(b, -7, 3) is "-0.007".
func Fixed(buf []byte, n int64, frac int) []byte {
	neg := n < 0
	u := uint64(n)
	if neg {
		u = uint64(-n)
	}
	i := len(buf)
	for d := 0; d < frac && i > 0; d++ {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	if frac > 0 && i > 0 {
		i--
		buf[i] = '.'
	}
	i -= len(Utoa(buf[:i], u))
	if neg && i > 0 {
		i--
		buf[i] = '-'
	}
	return buf[i:]
}

// Reading writes a gauge reading scaled by 10^frac followed by unit, or "?"
// when v is negative (unknown).
func Reading(buf []byte, v int16, frac int, unit string) []byte {
	if v < 0 {
		if len(buf) == 0 {
			return buf[:0]
		}
		buf[len(buf)-1] = '?'
		return buf[len(buf)-1:]
	}
	u := len(buf) - len(unit)
	if u < 0 {
		return buf[:0]
	}
	copy(buf[u:], unit)
	num := Fixed(buf[:u], int64(v), frac)
	return buf[u-len(num):]
}
