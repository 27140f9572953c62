package buffersize

import (
	"math/big"
	"strconv"
	"strings"
)

// maxSize is the largest accepted value (2**32-1): values >= 2**32 are TooLarge.
var maxSize = new(big.Int).SetUint64(1<<32 - 1)

var unitMultipliers = map[byte]uint64{
	'k': 1 << 10,
	'm': 1 << 20,
	'g': 1 << 30,
}

// Parse parses a pretty buffer size per spec §6's grammar: an optional
// `0x`/`0o`/`0b` radix prefix (case-insensitive), a run of digits valid for
// that radix, and an optional unit suffix in {K,M,G} optionally followed by
// B (also case-insensitive). Decimal points are never allowed. Example:
// "3M" parses to 3 * 2^20.
func Parse(s string) (uint32, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, parseErr(Empty, s)
	}

	for _, r := range trimmed {
		if r > 127 || !isASCIIAlnum(byte(r)) {
			return 0, parseErr(InvalidCharacters, s)
		}
	}

	rest := trimmed
	radix := 10
	if len(rest) >= 2 && rest[0] == '0' {
		switch lower(rest[1]) {
		case 'x':
			radix = 16
			rest = rest[2:]
		case 'o':
			radix = 8
			rest = rest[2:]
		case 'b':
			radix = 2
			rest = rest[2:]
		}
	}

	i := 0
	for i < len(rest) && isDigitForRadix(rest[i], radix) {
		i++
	}
	digits := rest[:i]
	suffix := rest[i:]

	if digits == "" {
		return 0, parseErr(InvalidFormat, s)
	}

	mult, ok := parseSuffix(suffix)
	if !ok {
		return 0, parseErr(InvalidFormat, s)
	}

	base, ok := new(big.Int).SetString(digits, radix)
	if !ok {
		return 0, parseErr(InvalidCharacters, s)
	}

	result := new(big.Int).Mul(base, new(big.Int).SetUint64(mult))
	if result.Sign() == 0 {
		return 0, parseErr(Zero, s)
	}
	if result.Cmp(maxSize) > 0 {
		return 0, parseErr(TooLarge, s)
	}
	return uint32(result.Uint64()), nil
}

// parseSuffix accepts "", "K"/"M"/"G", or "K"/"M"/"G"+"B" (any case) and
// returns the multiplier. A bare "B" with no preceding unit letter is
// rejected: the grammar only allows B as a modifier on K/M/G.
func parseSuffix(s string) (uint64, bool) {
	if s == "" {
		return 1, true
	}
	lowered := strings.ToLower(s)
	unit := lowered[0]
	mult, ok := unitMultipliers[unit]
	if !ok {
		return 0, false
	}
	rest := lowered[1:]
	if rest == "" {
		return mult, true
	}
	if rest == "b" {
		return mult, true
	}
	return 0, false
}

func isASCIIAlnum(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func isDigitForRadix(b byte, radix int) bool {
	b = lower(b)
	switch radix {
	case 2:
		return b == '0' || b == '1'
	case 8:
		return b >= '0' && b <= '7'
	case 10:
		return b >= '0' && b <= '9'
	case 16:
		return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f')
	default:
		return false
	}
}

// Format renders n using the largest binary-power unit that divides it
// evenly, so that Parse(Format(n)) == n for every n in [1, 2^32).
func Format(n uint32) string {
	v := uint64(n)
	switch {
	case v != 0 && v%(1<<30) == 0:
		return formatUnit(v/(1<<30), "G")
	case v != 0 && v%(1<<20) == 0:
		return formatUnit(v/(1<<20), "M")
	case v != 0 && v%(1<<10) == 0:
		return formatUnit(v/(1<<10), "K")
	default:
		return formatUnit(v, "")
	}
}

func formatUnit(v uint64, unit string) string {
	return strconv.FormatUint(v, 10) + unit
}
