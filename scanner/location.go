package scanner

// opFbreg is DW_OP_fbreg: a signed offset from the frame base.
const opFbreg = 0x91

// FrameOffset decodes a location expression of the form
// DW_OP_fbreg <sleb128>, the frame-relative slot the compiler assigned
// to a local. It returns false for anything more elaborate: location
// lists, register locations, composite pieces.
func FrameOffset(expr []byte) (int64, bool) {
	if len(expr) < 2 || expr[0] != opFbreg {
		return 0, false
	}
	off, n := sleb128(expr[1:])
	if n == 0 || 1+n != len(expr) {
		return 0, false
	}
	return off, true
}

// sleb128 decodes a signed LEB128 value, returning the value and the
// number of bytes consumed. A truncated encoding consumes zero bytes.
func sleb128(b []byte) (int64, int) {
	var result int64
	var shift uint
	for i, c := range b {
		result |= int64(c&0x7f) << shift
		shift += 7
		if c&0x80 == 0 {
			if shift < 64 && c&0x40 != 0 {
				result |= -1 << shift
			}
			return result, i + 1
		}
		if shift >= 64 {
			break
		}
	}
	return 0, 0
}
