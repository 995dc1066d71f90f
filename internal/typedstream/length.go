package typedstream

import "encoding/binary"

const (
	lengthU16 = 0x81
	lengthU32 = 0x82
)

// DecodeLength reads the variable-width length prefix at pos. It returns the
// decoded length and the number of bytes consumed. A truncated multi-byte
// prefix yields (0, 1); an out-of-range pos yields (0, 0).
func DecodeLength(buf []byte, pos int) (length, consumed int) {
	if pos < 0 || pos >= len(buf) {
		return 0, 0
	}
	b := buf[pos]
	switch {
	case b < 0x80:
		return int(b), 1
	case b == lengthU16:
		if len(buf)-pos-1 < 2 {
			return 0, 1
		}
		return int(binary.LittleEndian.Uint16(buf[pos+1:])), 3
	case b == lengthU32:
		if len(buf)-pos-1 < 4 {
			return 0, 1
		}
		n := binary.LittleEndian.Uint32(buf[pos+1:])
		if uint64(n) > uint64(maxInt) {
			return 0, 5
		}
		return int(n), 5
	default:
		// Unknown marker: treat the byte itself as the length.
		return int(b), 1
	}
}

const maxInt = int(^uint(0) >> 1)
