package image

import (
	"fmt"
	"strings"
)

type recordType int

// Intel HEX record types.
const (
	dataRecord            recordType = 0
	endOfFile             recordType = 1
	extendedLinearAddress recordType = 4
	startLinearAddress    recordType = 5
)

// hexLineLength is the payload size of a data record.
const hexLineLength = 16

// EncodeHex renders data loaded at base as Intel HEX records. An extended
// linear address record is emitted whenever the upper sixteen address bits
// change, and a start linear address record carries the entry address when
// it is nonzero. Records use the standard two's complement checksum.
func EncodeHex(base uint64, data []byte, entry uint32) string {
	var sb strings.Builder

	high := uint32(0)
	for offset := 0; offset < len(data); {
		addr := base + uint64(offset)
		if upper := uint32(addr >> 16); upper != high {
			high = upper
			sb.WriteString(encodeRecord(extendedLinearAddress, 0, []byte{byte(upper >> 8), byte(upper)}))
			sb.WriteByte('\n')
		}

		n := hexLineLength
		if rem := len(data) - offset; rem < n {
			n = rem
		}
		// A record's offset is sixteen bits, so never cross a 64 KiB page.
		if room := 0x10000 - int(addr&0xFFFF); n > room {
			n = room
		}

		sb.WriteString(encodeRecord(dataRecord, uint16(addr), data[offset:offset+n]))
		sb.WriteByte('\n')
		offset += n
	}

	if entry != 0 {
		payload := []byte{byte(entry >> 24), byte(entry >> 16), byte(entry >> 8), byte(entry)}
		sb.WriteString(encodeRecord(startLinearAddress, 0, payload))
		sb.WriteByte('\n')
	}

	sb.WriteString(encodeRecord(endOfFile, 0, nil))
	sb.WriteByte('\n')

	return sb.String()
}

func encodeRecord(kind recordType, offset uint16, payload []byte) string {
	sum := len(payload) + int(offset>>8) + int(offset&0xFF) + int(kind)

	var sb strings.Builder
	fmt.Fprintf(&sb, ":%02X%04X%02X", len(payload), offset, int(kind))
	for _, b := range payload {
		fmt.Fprintf(&sb, "%02X", b)
		sum += int(b)
	}
	fmt.Fprintf(&sb, "%02X", byte(-sum))

	return sb.String()
}
