package bar

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/binary"
	"io"
	"unicode/utf8"

	extlzo "github.com/woozymasta/lzo"
)

// CompressionAlgorithm identifies the codec a v2 block was written
// with. v1 blocks carry no algorithm byte and are always LZO.
type CompressionAlgorithm uint8

const (
	CompressionNone    CompressionAlgorithm = 0
	CompressionLZO     CompressionAlgorithm = 1
	CompressionZLib    CompressionAlgorithm = 2
	CompressionGZip    CompressionAlgorithm = 3
	CompressionUnknown CompressionAlgorithm = 255
)

func compressionAlgorithmFromByte(b uint8) CompressionAlgorithm {
	switch b {
	case 0:
		return CompressionNone
	case 1:
		return CompressionLZO
	case 2:
		return CompressionZLib
	case 3:
		return CompressionGZip
	default:
		return CompressionUnknown
	}
}

func (a CompressionAlgorithm) String() string {
	switch a {
	case CompressionNone:
		return "none"
	case CompressionLZO:
		return "lzo"
	case CompressionZLib:
		return "zlib"
	case CompressionGZip:
		return "gzip"
	default:
		return "unknown"
	}
}

// decompressBlock decompresses raw bytes read off disk according to
// algorithm, returning UTF-8 text or a CompressionError tagged with
// the algorithm name.
func decompressBlock(algorithm CompressionAlgorithm, raw []byte) (string, error) {
	switch algorithm {
	case CompressionNone:
		return decompressNone(raw)
	case CompressionLZO:
		return decompressLZOFrame(raw)
	case CompressionZLib:
		return decompressZlib(raw)
	case CompressionGZip:
		return decompressGzip(raw)
	default:
		return "", newCompressionError(algorithm.String(), "unsupported compression algorithm")
	}
}

func decompressNone(data []byte) (string, error) {
	if !validUTF8(data) {
		return "", newCompressionError(CompressionNone.String(), "payload is not valid UTF-8")
	}
	return string(data), nil
}

func decompressZlib(data []byte) (string, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", newCompressionError(CompressionZLib.String(), "%v", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return "", newCompressionError(CompressionZLib.String(), "%v", err)
	}
	if !validUTF8(out) {
		return "", newCompressionError(CompressionZLib.String(), "decompressed payload is not valid UTF-8")
	}
	return string(out), nil
}

func compressZlib(text string) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write([]byte(text)); err != nil {
		return nil, newCompressionError(CompressionZLib.String(), "%v", err)
	}
	if err := w.Close(); err != nil {
		return nil, newCompressionError(CompressionZLib.String(), "%v", err)
	}
	return buf.Bytes(), nil
}

func decompressGzip(data []byte) (string, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", newCompressionError(CompressionGZip.String(), "%v", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return "", newCompressionError(CompressionGZip.String(), "%v", err)
	}
	if !validUTF8(out) {
		return "", newCompressionError(CompressionGZip.String(), "decompressed payload is not valid UTF-8")
	}
	return string(out), nil
}

func compressGzip(text string) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(text)); err != nil {
		return nil, newCompressionError(CompressionGZip.String(), "%v", err)
	}
	if err := w.Close(); err != nil {
		return nil, newCompressionError(CompressionGZip.String(), "%v", err)
	}
	return buf.Bytes(), nil
}

// LZO framing: 0xF1 magic byte, then the decompressed size as a
// big-endian u32, then the raw LZO1X payload. This framing is the
// only form ever found on disk; it exists so a reader never has to
// guess the output buffer size before calling into the LZO1X engine.
const (
	lzoFrameMagic  = 0xF1
	lzoMaxDataSize = 100 * 1024
)

func decompressLZOFrame(frame []byte) (string, error) {
	if len(frame) < 5 {
		return "", newCompressionError(CompressionLZO.String(), "frame too short: %d bytes", len(frame))
	}
	if frame[0] != lzoFrameMagic {
		return "", newCompressionError(CompressionLZO.String(), "unexpected first byte [%X] expected %X", frame[0], lzoFrameMagic)
	}
	decompressedSize := binary.BigEndian.Uint32(frame[1:5])
	if decompressedSize == 0 || decompressedSize > lzoMaxDataSize {
		return "", newCompressionError(CompressionLZO.String(), "unexpected decompression size %d", decompressedSize)
	}

	out, err := extlzo.Decompress(frame[5:], &extlzo.DecompressOptions{OutLen: int(decompressedSize)})
	if err != nil {
		return "", newCompressionError(CompressionLZO.String(), "%v", err)
	}
	if len(out) != int(decompressedSize) {
		return "", newCompressionError(CompressionLZO.String(), "decompressed data was not of expected size: %d expected: %d", len(out), decompressedSize)
	}
	if !validUTF8(out) {
		return "", newCompressionError(CompressionLZO.String(), "decompressed payload is not valid UTF-8")
	}
	return string(out), nil
}

// compressLZOFrame frames text as a literal-only LZO1X stream. It is
// not used by any disk-writing path (block writing is out of scope
// for this package) and exists only so the compression round trip is
// testable end to end without a bundled miniLZO-compatible encoder;
// see literalOnlyLZO1X for the conformance argument.
func compressLZOFrame(text string) ([]byte, error) {
	data := []byte(text)
	if len(data) > lzoMaxDataSize {
		return nil, newCompressionError(CompressionLZO.String(), "data too large to frame: %d bytes", len(data))
	}
	payload := literalOnlyLZO1X(data)
	frame := make([]byte, 0, 5+len(payload))
	frame = append(frame, lzoFrameMagic)
	var sizeBuf [4]byte
	binary.BigEndian.PutUint32(sizeBuf[:], uint32(len(data)))
	frame = append(frame, sizeBuf[:]...)
	frame = append(frame, payload...)
	return frame, nil
}

// literalOnlyLZO1X encodes data as a conformant LZO1X bitstream made
// entirely of literal runs (no back-references) followed by the
// standard end-of-stream marker (0x11 0x00 0x00). Any compliant
// LZO1X decoder — including the one in github.com/woozymasta/lzo —
// accepts this as valid input; it simply never emits a match
// instruction, so it does not reach miniLZO-class compression ratios,
// but it round-trips exactly. See DESIGN.md for why a byte-identical
// reproduction of a reference encoder's output is not attempted.
func literalOnlyLZO1X(data []byte) []byte {
	n := len(data)
	out := make([]byte, 0, n+8)

	switch {
	case n == 0:
		// The very first instruction byte can directly be the M4
		// terminator; no literal header is needed.
	case n <= 238:
		out = append(out, byte(n+17))
	default:
		rem := n - 19
		ext := rem / 255
		tail := rem%255 + 1
		out = append(out, 0)
		for i := 0; i < ext; i++ {
			out = append(out, 0)
		}
		out = append(out, byte(tail))
	}

	out = append(out, data...)
	out = append(out, 0x11, 0x00, 0x00)
	return out
}

func validUTF8(b []byte) bool {
	return utf8.Valid(b)
}
