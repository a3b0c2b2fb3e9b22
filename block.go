package bar

import (
	"encoding/binary"
	"errors"
	"io"
)

const (
	blockHeaderV1Size = 7
	blockHeaderV2Size = 8
)

// blockHeader is the per-block record read just before the block's
// compressed payload. v1 archives (MajorVersion 1) carry no
// compression-algorithm byte and are always LZO; v2 archives carry
// one explicitly.
type blockHeader struct {
	ChapterNumber        uint8
	StartVerse           uint8
	EndVerse             uint8
	CompressionAlgorithm CompressionAlgorithm
	BlockSize            uint32
}

func decodeBlockHeaderV1(buf []byte) (blockHeader, error) {
	if len(buf) != blockHeaderV1Size {
		return blockHeader{}, newFormatError("v1 block header must be %d bytes, got %d", blockHeaderV1Size, len(buf))
	}
	return blockHeader{
		ChapterNumber:        buf[0],
		StartVerse:           buf[1],
		EndVerse:             buf[2],
		CompressionAlgorithm: CompressionLZO,
		BlockSize:            binary.LittleEndian.Uint32(buf[3:7]),
	}, nil
}

func decodeBlockHeaderV2(buf []byte) (blockHeader, error) {
	if len(buf) != blockHeaderV2Size {
		return blockHeader{}, newFormatError("v2 block header must be %d bytes, got %d", blockHeaderV2Size, len(buf))
	}
	return blockHeader{
		ChapterNumber:        buf[0],
		StartVerse:           buf[1],
		EndVerse:             buf[2],
		CompressionAlgorithm: compressionAlgorithmFromByte(buf[3]),
		BlockSize:            binary.LittleEndian.Uint32(buf[4:8]),
	}, nil
}

func (h blockHeader) byteSize(majorVersion uint8) int64 {
	if majorVersion == 1 {
		return blockHeaderV1Size
	}
	return blockHeaderV2Size
}

// barBlock is one fixed-run compressed chunk of a chapter's verses.
// It caches its decompressed text the first time it's needed and
// remembers whether it is the chain's final block, so a chapter never
// re-probes past a chain it has already walked to completion.
type barBlock struct {
	stream       *sharedStream
	majorVersion uint8
	header       blockHeader
	fileOffset   int64 // offset of the header itself

	cachedText  *string // cached decompressed text, nil until first use
	isKnownLast bool
}

func openBlock(stream *sharedStream, majorVersion uint8, offset int64) (*barBlock, error) {
	if majorVersion != 1 && majorVersion != 2 {
		return nil, newCompressionError(CompressionUnknown.String(), "unsupported file version")
	}

	r, err := stream.sectionAt(offset)
	if err != nil {
		return nil, err
	}

	var header blockHeader
	if majorVersion == 1 {
		header, err = readFrom(r, blockHeaderV1Size, decodeBlockHeaderV1)
	} else {
		header, err = readFrom(r, blockHeaderV2Size, decodeBlockHeaderV2)
	}
	if err != nil {
		return nil, err
	}

	return &barBlock{
		stream:       stream,
		majorVersion: majorVersion,
		header:       header,
		fileOffset:   offset,
	}, nil
}

// dataOffset is the file offset of the block's compressed payload,
// immediately following its header.
func (b *barBlock) dataOffset() int64 {
	return b.fileOffset + b.header.byteSize(b.majorVersion)
}

// data reads the block's raw (still compressed) payload.
func (b *barBlock) data() ([]byte, error) {
	r, err := b.stream.sectionAt(b.dataOffset())
	if err != nil {
		return nil, err
	}
	buf := make([]byte, b.header.BlockSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, newIOError("short read for block payload", err)
	}
	return buf, nil
}

// text returns the block's decompressed verse text, decompressing and
// caching it on first call.
func (b *barBlock) text() (string, error) {
	if b.cachedText != nil {
		return *b.cachedText, nil
	}
	raw, err := b.data()
	if err != nil {
		return "", err
	}
	decoded, err := decompressBlock(b.header.CompressionAlgorithm, raw)
	if err != nil {
		return "", err
	}
	b.cachedText = &decoded
	return decoded, nil
}

// nextOffset is the file offset immediately following this block's
// payload, where a sibling or chain-continuing block would begin.
func (b *barBlock) nextOffset() int64 {
	return b.dataOffset() + int64(b.header.BlockSize)
}

// next attempts to open the block chained immediately after this one.
// It returns (nil, nil) — not an error — when the chain has ended:
// either because the next header belongs to a different chapter, or
// because reading the next header hit EOF or a short read near the
// end of the file. Any other I/O failure is still propagated, since
// it does not look like "no more blocks" so much as "something is
// wrong with the file".
func (b *barBlock) next() (*barBlock, error) {
	if b.isKnownLast {
		return nil, nil
	}

	nb, err := openBlock(b.stream, b.majorVersion, b.nextOffset())
	if err != nil {
		if isEOFLike(err) {
			b.isKnownLast = true
			return nil, nil
		}
		return nil, err
	}
	if nb.header.ChapterNumber != b.header.ChapterNumber {
		b.isKnownLast = true
		return nil, nil
	}
	return nb, nil
}

// isEOFLike reports whether err is the sort of I/O failure expected
// when a read runs past the physical end of the archive file — the
// normal way a block chain terminates, not a sign of corruption.
func isEOFLike(err error) bool {
	var bErr *BARError
	if errors.As(err, &bErr) && bErr.Kind == ErrIO {
		return errors.Is(bErr.Err, io.EOF) || errors.Is(bErr.Err, io.ErrUnexpectedEOF)
	}
	return false
}
