package bar

import (
	"bytes"
	"encoding/binary"
)

const fileHeaderSize = 16

// FileHeader is the 16-byte archive header: magic, writer version,
// book-slot capacity, and the bible version abbreviation.
type FileHeader struct {
	MajorVersion  uint8
	MinorVersion  uint8
	NumberOfBooks uint8
	VersionAbbrev string
}

// writerMajorVersion/writerMinorVersion are the version stamped by
// Create; opening accepts anything with MajorVersion <= 2.
const (
	writerMajorVersion = 2
	writerMinorVersion = 2
)

func decodeFileHeader(buf []byte) (FileHeader, error) {
	if len(buf) != fileHeaderSize {
		return FileHeader{}, newFormatError("file header must be %d bytes, got %d", fileHeaderSize, len(buf))
	}
	if !bytes.Equal(buf[0:3], []byte("BAR")) {
		return FileHeader{}, newFormatError("bad magic %q, expected \"BAR\"", buf[0:3])
	}
	abbrev := string(bytes.TrimRight(buf[6:16], "\x00"))
	return FileHeader{
		MajorVersion:  buf[3],
		MinorVersion:  buf[4],
		NumberOfBooks: buf[5],
		VersionAbbrev: abbrev,
	}, nil
}

func (h FileHeader) toBytes() []byte {
	buf := make([]byte, fileHeaderSize)
	copy(buf[0:3], "BAR")
	buf[3] = h.MajorVersion
	buf[4] = h.MinorVersion
	buf[5] = h.NumberOfBooks
	copy(buf[6:16], h.VersionAbbrev)
	return buf
}

const bookIndexEntrySize = 5

// BookIndexEntry is one slot of the archive's sparse book index: a
// (book number, file offset) pair, or Empty when either is zero.
type BookIndexEntry struct {
	BookNumber uint8
	FileOffset uint32
}

// IsEmpty reports whether this slot holds no book. A slot is Empty
// when either field is zero; a Live slot has both set.
func (e BookIndexEntry) IsEmpty() bool {
	return e.BookNumber == 0 || e.FileOffset == 0
}

func decodeBookIndexEntry(buf []byte) (BookIndexEntry, error) {
	if len(buf) != bookIndexEntrySize {
		return BookIndexEntry{}, newFormatError("book index entry must be %d bytes, got %d", bookIndexEntrySize, len(buf))
	}
	return BookIndexEntry{
		BookNumber: buf[0],
		FileOffset: binary.LittleEndian.Uint32(buf[1:5]),
	}, nil
}

func (e BookIndexEntry) toBytes() []byte {
	buf := make([]byte, bookIndexEntrySize)
	buf[0] = e.BookNumber
	binary.LittleEndian.PutUint32(buf[1:5], e.FileOffset)
	return buf
}

const chapterIndexEntrySize = 4

// chapterIndexEntry is one slot of a book's chapter index: an offset
// relative to the start of the book entry, or Empty when zero.
type chapterIndexEntry struct {
	AdditionalOffset uint32
}

func (e chapterIndexEntry) isEmpty() bool {
	return e.AdditionalOffset == 0
}

func decodeChapterIndexEntry(buf []byte) (chapterIndexEntry, error) {
	if len(buf) != chapterIndexEntrySize {
		return chapterIndexEntry{}, newFormatError("chapter index entry must be %d bytes, got %d", chapterIndexEntrySize, len(buf))
	}
	return chapterIndexEntry{AdditionalOffset: binary.LittleEndian.Uint32(buf)}, nil
}

func (e chapterIndexEntry) toBytes() []byte {
	buf := make([]byte, chapterIndexEntrySize)
	binary.LittleEndian.PutUint32(buf, e.AdditionalOffset)
	return buf
}

const bookHeaderSize = 2

// bookHeader is the 2-byte record at the start of a book entry.
type bookHeader struct {
	BookNumber       uint8
	NumberOfChapters uint8
}

func decodeBookHeader(buf []byte) (bookHeader, error) {
	if len(buf) != bookHeaderSize {
		return bookHeader{}, newFormatError("book header must be %d bytes, got %d", bookHeaderSize, len(buf))
	}
	return bookHeader{BookNumber: buf[0], NumberOfChapters: buf[1]}, nil
}
