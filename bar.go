package bar

import (
	"io"
	"os"

	"github.com/chrisjhh/bargo/internal/names"
)

// File is an opened Bible archive: a 16-byte header followed by a
// book index whose live slots occupy the leading positions
// contiguously.
type File struct {
	stream *sharedStream

	header     FileHeader
	bookIndex  []BookIndexEntry
	bodyOffset int64 // file offset of the byte after the book index table
}

const bookIndexOffset = fileHeaderSize

// Open reads an archive's header and book index from path. It does
// not read any book, chapter, or block bodies; those are opened
// lazily as the caller asks for them.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newIOError("opening archive", err)
	}
	return openStream(newSharedStream(f))
}

func openStream(stream *sharedStream) (*File, error) {
	r, err := stream.sectionAt(0)
	if err != nil {
		return nil, err
	}
	header, err := readFrom(r, fileHeaderSize, decodeFileHeader)
	if err != nil {
		return nil, err
	}
	if header.MajorVersion > writerMajorVersion {
		return nil, newFormatError("archive major version %d is newer than this reader supports (%d)", header.MajorVersion, writerMajorVersion)
	}
	if header.VersionAbbrev == "" {
		return nil, newFormatError("version_abbrev must not be empty")
	}

	entries, err := readArray(r, int(header.NumberOfBooks), bookIndexEntrySize, decodeBookIndexEntry)
	if err != nil {
		return nil, err
	}

	return &File{
		stream:     stream,
		header:     header,
		bookIndex:  entries,
		bodyOffset: bookIndexOffset + int64(header.NumberOfBooks)*bookIndexEntrySize,
	}, nil
}

// bookCapacity is the fixed book-index size stamped by Create,
// matching the full 66-book canon.
const bookCapacity = 66

// Create writes a fresh archive header and an empty book index
// (every slot zeroed) to path, and reopens it for reading. Writing
// book, chapter, or block bodies is out of scope: archives are
// populated by a separate authoring tool, not by this package.
func Create(path string, bibleVersion string) (*File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, newIOError("creating archive", err)
	}

	header := FileHeader{
		MajorVersion:  writerMajorVersion,
		MinorVersion:  writerMinorVersion,
		NumberOfBooks: bookCapacity,
		VersionAbbrev: bibleVersion,
	}
	if err := writeTo(f, header); err != nil {
		f.Close()
		return nil, newIOError("writing archive header", err)
	}
	empty := make([]BookIndexEntry, bookCapacity)
	if err := writeArray(f, empty); err != nil {
		f.Close()
		return nil, newIOError("writing book index", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, newIOError("rewinding new archive", err)
	}

	return openStream(newSharedStream(f))
}

// Close releases the archive's underlying file. Every Book, Chapter,
// and Block opened from f shares its stream, so none of them remain
// usable once Close has been called.
func (f *File) Close() error {
	return f.stream.close()
}

// ArchiveVersion returns the (major, minor) version stamped in the
// archive header.
func (f *File) ArchiveVersion() (uint8, uint8) {
	return f.header.MajorVersion, f.header.MinorVersion
}

// BibleVersion returns the bible-translation abbreviation stamped in
// the archive header, e.g. "KJV".
func (f *File) BibleVersion() string {
	return f.header.VersionAbbrev
}

// BookCapacity is the fixed size of the book index table, not the
// number of books actually present.
func (f *File) BookCapacity() int {
	return len(f.bookIndex)
}

// NumberOfBooks counts the live book-index entries, stopping at the
// first Empty slot.
func (f *File) NumberOfBooks() int {
	n := 0
	for _, e := range f.bookIndex {
		if e.IsEmpty() {
			break
		}
		n++
	}
	return n
}

// Book finds the book stamped with the given 1-based canonical book
// number, scanning storage order and stopping at the first Empty
// slot. It returns nil, nil if no live entry matches.
func (f *File) Book(bookNumber uint8) (*Book, error) {
	for _, e := range f.bookIndex {
		if e.IsEmpty() {
			break
		}
		if e.BookNumber == bookNumber {
			return openBook(f.stream, f.header.MajorVersion, int64(e.FileOffset), bookNumber)
		}
	}
	return nil, nil
}

// BookFromAbbrev resolves an abbreviation (e.g. "Ge", "Gen", "Eph")
// to a book, or nil, nil if the abbreviation isn't recognised or the
// book it names isn't present in this archive.
func (f *File) BookFromAbbrev(abbrev string) (*Book, error) {
	n, ok := names.BookNumber(abbrev)
	if !ok {
		return nil, nil
	}
	return f.Book(n)
}

// Books yields every live book in storage order, stopping at the
// first Empty slot.
func (f *File) Books(yield func(*Book) bool) {
	for _, e := range f.bookIndex {
		if e.IsEmpty() {
			return
		}
		b, err := openBook(f.stream, f.header.MajorVersion, int64(e.FileOffset), e.BookNumber)
		if err != nil {
			return
		}
		if !yield(b) {
			return
		}
	}
}

// BooksInOrder yields every present book in canonical 1..66 order,
// regardless of storage order.
func (f *File) BooksInOrder(yield func(*Book) bool) {
	for n := uint8(1); n <= 66; n++ {
		b, err := f.Book(n)
		if err != nil || b == nil {
			continue
		}
		if !yield(b) {
			return
		}
	}
}
