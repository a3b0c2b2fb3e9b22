package bar

import "github.com/chrisjhh/bargo/internal/names"

// Book is one book entry within an archive: a header naming how many
// chapter slots it declares, and a sparse chapter index with one slot
// per chapter number. A chapter missing from the archive has an Empty
// slot, wherever it falls.
type Book struct {
	stream       *sharedStream
	majorVersion uint8

	header       bookHeader
	chapterIndex []chapterIndexEntry
	entryOffset  int64 // file offset of the book entry's own header (ChapterIndexEntry is relative to this)
}

func openBook(stream *sharedStream, majorVersion uint8, offset int64, expectedBookNumber uint8) (*Book, error) {
	r, err := stream.sectionAt(offset)
	if err != nil {
		return nil, err
	}
	header, err := readFrom(r, bookHeaderSize, decodeBookHeader)
	if err != nil {
		return nil, err
	}
	if header.BookNumber != expectedBookNumber {
		return nil, newFormatError("book index pointed at book number %d, found %d", expectedBookNumber, header.BookNumber)
	}

	entries, err := readArray(r, int(header.NumberOfChapters), chapterIndexEntrySize, decodeChapterIndexEntry)
	if err != nil {
		return nil, err
	}

	return &Book{
		stream:       stream,
		majorVersion: majorVersion,
		header:       header,
		chapterIndex: entries,
		entryOffset:  offset,
	}, nil
}

// BookNumber is this book's 1-based position in the canonical 66-book
// order, as stamped into the archive, not its position in storage.
func (b *Book) BookNumber() uint8 { return b.header.BookNumber }

// NumberOfChapters is the declared chapter-slot capacity of this
// book, not a count of populated chapters.
func (b *Book) NumberOfChapters() uint8 { return b.header.NumberOfChapters }

// Name returns the book's canonical English name.
func (b *Book) Name() string { return names.Name(b.header.BookNumber) }

// Abbrev returns the book's canonical abbreviation.
func (b *Book) Abbrev() string { return names.Abbrev(b.header.BookNumber) }

// Chapter returns chapter n (1-based), or nil if n is out of range or
// the slot is Empty. A nil, nil result means "no such chapter", not
// an error.
func (b *Book) Chapter(n uint8) (*Chapter, error) {
	if n == 0 || int(n) > len(b.chapterIndex) {
		return nil, nil
	}
	entry := b.chapterIndex[n-1]
	if entry.isEmpty() {
		return nil, nil
	}

	offset := b.entryOffset + int64(entry.AdditionalOffset)
	first, err := openBlock(b.stream, b.majorVersion, offset)
	if err != nil {
		return nil, err
	}
	if first.header.ChapterNumber != n {
		return nil, newFormatError("chapter index pointed at chapter %d, found block for chapter %d", n, first.header.ChapterNumber)
	}
	return &Chapter{
		stream:       b.stream,
		majorVersion: b.majorVersion,
		bookNumber:   b.header.BookNumber,
		number:       n,
		firstBlock:   first,
		cursor:       first,
	}, nil
}

// Chapters yields this book's populated chapters in chapter-number
// order, skipping Empty slots.
func (b *Book) Chapters(yield func(*Chapter) bool) {
	for n := uint8(1); int(n) <= len(b.chapterIndex); n++ {
		entry := b.chapterIndex[n-1]
		if entry.isEmpty() {
			continue
		}
		ch, err := b.Chapter(n)
		if err != nil || ch == nil {
			return
		}
		if !yield(ch) {
			return
		}
	}
}
