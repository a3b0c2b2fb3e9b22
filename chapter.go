package bar

import "strings"

// Chapter is a chain of one or more blocks covering every verse of a
// single chapter. The chain is walked lazily: opening a chapter only
// reads its first block's header, and later blocks are opened on
// demand as ChapterText, VerseText, or the verse iterators need them.
type Chapter struct {
	stream       *sharedStream
	majorVersion uint8
	bookNumber   uint8
	number       uint8

	firstBlock *barBlock
	cursor     *barBlock // furthest block opened so far, for sequential access
}

// Number is this chapter's 1-based number within its book.
func (c *Chapter) Number() uint8 { return c.number }

// BookNumber is the 1-based canonical number of the book this chapter
// belongs to.
func (c *Chapter) BookNumber() uint8 { return c.bookNumber }

// Verse is a single verse's text, a view into the block text it was
// decompressed from. Go string slicing shares the underlying array
// rather than copying it, so Verse needs no reference-counted buffer
// of its own the way the original's RcSubstring did - the backing
// block's cached text stays alive for as long as any Verse built
// from it does.
type Verse struct {
	Number uint8
	Text   string
}

// advanceTo walks the block chain forward from from until it finds
// the block covering verse n, or runs out of chain. It never walks
// backward; callers needing verses out of increasing order should
// start again from firstBlock.
func advanceTo(from *barBlock, n uint8) (*barBlock, error) {
	b := from
	for b != nil {
		if b.header.StartVerse <= n && n <= b.header.EndVerse {
			return b, nil
		}
		if n < b.header.StartVerse {
			return nil, nil
		}
		next, err := b.next()
		if err != nil {
			return nil, err
		}
		b = next
	}
	return nil, nil
}

// blockFor locates the block covering verse n, walking from the
// cursor if that's still behind n, otherwise restarting from the
// first block.
func (c *Chapter) blockFor(n uint8) (*barBlock, error) {
	start := c.cursor
	if start == nil || n < start.header.StartVerse {
		start = c.firstBlock
	}
	b, err := advanceTo(start, n)
	if err != nil {
		return nil, err
	}
	if b != nil {
		c.cursor = b
	}
	return b, nil
}

// VerseText returns the text of verse n (1-based) within the chapter.
// It returns a ReferenceError if n is past the chapter's last verse,
// and an InvalidFileFormatError if the block covering n does not
// actually contain a line for it.
func (c *Chapter) VerseText(n uint8) (string, error) {
	if n == 0 {
		return "", newReferenceError("verse numbers are 1-based, got 0")
	}
	b, err := c.blockFor(n)
	if err != nil {
		return "", err
	}
	if b == nil {
		return "", newReferenceError("chapter %d has no verse %d", c.number, n)
	}
	text, err := b.text()
	if err != nil {
		return "", err
	}
	lines := strings.Split(text, "\n")
	idx := int(n) - int(b.header.StartVerse)
	if idx < 0 || idx >= len(lines) {
		return "", newFormatError("block for chapter %d verses %d-%d is missing a line for verse %d", c.number, b.header.StartVerse, b.header.EndVerse, n)
	}
	return lines[idx], nil
}

// ChapterText returns the concatenated text of every block in the
// chapter's chain, in chain order.
func (c *Chapter) ChapterText() (string, error) {
	var sb strings.Builder
	b := c.firstBlock
	for b != nil {
		text, err := b.text()
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
		next, err := b.next()
		if err != nil {
			return "", err
		}
		b = next
	}
	return sb.String(), nil
}

// NumberOfVerses returns the chapter's last verse number, i.e. the
// EndVerse of the last block in the chain.
func (c *Chapter) NumberOfVerses() (uint8, error) {
	b := c.firstBlock
	last := b.header.EndVerse
	for {
		next, err := b.next()
		if err != nil {
			return 0, err
		}
		if next == nil {
			return last, nil
		}
		last = next.header.EndVerse
		b = next
	}
}

// Verses yields every verse of the chapter in order, numbered from
// each block's declared StartVerse.
func (c *Chapter) Verses(yield func(Verse) bool) {
	b := c.firstBlock
	for b != nil {
		text, err := b.text()
		if err != nil {
			return
		}
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			num := b.header.StartVerse + uint8(i)
			if num == 0 {
				// The chapter's very first line is a heading, not a
				// verse: the first block's StartVerse is always 0,
				// and real verses begin at line index 1.
				continue
			}
			v := Verse{Number: num, Text: line}
			if !yield(v) {
				return
			}
		}
		next, err := b.next()
		if err != nil {
			return
		}
		b = next
	}
}

// EnumeratedVerses yields (index, verse) pairs, where index counts
// verses from 0 regardless of their declared verse numbers.
func (c *Chapter) EnumeratedVerses(yield func(int, Verse) bool) {
	i := 0
	c.Verses(func(v Verse) bool {
		ok := yield(i, v)
		i++
		return ok
	})
}
