package bar

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileHeaderRoundTrip(t *testing.T) {
	want := FileHeader{MajorVersion: 2, MinorVersion: 1, NumberOfBooks: 3, VersionAbbrev: "KJV"}
	buf := want.toBytes()
	require.Len(t, buf, fileHeaderSize)

	got, err := readFrom(bytes.NewReader(buf), fileHeaderSize, decodeFileHeader)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestBookIndexEntryRoundTrip(t *testing.T) {
	entries := []BookIndexEntry{
		{BookNumber: 27, FileOffset: 1234},
		{BookNumber: 1, FileOffset: 5000},
		{BookNumber: 49, FileOffset: 9001},
	}

	var buf bytes.Buffer
	require.NoError(t, writeArray(&buf, entries))

	got, err := readArray(&buf, len(entries), bookIndexEntrySize, decodeBookIndexEntry)
	require.NoError(t, err)
	require.Equal(t, entries, got)
}

func TestBookIndexEntryEmptySlot(t *testing.T) {
	require.True(t, BookIndexEntry{}.IsEmpty())
	require.True(t, BookIndexEntry{BookNumber: 1}.IsEmpty())
	require.True(t, BookIndexEntry{FileOffset: 10}.IsEmpty())
	require.False(t, BookIndexEntry{BookNumber: 1, FileOffset: 10}.IsEmpty())
}

func TestChapterIndexEntryRoundTrip(t *testing.T) {
	entries := []chapterIndexEntry{
		{AdditionalOffset: 2},
		{AdditionalOffset: 500},
	}
	for _, e := range entries {
		buf := e.toBytes()
		require.Len(t, buf, chapterIndexEntrySize)
		got, err := decodeChapterIndexEntry(buf)
		require.NoError(t, err)
		require.Equal(t, e, got)
		require.False(t, got.isEmpty())
	}
	require.True(t, chapterIndexEntry{}.isEmpty())
}

func TestReadFromRejectsShortRecord(t *testing.T) {
	short := bytes.NewReader([]byte{1, 2, 3})
	_, err := readFrom(short, fileHeaderSize, decodeFileHeader)
	require.Error(t, err)
	var barErr *BARError
	require.ErrorAs(t, err, &barErr)
	require.Equal(t, ErrIO, barErr.Kind)
}
