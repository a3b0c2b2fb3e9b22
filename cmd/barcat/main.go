// Command barcat opens a Bible archive and prints its table of
// contents: the bible version, the declared book capacity, and every
// present book with its chapter count.
package main

import (
	"fmt"
	"os"

	"github.com/chrisjhh/bargo"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <archive.bar>\n", os.Args[0])
		os.Exit(1)
	}

	if err := run(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "barcat: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	f, err := bar.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	major, minor := f.ArchiveVersion()
	fmt.Printf("archive version: %d.%d\n", major, minor)
	fmt.Printf("bible version:   %s\n", decodeVersionLabel(f.BibleVersion()))
	fmt.Printf("book capacity:   %d\n", f.BookCapacity())
	fmt.Printf("books present:   %d\n\n", f.NumberOfBooks())

	for book := range f.Books {
		fmt.Printf("%-20s (%s) - %d chapters\n", book.Name(), book.Abbrev(), book.NumberOfChapters())
		for ch := range book.Chapters {
			fmt.Printf("  - chapter %d\n", ch.Number())
		}
	}
	return nil
}

// decodeVersionLabel defensively strips a UTF-16 BOM from the version
// abbreviation field, should an archive have been authored by a tool
// that wrote one; every archive this package has actually opened
// stores plain ASCII here, but the field is attacker-controlled bytes
// from the reader's point of view like anything else in the header.
func decodeVersionLabel(s string) string {
	b := []byte(s)
	if len(b) < 2 {
		return s
	}
	bom := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(bom, b)
	if err != nil {
		return s
	}
	return string(out)
}
