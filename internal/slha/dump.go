package slha

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Dump writes the document. Sections parsed from a file are reproduced
// verbatim, including comments; constructed or modified entries are
// formatted in fixed columns.
func (doc *Document) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, s := range doc.Sections {
		if err := s.dump(bw); err != nil {
			return err
		}
	}
	for _, c := range doc.tail {
		if _, err := bw.WriteString(c + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile dumps the document to path, creating parent directories if needed.
func (doc *Document) WriteFile(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := doc.Dump(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (b *Block) dump(w writer) error {
	for _, c := range b.preComment {
		if _, err := w.WriteString(c + "\n"); err != nil {
			return err
		}
	}
	header := b.headerRaw
	if header == "" {
		header = "Block " + b.Name
		if b.Comment != "" {
			header += "   # " + b.Comment
		}
	}
	if _, err := w.WriteString(header + "\n"); err != nil {
		return err
	}
	for _, ln := range b.lines {
		if _, err := w.WriteString(formatDataLine(ln) + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decay) dump(w writer) error {
	for _, c := range d.preComment {
		if _, err := w.WriteString(c + "\n"); err != nil {
			return err
		}
	}
	if _, err := w.WriteString(d.headerRaw + "\n"); err != nil {
		return err
	}
	for _, ln := range d.lines {
		if _, err := w.WriteString(ln + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func formatDataLine(ln dataLine) string {
	// Only keyed entries are ever constructed; everything else (including
	// blank lines held as raw text) is reproduced verbatim.
	if ln.raw != "" || !ln.hasKey {
		return ln.raw
	}
	s := fmt.Sprintf(" %5d   %s", ln.key, ln.text)
	if ln.comment != "" {
		s += "   # " + ln.comment
	}
	return s
}
