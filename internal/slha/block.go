// Package slha reads and writes SLHA (SUSY Les Houches Accord) documents:
// ordered sequences of named blocks holding integer-keyed numeric entries,
// plus decay tables. Parsed lines keep their original text so that dumping
// a document preserves every comment and all spacing; only entries that are
// explicitly modified are reformatted.
package slha

import (
	"fmt"
	"strconv"
	"strings"
)

// Section is one top-level unit of a document: a *Block or a *Decay.
type Section interface {
	// PreComments returns the standalone comment lines attached above the
	// section header.
	PreComments() []string

	// SetPreComment replaces the comment lines above the section header.
	SetPreComment(lines ...string)

	dump(w writer) error
}

// writer is the minimal sink sections dump themselves into.
type writer interface {
	WriteString(s string) (int, error)
}

// dataLine is one body line of a block. Lines read from a file keep their
// raw text and are written back verbatim; constructed or modified lines
// have raw == "" and are formatted from key/text/comment on dump.
type dataLine struct {
	raw     string
	key     int
	hasKey  bool
	text    string
	comment string
}

// Block is a named block of integer-keyed entries.
type Block struct {
	// Name is the block name as it appeared after the Block keyword.
	Name string

	// Comment is the header comment, written as "Block NAME   # comment"
	// for constructed blocks. Parsed blocks keep their original header
	// line instead.
	Comment string

	headerRaw  string
	preComment []string
	lines      []dataLine
}

// NewBlock creates an empty block with the given name.
func NewBlock(name string) *Block {
	return &Block{Name: name}
}

// PreComments returns the comment lines above the block header.
func (b *Block) PreComments() []string { return b.preComment }

// SetPreComment replaces the comment lines above the block header.
func (b *Block) SetPreComment(lines ...string) { b.preComment = lines }

// SetFloat sets the entry at key to a floating-point value with an inline
// comment. An existing entry for the key is replaced in place; otherwise
// the entry is appended in insertion order.
func (b *Block) SetFloat(key int, value float64, comment string) {
	b.set(key, FormatFloat(value), comment)
}

// SetInt sets the entry at key to an integer value.
func (b *Block) SetInt(key int, value int, comment string) {
	b.set(key, strconv.Itoa(value), comment)
}

func (b *Block) set(key int, text, comment string) {
	for i := range b.lines {
		if b.lines[i].hasKey && b.lines[i].key == key {
			if comment == "" {
				comment = b.lines[i].comment
			}
			b.lines[i] = dataLine{key: key, hasKey: true, text: text, comment: comment}
			return
		}
	}
	b.lines = append(b.lines, dataLine{key: key, hasKey: true, text: text, comment: comment})
}

// Float returns the entry at key parsed as a float. The second return is
// false when the key is absent or its value is not numeric.
func (b *Block) Float(key int) (float64, bool) {
	for _, ln := range b.lines {
		if ln.hasKey && ln.key == key {
			v, err := ParseFloat(ln.text)
			if err != nil {
				return 0, false
			}
			return v, true
		}
	}
	return 0, false
}

// Keys returns the keys of all keyed entries in line order.
func (b *Block) Keys() []int {
	var keys []int
	for _, ln := range b.lines {
		if ln.hasKey {
			keys = append(keys, ln.key)
		}
	}
	return keys
}

// Decay is one decay table, passed through verbatim.
type Decay struct {
	// PDG is the particle code from the Decay header.
	PDG int

	headerRaw  string
	preComment []string
	lines      []string
}

// PreComments returns the comment lines above the decay header.
func (d *Decay) PreComments() []string { return d.preComment }

// SetPreComment replaces the comment lines above the decay header.
func (d *Decay) SetPreComment(lines ...string) { d.preComment = lines }

// Document is an ordered sequence of blocks and decay tables.
type Document struct {
	Sections []Section

	// tail holds comment lines after the last section.
	tail []string
}

// Block returns the first block with the given name (case-insensitive),
// or nil when no such block exists.
func (doc *Document) Block(name string) *Block {
	for _, s := range doc.Sections {
		if b, ok := s.(*Block); ok && strings.EqualFold(b.Name, name) {
			return b
		}
	}
	return nil
}

// Decays returns all decay tables in document order.
func (doc *Document) Decays() []*Decay {
	var ds []*Decay
	for _, s := range doc.Sections {
		if d, ok := s.(*Decay); ok {
			ds = append(ds, d)
		}
	}
	return ds
}

// Add appends a section to the document.
func (doc *Document) Add(s Section) {
	doc.Sections = append(doc.Sections, s)
}

// SetInt sets entry key of the named block to an integer value, creating
// the block at the end of the document when it does not exist yet.
func (doc *Document) SetInt(block string, key, value int) {
	b := doc.Block(block)
	if b == nil {
		b = NewBlock(block)
		doc.Add(b)
	}
	b.SetInt(key, value, "")
}

// FormatFloat renders a value in scientific notation with the shortest
// representation that parses back to the same float64.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'E', -1, 64)
}

// ParseFloat parses an SLHA numeric token, accepting Fortran-style d/D
// exponent markers in addition to e/E.
func ParseFloat(s string) (float64, error) {
	t := strings.NewReplacer("d", "e", "D", "e").Replace(strings.TrimSpace(s))
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value %q", s)
	}
	return v, nil
}
