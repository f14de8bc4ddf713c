package slha

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Parse reads an SLHA document. Standalone comment lines directly above a
// Block or Decay header become that section's pre-comment; comment lines
// between data lines stay in place inside their section.
func Parse(r io.Reader) (*Document, error) {
	doc := &Document{}
	var current Section
	var pending []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(raw)

		// Comment-only and blank lines are held back until we know
		// whether they precede a section header.
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			pending = append(pending, raw)
			continue
		}

		content, comment := splitComment(raw)
		fields := strings.Fields(content)

		switch strings.ToLower(fields[0]) {
		case "block":
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: block header without a name", lineNo)
			}
			b := &Block{Name: fields[1], headerRaw: raw, preComment: pending}
			pending = nil
			doc.Sections = append(doc.Sections, b)
			current = b

		case "decay":
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: decay header without a particle code", lineNo)
			}
			pdg, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid particle code %q", lineNo, fields[1])
			}
			d := &Decay{PDG: pdg, headerRaw: raw, preComment: pending}
			pending = nil
			doc.Sections = append(doc.Sections, d)
			current = d

		default:
			if current == nil {
				return nil, fmt.Errorf("line %d: data line outside any block", lineNo)
			}
			flushPending(current, &pending)
			switch s := current.(type) {
			case *Block:
				s.lines = append(s.lines, parseDataLine(raw, fields, comment))
			case *Decay:
				s.lines = append(s.lines, raw)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	doc.tail = pending
	return doc, nil
}

// ParseFile reads an SLHA document from a file.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// flushPending moves held-back comment lines into the current section so
// interior comments keep their position relative to data lines.
func flushPending(current Section, pending *[]string) {
	if len(*pending) == 0 {
		return
	}
	switch s := current.(type) {
	case *Block:
		for _, c := range *pending {
			s.lines = append(s.lines, dataLine{raw: c})
		}
	case *Decay:
		s.lines = append(s.lines, *pending...)
	}
	*pending = nil
}

// parseDataLine records the raw line and, for simple "key value" entries,
// the parsed key and value token so the entry can be read or replaced.
func parseDataLine(raw string, fields []string, comment string) dataLine {
	ln := dataLine{raw: raw, comment: comment}
	if len(fields) == 2 {
		if key, err := strconv.Atoi(fields[0]); err == nil {
			ln.key = key
			ln.hasKey = true
			ln.text = fields[1]
		}
	}
	return ln
}

// splitComment divides a line at its first '#' into content and comment.
func splitComment(line string) (content, comment string) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i], strings.TrimSpace(strings.TrimPrefix(line[i:], "#"))
	}
	return line, ""
}
