package chapters

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/lectio/internal/apperr"
	"github.com/starford/lectio/internal/models"
)

const modulePrefix = "Module:"

// Document is the in-memory form of a chapter file.
type Document struct {
	Chapters []*models.Chapter
	Modules  []*models.Module
}

// Issue describes a line the lenient parser could not take as written.
type Issue struct {
	Line   int    // 1-based
	Text   string // trimmed line
	Reason string
}

// Report summarises a parse.
type Report struct {
	Chapters  int
	Modules   int
	Dropped   []Issue // lines that produced no record
	Defaulted []Issue // chapter lines with a counter forced to zero
}

// ParseError is returned in strict mode for the first malformed field.
type ParseError struct {
	Line  int
	Field string
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("chapters: line %d: invalid %s %q", e.Line, e.Field, e.Value)
}

func (e *ParseError) Unwrap() error { return apperr.ErrMalformed }

// Parse reads the chapter text format in a single forward pass.
//
// Chapter lines have four comma separated fields. A "Module:<name>" line opens
// a module; single-field lines that follow are chapter numbers appended to it.
// A back-reference to a chapter not seen yet is dropped. With strict unset,
// a malformed counter becomes 0 and a malformed chapter number drops the line.
func Parse(data []byte, strict bool) (*Document, *Report, error) {
	doc := &Document{}
	rep := &Report{}
	byNumber := make(map[int]*models.Chapter)
	var current *models.Module

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, modulePrefix) {
			current = &models.Module{
				Name:     strings.TrimSpace(strings.TrimPrefix(line, modulePrefix)),
				Chapters: []*models.Chapter{},
			}
			doc.Modules = append(doc.Modules, current)
			continue
		}

		parts := strings.Split(line, ",")
		switch len(parts) {
		case 4:
			number, err := parseInt(parts[0])
			if err != nil {
				if strict {
					return nil, nil, &ParseError{Line: lineNo, Field: "chapter number", Value: parts[0]}
				}
				rep.Dropped = append(rep.Dropped, Issue{Line: lineNo, Text: line, Reason: "invalid chapter number"})
				continue
			}
			ch := &models.Chapter{Number: number, Name: strings.TrimSpace(parts[1])}
			var defaulted bool
			for _, f := range []struct {
				name string
				raw  string
				dst  *int
			}{
				{"attended count", parts[2], &ch.Attended},
				{"missed count", parts[3], &ch.Missed},
			} {
				v, err := parseCount(f.raw)
				if err != nil {
					if strict {
						return nil, nil, &ParseError{Line: lineNo, Field: f.name, Value: f.raw}
					}
					defaulted = true
					continue
				}
				*f.dst = v
			}
			if defaulted {
				rep.Defaulted = append(rep.Defaulted, Issue{Line: lineNo, Text: line, Reason: "invalid counter set to 0"})
			}

			if existing, ok := byNumber[number]; ok {
				// One record per number; the later line wins in place.
				*existing = *ch
				rep.Dropped = append(rep.Dropped, Issue{Line: lineNo, Text: line, Reason: "duplicate chapter number, earlier record overwritten"})
				continue
			}
			byNumber[number] = ch
			doc.Chapters = append(doc.Chapters, ch)

		case 1:
			if current == nil {
				rep.Dropped = append(rep.Dropped, Issue{Line: lineNo, Text: line, Reason: "chapter reference outside a module"})
				continue
			}
			number, err := parseInt(parts[0])
			if err != nil {
				if strict {
					return nil, nil, &ParseError{Line: lineNo, Field: "chapter reference", Value: parts[0]}
				}
				rep.Dropped = append(rep.Dropped, Issue{Line: lineNo, Text: line, Reason: "invalid chapter reference"})
				continue
			}
			ch, ok := byNumber[number]
			if !ok {
				rep.Dropped = append(rep.Dropped, Issue{Line: lineNo, Text: line, Reason: "reference to unknown chapter"})
				continue
			}
			current.Chapters = append(current.Chapters, ch)

		default:
			rep.Dropped = append(rep.Dropped, Issue{Line: lineNo, Text: line, Reason: "unexpected field count"})
		}
	}

	rep.Chapters = len(doc.Chapters)
	rep.Modules = len(doc.Modules)
	return doc, rep, nil
}

// Encode writes chapters in order, then every module header followed by its
// member chapter numbers.
func Encode(doc *Document) []byte {
	var b strings.Builder
	for _, ch := range doc.Chapters {
		fmt.Fprintf(&b, "%d,%s,%d,%d\n", ch.Number, ch.Name, ch.Attended, ch.Missed)
	}
	for _, m := range doc.Modules {
		b.WriteString(modulePrefix)
		b.WriteString(m.Name)
		b.WriteByte('\n')
		for _, ch := range m.Chapters {
			b.WriteString(strconv.Itoa(ch.Number))
			b.WriteByte('\n')
		}
	}
	return []byte(b.String())
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func parseCount(s string) (int, error) {
	n, err := parseInt(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %d", n)
	}
	return n, nil
}
