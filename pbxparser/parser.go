// Package pbxparser reads the OpenStep property list dialect Xcode uses for
// project.pbxproj files into an ordered Object tree.
//
// Quoted strings keep their quotes and escapes so the tree can be written back
// unchanged. A /* */ annotation following a key or a value is stored under
// "<key>_comment"; an annotated array element becomes {value, comment}.
// The "objects" dictionary is regrouped into one section per isa.
package pbxparser

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	HeadCommentKey = "headComment"
	ProjectKey     = "project"
	ObjectsKey     = "objects"
)

// SyntaxError reports malformed input with a 1-based position.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("pbxparser: line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

type parser struct {
	data []byte
	pos  int
}

// Parse reads a whole project file. The result holds the head comment (when
// present) under "headComment" and the root dictionary under "project".
func Parse(r io.Reader) (Object, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Object{}, err
	}
	return ParseBytes(data)
}

func ParseBytes(data []byte) (Object, error) {
	p := &parser{data: data}
	contents := NewObject()

	if head, ok := p.headComment(); ok {
		contents.Set(HeadCommentKey, head)
	}
	if _, err := p.skip(); err != nil {
		return Object{}, err
	}
	if p.eof() || p.peek(0) != '{' {
		return Object{}, p.errorf("expected '{' at start of project")
	}
	project, err := p.parseDict()
	if err != nil {
		return Object{}, err
	}
	if _, err := p.skip(); err != nil {
		return Object{}, err
	}
	if !p.eof() {
		return Object{}, p.errorf("unexpected %q after root dictionary", p.peek(0))
	}

	if objects, ok := project.Get(ObjectsKey); ok {
		if flat, ok := objects.(Object); ok {
			project.Set(ObjectsKey, groupByIsa(flat))
		}
	}
	contents.Set(ProjectKey, project)
	return contents, nil
}

func groupByIsa(flat Object) Object {
	sections := NewObject()
	flat.ForeachWithFilter(func(key string, val interface{}) IterateActionType {
		obj, ok := val.(Object)
		if !ok {
			return IterateActionContinue
		}
		isa := obj.GetString("isa")
		if !sections.Has(isa) {
			sections.Set(isa, NewObject())
		}
		section := sections.GetObject(isa)
		section.Set(key, obj)
		if comment := flat.Comment(key); comment != "" {
			section.Set(CommentKey(key), comment)
		}
		return IterateActionContinue
	}, NonCommentsFilter)
	return sections
}

func (p *parser) eof() bool {
	return p.pos >= len(p.data)
}

func (p *parser) peek(offset int) byte {
	if p.pos+offset >= len(p.data) {
		return 0
	}
	return p.data[p.pos+offset]
}

func (p *parser) errorf(format string, args ...interface{}) error {
	line, col := 1, 1
	for _, c := range p.data[:p.pos] {
		if c == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return &SyntaxError{Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) headComment() (string, bool) {
	if !bytes.HasPrefix(p.data, []byte("//")) {
		return "", false
	}
	end := bytes.IndexByte(p.data, '\n')
	if end < 0 {
		end = len(p.data)
	}
	head := strings.TrimSpace(string(p.data[2:end]))
	p.pos = end
	return head, true
}

// skip consumes whitespace and comments and returns the text of the last
// block comment it passed.
func (p *parser) skip() (string, error) {
	comment := ""
	for !p.eof() {
		c := p.peek(0)
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.pos++
		case c == '/' && p.peek(1) == '*':
			end := bytes.Index(p.data[p.pos+2:], []byte("*/"))
			if end < 0 {
				return "", p.errorf("unterminated comment")
			}
			comment = strings.TrimSpace(string(p.data[p.pos+2 : p.pos+2+end]))
			p.pos += end + 4
		case c == '/' && p.peek(1) == '/':
			for !p.eof() && p.peek(0) != '\n' {
				p.pos++
			}
		default:
			return comment, nil
		}
	}
	return comment, nil
}

func (p *parser) expect(c byte) error {
	if p.eof() {
		return p.errorf("unexpected end of input, expected %q", c)
	}
	if p.peek(0) != c {
		return p.errorf("expected %q, found %q", c, p.peek(0))
	}
	p.pos++
	return nil
}

func (p *parser) parseDict() (Object, error) {
	if err := p.expect('{'); err != nil {
		return Object{}, err
	}
	obj := NewObject()
	for {
		if _, err := p.skip(); err != nil {
			return Object{}, err
		}
		if p.eof() {
			return Object{}, p.errorf("unexpected end of input, expected '}'")
		}
		if p.peek(0) == '}' {
			p.pos++
			return obj, nil
		}

		key, err := p.parseString()
		if err != nil {
			return Object{}, err
		}
		keyComment, err := p.skip()
		if err != nil {
			return Object{}, err
		}
		if err := p.expect('='); err != nil {
			return Object{}, err
		}
		if _, err := p.skip(); err != nil {
			return Object{}, err
		}
		val, err := p.parseValue()
		if err != nil {
			return Object{}, err
		}
		valComment, err := p.skip()
		if err != nil {
			return Object{}, err
		}
		if err := p.expect(';'); err != nil {
			return Object{}, err
		}

		obj.Set(key, val)
		if keyComment != "" {
			obj.Set(CommentKey(key), keyComment)
		} else if valComment != "" {
			obj.Set(CommentKey(key), valComment)
		}
	}
}

func (p *parser) parseArray() ([]interface{}, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	arr := []interface{}{}
	for {
		if _, err := p.skip(); err != nil {
			return nil, err
		}
		if p.eof() {
			return nil, p.errorf("unexpected end of input, expected ')'")
		}
		if p.peek(0) == ')' {
			p.pos++
			return arr, nil
		}

		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		comment, err := p.skip()
		if err != nil {
			return nil, err
		}
		if s, ok := val.(string); ok && comment != "" {
			arr = append(arr, NewCommentValue(s, comment))
		} else {
			arr = append(arr, val)
		}

		if p.eof() {
			return nil, p.errorf("unexpected end of input, expected ')'")
		}
		switch p.peek(0) {
		case ',':
			p.pos++
		case ')':
		default:
			return nil, p.errorf("expected ',' or ')', found %q", p.peek(0))
		}
	}
}

func (p *parser) parseValue() (interface{}, error) {
	if p.eof() {
		return nil, p.errorf("unexpected end of input, expected value")
	}
	switch p.peek(0) {
	case '{':
		return p.parseDict()
	case '(':
		return p.parseArray()
	case '<':
		return p.parseData()
	}

	start := p.pos
	s, err := p.parseString()
	if err != nil {
		return nil, err
	}
	if p.data[start] != '"' {
		if n, ok := parseInt(s); ok {
			return n, nil
		}
	}
	return s, nil
}

// parseString reads a quoted string verbatim (quotes included) or a bare token.
func (p *parser) parseString() (string, error) {
	if p.eof() {
		return "", p.errorf("unexpected end of input, expected string")
	}
	start := p.pos
	if p.peek(0) == '"' {
		p.pos++
		for !p.eof() {
			switch p.peek(0) {
			case '\\':
				p.pos += 2
			case '"':
				p.pos++
				return string(p.data[start:p.pos]), nil
			default:
				p.pos++
			}
		}
		p.pos = start
		return "", p.errorf("unterminated quoted string")
	}

	for !p.eof() && isBareChar(p.peek(0)) {
		if p.peek(0) == '/' && (p.peek(1) == '*' || p.peek(1) == '/') {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf("unexpected %q", p.peek(0))
	}
	return string(p.data[start:p.pos]), nil
}

func (p *parser) parseData() (string, error) {
	start := p.pos
	end := bytes.IndexByte(p.data[p.pos:], '>')
	if end < 0 {
		return "", p.errorf("unterminated data literal")
	}
	p.pos += end + 1
	return string(p.data[start:p.pos]), nil
}

func isBareChar(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '{', '}', '(', ')', '=', ';', ',', '"', '<', '>':
		return false
	}
	return true
}

// parseInt accepts plain decimal integers that print back identically.
func parseInt(s string) (int, bool) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
