package lexer

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/smasher164/xid"
)

type Lexer struct {
	ch    rune
	pos   int
	i     int // position in buffer
	err   error
	buf   []rune
	rdr   io.RuneReader
	lines []int // offsets at which each line starts
	src   string
}

const eof = -1

// Extension is the file extension of source files.
const Extension = ".l5"

func (l *Lexer) lexWS() Token {
	startPos := l.pos
	for unicode.IsSpace(l.ch) {
		l.next()
	}
	return Token{Type: Whitespace, Span: l.spanOf(startPos, l.pos-1), Data: l.bufString()}
}

func isSymbolStart(ch rune) bool {
	return xid.Start(ch) || strings.ContainsRune(symbolPunct, ch)
}

func isSymbolContinue(ch rune) bool {
	return xid.Continue(ch) || strings.ContainsRune(symbolPunct, ch)
}

func isDecimal(ch rune) bool { return '0' <= ch && ch <= '9' }

// isDelimiter reports whether ch ends an atom.
func isDelimiter(ch rune) bool {
	switch ch {
	case eof, '(', ')', '\'', '"', ';', ':':
		return true
	}
	return unicode.IsSpace(ch)
}

func (l *Lexer) lexSymbol() Token {
	startPos := l.pos
	l.next()
	for isSymbolContinue(l.ch) {
		l.next()
	}
	if !isDelimiter(l.ch) {
		return l.lexIllegalAtom(startPos, "invalid character %q in symbol")
	}
	return Token{Type: Symbol, Span: l.spanOf(startPos, l.pos-1), Data: l.bufString()}
}

// lexIllegalAtom consumes the rest of a malformed atom so that lexing can
// resume at the next delimiter.
func (l *Lexer) lexIllegalAtom(startPos int, format string) Token {
	bad := l.ch
	for !isDelimiter(l.ch) {
		l.next()
	}
	return Token{Type: Illegal, Span: l.spanOf(startPos, l.pos-1), Data: fmt.Sprintf(format, bad)}
}

func (l *Lexer) lexDigits() (count int) {
	for isDecimal(l.ch) {
		count++
		l.next()
	}
	return count
}

func (l *Lexer) lexNumber() Token {
	startPos := l.pos
	if l.ch == '+' || l.ch == '-' {
		l.next()
	}
	l.lexDigits()
	if l.ch == '.' {
		l.next()
		if l.lexDigits() == 0 {
			return l.lexIllegalAtom(startPos, "no digits after decimal point (found %q)")
		}
	}
	if !isDelimiter(l.ch) {
		return l.lexIllegalAtom(startPos, "invalid character %q in number")
	}
	return Token{Type: Number, Span: l.spanOf(startPos, l.pos-1), Data: l.bufString()}
}

func (l *Lexer) lexHash() Token {
	startPos := l.pos
	l.next()
	for isSymbolContinue(l.ch) {
		l.next()
	}
	data := l.bufString()
	if _, ok := Booleans[data]; ok && isDelimiter(l.ch) {
		return Token{Type: Boolean, Span: l.spanOf(startPos, l.pos-1), Data: data}
	}
	for !isDelimiter(l.ch) {
		l.next()
	}
	return Token{Type: Illegal, Span: l.spanOf(startPos, l.pos-1), Data: fmt.Sprintf("unknown literal %q", l.bufString())}
}

func (l *Lexer) lexLineComment() Token {
	startPos := l.pos
	for l.ch != '\n' && l.ch != eof {
		l.next()
	}
	return Token{Type: Comment, Span: l.spanOf(startPos, l.pos-1), Data: l.bufString()}
}

func (l *Lexer) lexEscape() string {
	switch l.ch {
	case 'n', 't', 'r', '\\', '"':
		l.next()
		return ""
	case eof:
		return "escape sequence not terminated"
	}
	l.next()
	return "unknown escape sequence"
}

func (l *Lexer) lexString() Token {
	startPos := l.pos
	l.next()
	var msg string
	for {
		switch l.ch {
		case eof:
			return Token{Type: Illegal, Span: l.spanOf(startPos, l.pos), Data: "unterminated string"}
		case '"':
			l.next()
			if msg != "" {
				return Token{Type: Illegal, Span: l.spanOf(startPos, l.pos-1), Data: msg}
			}
			return Token{Type: String, Span: l.spanOf(startPos, l.pos-1), Data: l.bufString()}
		case '\\':
			l.next()
			if m := l.lexEscape(); m != "" && msg == "" {
				msg = m
			}
		default:
			l.next()
		}
	}
}

func (l *Lexer) next() {
	if l.ch == eof {
		return
	}
	if l.ch == '\n' {
		l.lines = append(l.lines, l.pos+1)
	}
	l.i++
	l.pos++
	if l.i < len(l.buf) {
		l.ch = l.buf[l.i]
	} else {
		r, _, err := l.rdr.ReadRune()
		if err != nil {
			l.ch = eof
			if err != io.EOF {
				l.err = err
			}
		} else {
			l.ch = r
		}
		l.buf = append(l.buf, l.ch)
	}
}

func (l *Lexer) backup() {
	if l.i > 0 {
		l.i--
		l.pos--
		l.ch = l.buf[l.i]
		if len(l.lines) > 1 && l.lines[len(l.lines)-1] > l.pos {
			l.lines = l.lines[:len(l.lines)-1]
		}
	}
}

func (l *Lexer) peek() rune {
	if l.ch == eof {
		return eof
	}
	l.next()
	ch := l.ch
	l.backup()
	return ch
}

func (l *Lexer) bufString() string {
	return string(l.buf[:l.i])
}

func (l *Lexer) lineIndex(offset int) int {
	return sort.Search(len(l.lines), func(i int) bool { return l.lines[i] > offset }) - 1
}

func (l *Lexer) posOf(offset int) Pos {
	line := l.lineIndex(offset)
	return Pos{Offset: offset, Line: line + 1, Column: offset - l.lines[line] + 1}
}

func (l *Lexer) spanOf(off1, off2 int) Span {
	if off2 < off1 {
		off2 = off1
	}
	start := l.posOf(off1)
	var end Pos
	if off1 == off2 {
		end = start
	} else {
		end = l.posOf(off2)
	}
	return Span{Start: start, End: end}
}

func (l *Lexer) resetPos() {
	l.buf = l.buf[l.i:]
	l.i = 0
	l.ch = l.buf[l.i]
}

// NextToken returns the next token, including whitespace and comments.
func (l *Lexer) NextToken() Token {
	defer l.resetPos()
	startPos := l.pos
	switch {
	case unicode.IsSpace(l.ch):
		return l.lexWS()
	case l.ch == ';':
		return l.lexLineComment()
	case l.ch == '"':
		return l.lexString()
	case l.ch == '#':
		return l.lexHash()
	case isDecimal(l.ch) || (l.ch == '+' || l.ch == '-') && isDecimal(l.peek()):
		return l.lexNumber()
	case isSymbolStart(l.ch):
		return l.lexSymbol()
	}
	if ttyp, ok := SingleCharTokens[l.ch]; ok {
		l.next()
		return Token{Type: ttyp, Span: l.spanOf(startPos, startPos)}
	}
	ch := l.ch
	l.next()
	return Token{Type: Illegal, Span: l.spanOf(startPos, startPos), Data: fmt.Sprintf("unexpected character %q", ch)}
}

// Next returns the next significant token, with any whitespace and
// comments before it attached as leading trivia.
func (l *Lexer) Next() Token {
	var t Token
	var trivia []Token
	for t = l.NextToken(); t.Type == Whitespace || t.Type == Comment; t = l.NextToken() {
		trivia = append(trivia, t)
	}
	t.LeadingTrivia = trivia
	return t
}

// Err returns the first read error encountered, other than io.EOF.
func (l *Lexer) Err() error {
	return l.err
}

func newLexer(rdr io.RuneReader) *Lexer {
	l := &Lexer{
		rdr:   rdr,
		i:     -1,
		pos:   -1,
		lines: []int{0},
	}
	l.next()
	return l
}

func FromString(src string) *Lexer {
	l := newLexer(strings.NewReader(src))
	l.src = src
	return l
}

// NewLexer reads filename from fsys in full and lexes its contents.
func NewLexer(fsys fs.FS, filename string) (*Lexer, error) {
	if filepath.Ext(filename) != Extension {
		return nil, fmt.Errorf("invalid file extension %q, expected %q", filepath.Ext(filename), Extension)
	}
	data, err := fs.ReadFile(fsys, filename)
	if err != nil {
		return nil, err
	}
	return FromString(string(data)), nil
}

// Source returns the text being lexed.
func (l *Lexer) Source() string {
	return l.src
}
