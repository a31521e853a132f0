package token

import "fmt"

// Type identifies the kind of a lexical token.
type Type int

const (
	// Special tokens
	EOF Type = iota
	ILLEGAL
	NEWLINE
	INDENT
	DEDENT
	COMMENT

	// Literals and identifiers
	IDENT
	STRING
	NUMBER
	DISCRETION // **...** or ***...***

	// Punctuation and operators
	COLON    // :
	COMMA    // ,
	ASSIGN   // =
	ARROW    // ->
	PIPE     // |
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	LBRACE   // {
	RBRACE   // }

	// Keywords
	SESSION
	AGENT
	BLOCK
	DO
	LET
	CONST
	IMPORT
	FOR
	IN
	LOOP
	UNTIL
	WHILE
	REPEAT
	TIMES
	PARALLEL
	TRY
	CATCH
	FINALLY
	CHOICE
	OPTION
	IF
	ELIF
	ELSE
	AS
	MAP
	FILTER
	REDUCE
)

var typeNames = map[Type]string{
	EOF:        "EOF",
	ILLEGAL:    "ILLEGAL",
	NEWLINE:    "NEWLINE",
	INDENT:     "INDENT",
	DEDENT:     "DEDENT",
	COMMENT:    "COMMENT",
	IDENT:      "IDENT",
	STRING:     "STRING",
	NUMBER:     "NUMBER",
	DISCRETION: "DISCRETION",
	COLON:      "COLON",
	COMMA:      "COMMA",
	ASSIGN:     "ASSIGN",
	ARROW:      "ARROW",
	PIPE:       "PIPE",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	LBRACKET:   "LBRACKET",
	RBRACKET:   "RBRACKET",
	LBRACE:     "LBRACE",
	RBRACE:     "RBRACE",
	SESSION:    "SESSION",
	AGENT:      "AGENT",
	BLOCK:      "BLOCK",
	DO:         "DO",
	LET:        "LET",
	CONST:      "CONST",
	IMPORT:     "IMPORT",
	FOR:        "FOR",
	IN:         "IN",
	LOOP:       "LOOP",
	UNTIL:      "UNTIL",
	WHILE:      "WHILE",
	REPEAT:     "REPEAT",
	TIMES:      "TIMES",
	PARALLEL:   "PARALLEL",
	TRY:        "TRY",
	CATCH:      "CATCH",
	FINALLY:    "FINALLY",
	CHOICE:     "CHOICE",
	OPTION:     "OPTION",
	IF:         "IF",
	ELIF:       "ELIF",
	ELSE:       "ELSE",
	AS:         "AS",
	MAP:        "MAP",
	FILTER:     "FILTER",
	REDUCE:     "REDUCE",
}

// String returns the name of the token type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// keywords maps identifier text to keyword token types.
// Identifier scanning completes first; the resulting text is looked up here.
var keywords = map[string]Type{
	"session":  SESSION,
	"agent":    AGENT,
	"block":    BLOCK,
	"do":       DO,
	"let":      LET,
	"const":    CONST,
	"import":   IMPORT,
	"for":      FOR,
	"in":       IN,
	"loop":     LOOP,
	"until":    UNTIL,
	"while":    WHILE,
	"repeat":   REPEAT,
	"times":    TIMES,
	"parallel": PARALLEL,
	"try":      TRY,
	"catch":    CATCH,
	"finally":  FINALLY,
	"choice":   CHOICE,
	"option":   OPTION,
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"as":       AS,
	"map":      MAP,
	"filter":   FILTER,
	"reduce":   REDUCE,
}

// Lookup returns the keyword type for an identifier, or IDENT if the text
// is not a keyword.
func Lookup(ident string) Type {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return IDENT
}

// IsKeyword returns true if the type is a language keyword.
func (t Type) IsKeyword() bool {
	return t >= SESSION && t <= REDUCE
}

// Position is a point in the source text. Line and Column are 1-based,
// Offset is the 0-based byte offset.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

// String returns "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid returns true if the position points at real source text.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Span is a half-open range of source text from Start (inclusive) to End
// (exclusive).
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// String returns "startLine:startCol-endLine:endCol".
func (s Span) String() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}

// Contains returns true if the other span lies entirely within this span.
func (s Span) Contains(other Span) bool {
	return s.Start.Offset <= other.Start.Offset && other.End.Offset <= s.End.Offset
}

// Interpolation records one {name} occurrence inside a string literal.
// The surrounding literal keeps the braces verbatim; substitution happens
// downstream, at execution time.
type Interpolation struct {
	Name   string // identifier between the braces
	Offset int    // byte offset of '{' within the resolved string value
	Raw    string // raw text including braces, e.g. "{item}"
}

// StringMeta carries extra lexical detail for STRING tokens.
type StringMeta struct {
	Raw             string          // source text including quotes
	TripleQuoted    bool            // true for """...""" literals
	EscapeSequences []string        // escape sequences encountered, in order
	Interpolations  []Interpolation // {name} occurrences, in order
}

// Token is a single lexical unit. Tokens are produced once by the lexer and
// are read-only afterwards.
type Token struct {
	Type  Type   `json:"type"`
	Value string `json:"value"`
	Span  Span   `json:"span"`

	// Trivia marks tokens that carry no grammar weight (comments).
	Trivia bool `json:"trivia,omitempty"`

	// StringMeta is non-nil only for STRING tokens.
	StringMeta *StringMeta `json:"stringMetadata,omitempty"`
}

// String returns a compact representation for debugging and token dumps.
func (t Token) String() string {
	switch t.Type {
	case STRING, IDENT, NUMBER, COMMENT, DISCRETION, ILLEGAL:
		return fmt.Sprintf("%s(%q)", t.Type, t.Value)
	default:
		return t.Type.String()
	}
}
