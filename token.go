package shaped

import (
	"fmt"
	"strconv"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString // quoted literal, escapes resolved
	tokInt
	tokFloat
	tokColon
	tokComma
	tokQuestion
	tokEqual
	tokPipe
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokLAngle
	tokRAngle
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokString:
		return "string literal"
	case tokInt:
		return "integer literal"
	case tokFloat:
		return "float literal"
	case tokColon:
		return "':'"
	case tokComma:
		return "','"
	case tokQuestion:
		return "'?'"
	case tokEqual:
		return "'='"
	case tokPipe:
		return "'|'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokLBracket:
		return "'['"
	case tokRBracket:
		return "']'"
	case tokLAngle:
		return "'<'"
	case tokRAngle:
		return "'>'"
	default:
		return "invalid"
	}
}

// token is one lexical unit with its byte offset into the source.
type token struct {
	kind tokenKind
	text string
	off  int
}

func (t token) describe() string {
	switch t.kind {
	case tokIdent, tokInt, tokFloat:
		return fmt.Sprintf("%s %q", t.kind, t.text)
	case tokString:
		return fmt.Sprintf("string literal %s", strconv.Quote(t.text))
	default:
		return t.kind.String()
	}
}

func lexErr(off int, kind, msg string) *SchemaError {
	return &SchemaError{Stage: StageLex, Offset: off, Path: "", Kind: kind, Message: msg}
}

// tokenize scans the whole source into a token slice terminated by tokEOF.
// It fails on the first unrecognized character, unterminated string literal
// or malformed number; there is no recovery.
func tokenize(src string) ([]token, *SchemaError) {
	var toks []token
	i, n := 0, len(src)
	for i < n {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case c == '[':
			toks = append(toks, token{tokLBracket, "[", i})
			i++
		case c == ']':
			toks = append(toks, token{tokRBracket, "]", i})
			i++
		case c == '<':
			toks = append(toks, token{tokLAngle, "<", i})
			i++
		case c == '>':
			toks = append(toks, token{tokRAngle, ">", i})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ",", i})
			i++
		case c == ':':
			toks = append(toks, token{tokColon, ":", i})
			i++
		case c == '?':
			toks = append(toks, token{tokQuestion, "?", i})
			i++
		case c == '=':
			toks = append(toks, token{tokEqual, "=", i})
			i++
		case c == '|':
			toks = append(toks, token{tokPipe, "|", i})
			i++
		case c == '"':
			tok, next, err := scanString(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = next
		case c >= '0' && c <= '9' || c == '.' || c == '+' || c == '-':
			tok, next, err := scanNumber(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = next
		case isIdentByte(c):
			start := i
			for i < n && isIdentByte(src[i]) {
				i++
			}
			toks = append(toks, token{tokIdent, src[start:i], start})
		default:
			return nil, lexErr(i, KindUnexpectedChar, fmt.Sprintf("unexpected character %q", rune(c)))
		}
	}
	toks = append(toks, token{tokEOF, "", n})
	return toks, nil
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

// scanNumber consumes an optionally signed decimal with optional fraction and
// exponent (1.496e11, +1.5e3, -30). The token kind is tokFloat when the
// lexeme carries a '.' or an exponent, tokInt otherwise.
func scanNumber(src string, start int) (token, int, *SchemaError) {
	i, n := start, len(src)
	isFloat := false
	if src[i] == '+' || src[i] == '-' {
		i++
	}
	for i < n {
		c := src[i]
		if c >= '0' && c <= '9' {
			i++
			continue
		}
		if c == '.' {
			isFloat = true
			i++
			continue
		}
		if c == 'e' || c == 'E' {
			isFloat = true
			i++
			// exponent may carry its own sign
			if i < n && (src[i] == '+' || src[i] == '-') {
				i++
			}
			continue
		}
		break
	}
	text := src[start:i]
	if _, err := strconv.ParseFloat(text, 64); err != nil {
		return token{}, 0, lexErr(start, KindInvalidNumber, fmt.Sprintf("invalid number %q", text))
	}
	kind := tokInt
	if isFloat {
		kind = tokFloat
	}
	return token{kind, text, start}, i, nil
}

// scanString consumes a double-quoted literal, resolving \n \r \t \" \\
// escapes. An unknown escape keeps the escaped character as-is.
func scanString(src string, start int) (token, int, *SchemaError) {
	i, n := start+1, len(src)
	var b []byte
	for i < n {
		c := src[i]
		if c == '"' {
			return token{tokString, string(b), start}, i + 1, nil
		}
		if c == '\\' {
			i++
			if i >= n {
				break
			}
			switch src[i] {
			case 'n':
				b = append(b, '\n')
			case 'r':
				b = append(b, '\r')
			case 't':
				b = append(b, '\t')
			default:
				b = append(b, src[i])
			}
			i++
			continue
		}
		b = append(b, c)
		i++
	}
	return token{}, 0, lexErr(start, KindUnterminatedString, "unterminated string literal")
}
