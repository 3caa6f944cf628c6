package dsl

import (
	"fmt"
	"strings"
	"unicode"
)

// LexError is a fatal tokenization failure. The whole input is rejected; no
// partial token stream is usable.
type LexError struct {
	Line int    // 1-based
	Text string // raw line text
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s on line %d: %s", e.Msg, e.Line, e.Text)
}

// modelSuffixes are file suffixes recognized as model artifacts. A quoted
// string ending in one of these is kept unwrapped so model paths survive
// lexing as plain text.
var modelSuffixes = []string{".onnx"}

func isModelPath(s string) bool {
	for _, suf := range modelSuffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

// Tokenize converts normalized source text into a flat token stream.
//
// It works line by line: inline comments (# and //) are stripped outside
// double quotes, indentation is tracked with a width stack that emits
// Indent/Dedent tokens, and each remaining line is scanned character by
// character. Tabs must have been expanded upstream (see neurochain.Preprocess).
//
// A dedent to a width that was never pushed snaps to the nearest surviving
// level: the stack pops while the new indentation is smaller than the top and
// stops there, without erroring.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	indentStack := []int{0}

	lines := strings.Split(input, "\n")
	for idx, rawLine := range lines {
		rawTrimmed := strings.TrimSpace(rawLine)
		if rawTrimmed == "" {
			continue
		}
		if strings.HasPrefix(rawTrimmed, "#") || strings.HasPrefix(rawTrimmed, "//") {
			tokens = append(tokens, tok(TokenComment), tok(TokenNewline))
			continue
		}

		trimmed := strings.TrimSpace(cutComment(rawLine))
		if trimmed == "" {
			continue
		}

		// Indentation is measured on the raw line, before comment stripping.
		indent := leadingSpaces(rawLine)
		top := indentStack[len(indentStack)-1]
		switch {
		case indent > top:
			indentStack = append(indentStack, indent)
			tokens = append(tokens, tok(TokenIndent))
		case indent < top:
			for indent < indentStack[len(indentStack)-1] {
				indentStack = indentStack[:len(indentStack)-1]
				tokens = append(tokens, tok(TokenDedent))
			}
		}

		lineToks, err := scanLine(trimmed, idx+1, rawLine)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, lineToks...)
		tokens = append(tokens, tok(TokenNewline))
	}

	// Close any indentation levels still open at end of input.
	for len(indentStack) > 1 {
		indentStack = indentStack[:len(indentStack)-1]
		tokens = append(tokens, tok(TokenDedent))
	}

	return tokens, nil
}

// cutComment truncates a line at the first # or // that appears outside a
// double-quoted span. Inside quotes both markers are ordinary characters.
func cutComment(line string) string {
	inQuote := false
	runes := []rune(line)
	for i, ch := range runes {
		switch {
		case ch == '"':
			inQuote = !inQuote
		case ch == '#' && !inQuote:
			return string(runes[:i])
		case ch == '/' && !inQuote && i+1 < len(runes) && runes[i+1] == '/':
			return string(runes[:i])
		}
	}
	return line
}

func leadingSpaces(s string) int {
	n := 0
	for _, ch := range s {
		if ch != ' ' {
			break
		}
		n++
	}
	return n
}

// scanLine tokenizes one comment-stripped, trimmed line.
func scanLine(trimmed string, lineNo int, rawLine string) ([]Token, error) {
	var tokens []Token
	chars := []rune(trimmed)
	i := 0

	for i < len(chars) {
		ch := chars[i]
		switch {
		case ch == ':':
			tokens = append(tokens, tok(TokenColon))
			i++
		case ch == '=' && i+1 < len(chars) && chars[i+1] == '=':
			tokens = append(tokens, tok(TokenEq))
			i += 2
		case ch == '=':
			tokens = append(tokens, tok(TokenAssign))
			i++
		case ch == '!' && i+1 < len(chars) && chars[i+1] == '=':
			tokens = append(tokens, tok(TokenNe))
			i += 2
		case ch == '>' && i+1 < len(chars) && chars[i+1] == '=':
			tokens = append(tokens, tok(TokenGe))
			i += 2
		case ch == '>':
			tokens = append(tokens, tok(TokenGt))
			i++
		case ch == '<' && i+1 < len(chars) && chars[i+1] == '=':
			tokens = append(tokens, tok(TokenLe))
			i += 2
		case ch == '<':
			tokens = append(tokens, tok(TokenLt))
			i++
		case ch == '+':
			tokens = append(tokens, tok(TokenPlus))
			i++
		case ch == '-':
			tokens = append(tokens, tok(TokenMinus))
			i++
		case ch == '*':
			tokens = append(tokens, tok(TokenStar))
			i++
		case ch == '/':
			tokens = append(tokens, tok(TokenSlash))
			i++
		case ch == '%':
			tokens = append(tokens, tok(TokenPercent))
			i++
		case ch == '(':
			tokens = append(tokens, tok(TokenLParen))
			i++
		case ch == ')':
			tokens = append(tokens, tok(TokenRParen))
			i++
		case ch == '"':
			start := i + 1
			end := -1
			for j := start; j < len(chars); j++ {
				if chars[j] == '"' {
					end = j
					break
				}
			}
			if end < 0 {
				return nil, &LexError{Line: lineNo, Text: rawLine, Msg: "missing quote"}
			}
			content := string(chars[start:end])
			if isModelPath(content) {
				tokens = append(tokens, strTok(content))
			} else {
				tokens = append(tokens, strTok(`"`+content+`"`))
			}
			i = end + 1
		case ch >= '0' && ch <= '9':
			start := i
			for i < len(chars) && chars[i] >= '0' && chars[i] <= '9' {
				i++
			}
			if i+1 < len(chars) && chars[i] == '.' && chars[i+1] >= '0' && chars[i+1] <= '9' {
				i++ // consume '.'
				for i < len(chars) && chars[i] >= '0' && chars[i] <= '9' {
					i++
				}
			}
			tokens = append(tokens, numTok(string(chars[start:i])))
		case unicode.IsLetter(ch):
			start := i
			for i < len(chars) && (unicode.IsLetter(chars[i]) || unicode.IsDigit(chars[i]) || chars[i] == '_') {
				i++
			}
			word := string(chars[start:i])
			if kw, ok := keywords[strings.ToLower(word)]; ok {
				tokens = append(tokens, tok(kw))
			} else {
				tokens = append(tokens, strTok(word))
			}
		case unicode.IsSpace(ch):
			i++
		default:
			return nil, &LexError{
				Line: lineNo,
				Text: rawLine,
				Msg:  fmt.Sprintf("unexpected character %q", string(ch)),
			}
		}
	}

	return tokens, nil
}
