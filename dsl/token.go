package dsl

// TokenType identifies the kind of a lexed token.
type TokenType string

const (
	// Keywords
	TokenAI    TokenType = "AI"
	TokenNeuro TokenType = "NEURO"
	TokenSet   TokenType = "SET"
	TokenFrom  TokenType = "FROM"
	TokenMacro TokenType = "MACRO"
	TokenIf    TokenType = "IF"
	TokenElif  TokenType = "ELIF"
	TokenElse  TokenType = "ELSE"
	TokenAnd   TokenType = "AND"
	TokenOr    TokenType = "OR"

	// Literals
	TokenString TokenType = "STRING"
	TokenNumber TokenType = "NUMBER"

	// Operators and punctuation
	TokenColon    TokenType = "COLON"
	TokenAssign   TokenType = "ASSIGN" // =
	TokenEq       TokenType = "EQ"     // ==
	TokenNe       TokenType = "NE"     // !=
	TokenGt       TokenType = "GT"
	TokenLt       TokenType = "LT"
	TokenGe       TokenType = "GE"
	TokenLe       TokenType = "LE"
	TokenPlus     TokenType = "PLUS"
	TokenMinus    TokenType = "MINUS"
	TokenStar     TokenType = "STAR"
	TokenSlash    TokenType = "SLASH"
	TokenPercent  TokenType = "PERCENT"
	TokenLParen   TokenType = "LPAREN"
	TokenRParen   TokenType = "RPAREN"

	// Structure
	TokenNewline TokenType = "NEWLINE"
	TokenIndent  TokenType = "INDENT"
	TokenDedent  TokenType = "DEDENT"
	TokenComment TokenType = "COMMENT"
)

// Token is one lexeme from the source text. Literal is only meaningful for
// TokenString and TokenNumber; quoted string literals keep their surrounding
// quote characters so the parser can tell them apart from bare identifiers.
type Token struct {
	Type    TokenType
	Literal string
}

func tok(t TokenType) Token   { return Token{Type: t} }
func strTok(lit string) Token { return Token{Type: TokenString, Literal: lit} }
func numTok(lit string) Token { return Token{Type: TokenNumber, Literal: lit} }

// keywords maps lowercased identifier text to keyword token types.
var keywords = map[string]TokenType{
	"ai":    TokenAI,
	"neuro": TokenNeuro,
	"set":   TokenSet,
	"from":  TokenFrom,
	"macro": TokenMacro,
	"if":    TokenIf,
	"elif":  TokenElif,
	"else":  TokenElse,
	"and":   TokenAnd,
	"or":    TokenOr,
}
