package dsl

// Parser turns a token stream into statements. It is deliberately lenient:
// tokens that do not start a known statement are skipped rather than
// reported, so one malformed line never sinks a whole script.
type Parser struct {
	tokens []Token
	pos    int
}

// Parse consumes the whole token stream and returns the statements it could
// recognize.
func Parse(tokens []Token) []Statement {
	p := &Parser{tokens: tokens}
	return p.parseStatements(false)
}

func (p *Parser) cur() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return Token{Type: ""}
}

func (p *Parser) peekType() TokenType {
	return p.cur().Type
}

func (p *Parser) advance() Token {
	t := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *Parser) accept(tt TokenType) bool {
	if p.peekType() == tt {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

// parseStatements reads statements until end of input, or until a Dedent when
// inBlock is set. Newlines and comments between statements are skipped.
func (p *Parser) parseStatements(inBlock bool) []Statement {
	var stmts []Statement
	for !p.atEnd() {
		switch p.peekType() {
		case TokenNewline, TokenComment:
			p.advance()
			continue
		case TokenDedent:
			if inBlock {
				p.advance()
				return stmts
			}
			p.advance()
			continue
		}

		if s := p.parseStatement(); s != nil {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

func (p *Parser) parseStatement() Statement {
	switch p.peekType() {
	case TokenAI:
		return p.parseAI()
	case TokenNeuro:
		return p.parseNeuro()
	case TokenSet:
		return p.parseSet()
	case TokenMacro:
		return p.parseMacro()
	case TokenIf:
		return p.parseIf()
	default:
		// Unknown statement start, drop the token and move on.
		p.advance()
		return nil
	}
}

func (p *Parser) parseAI() Statement {
	p.advance() // AI
	if !p.accept(TokenColon) {
		return nil
	}
	if p.peekType() != TokenString {
		return nil
	}
	path := stripQuotes(p.advance().Literal)
	return &AIStmt{Path: path}
}

func (p *Parser) parseNeuro() Statement {
	p.advance() // neuro
	switch p.peekType() {
	case TokenString, TokenNumber:
		return &NeuroStmt{Arg: p.advance().Literal}
	}
	return nil
}

func (p *Parser) parseSet() Statement {
	p.advance() // set
	if p.peekType() != TokenString {
		return nil
	}
	name := p.advance().Literal

	switch p.peekType() {
	case TokenAssign:
		p.advance()
		expr := p.parseExpr()
		if expr == nil {
			return nil
		}
		return &SetStmt{Name: name, Expr: expr}
	case TokenFrom:
		p.advance()
		if !p.accept(TokenAI) || !p.accept(TokenColon) {
			return nil
		}
		if p.peekType() != TokenString {
			return nil
		}
		prompt := stripQuotes(p.advance().Literal)
		return &SetFromAIStmt{Name: name, Prompt: prompt}
	}
	return nil
}

// parseMacro collects the words after "macro from AI:" up to the end of the
// line and hands the joined text to the synthesizer as one instruction.
func (p *Parser) parseMacro() Statement {
	p.advance() // macro
	if !p.accept(TokenFrom) || !p.accept(TokenAI) || !p.accept(TokenColon) {
		return nil
	}
	var parts []string
	for !p.atEnd() && p.peekType() != TokenNewline {
		t := p.advance()
		switch t.Type {
		case TokenString, TokenNumber:
			parts = append(parts, t.Literal)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return &MacroStmt{Prompt: joinWords(parts)}
}

func joinWords(parts []string) string {
	out := ""
	for i, w := range parts {
		if i > 0 {
			out += " "
		}
		out += w
	}
	return out
}

func (p *Parser) parseIf() Statement {
	p.advance() // if
	cond := p.parseBoolExpr()
	if cond == nil {
		return nil
	}
	then := p.parseBlock()

	stmt := &IfStmt{Cond: cond, Then: then}
	for {
		p.skipNewlines()
		if p.peekType() != TokenElif {
			break
		}
		p.advance()
		ec := p.parseBoolExpr()
		if ec == nil {
			break
		}
		stmt.Elifs = append(stmt.Elifs, ElifClause{Cond: ec, Body: p.parseBlock()})
	}
	p.skipNewlines()
	if p.peekType() == TokenElse {
		p.advance()
		stmt.Else = p.parseBlock()
	}
	return stmt
}

// parseBlock reads ": NEWLINE INDENT stmts DEDENT". A missing colon or
// indent yields an empty body.
func (p *Parser) parseBlock() []Statement {
	if !p.accept(TokenColon) {
		return nil
	}
	p.skipNewlines()
	if !p.accept(TokenIndent) {
		return nil
	}
	return p.parseStatements(true)
}

func (p *Parser) skipNewlines() {
	for p.peekType() == TokenNewline || p.peekType() == TokenComment {
		p.advance()
	}
}

// parseBoolExpr parses condition atoms joined by and/or, flat and
// left-associative with no precedence between the two.
func (p *Parser) parseBoolExpr() BoolExpr {
	left := p.parseBoolAtom()
	if left == nil {
		return nil
	}
	for {
		var op TokenType
		switch p.peekType() {
		case TokenAnd:
			op = TokenAnd
		case TokenOr:
			op = TokenOr
		default:
			return left
		}
		p.advance()
		right := p.parseBoolAtom()
		if right == nil {
			return left
		}
		left = &BoolBinary{Op: op, Left: left, Right: right}
	}
}

// parseBoolAtom parses "value OP value". Equality forms go through the
// classifier; relational forms compare resolved values directly.
func (p *Parser) parseBoolAtom() BoolExpr {
	left, ok := p.parseBoolValue()
	if !ok {
		return nil
	}
	op := p.peekType()
	switch op {
	case TokenEq, TokenNe, TokenGt, TokenLt, TokenGe, TokenLe:
		p.advance()
	default:
		return nil
	}
	right, ok := p.parseBoolValue()
	if !ok {
		return nil
	}
	switch op {
	case TokenEq:
		return &PredictEquals{Input: left, Label: right}
	case TokenNe:
		return &PredictNotEquals{Input: left, Label: right}
	default:
		return &Compare{Op: op, Left: left, Right: right}
	}
}

// parseBoolValue reads a single operand of a condition: a quoted string, a
// bare word, or a number with optional leading minus. Quoted operands keep
// their quotes so the evaluator can tell literals from variables.
func (p *Parser) parseBoolValue() (string, bool) {
	switch p.peekType() {
	case TokenString, TokenNumber:
		return p.advance().Literal, true
	case TokenMinus:
		p.advance()
		if p.peekType() == TokenNumber {
			return "-" + p.advance().Literal, true
		}
		return "", false
	}
	return "", false
}

// Expression grammar for set statements. Addition, subtraction and the
// comparison operators share one precedence tier above * / %, all
// left-associative, so "a + b > c" groups as "(a + b) > c".
func (p *Parser) parseExpr() Expr {
	left := p.parseTerm()
	if left == nil {
		return nil
	}
	for {
		op := p.peekType()
		switch op {
		case TokenPlus, TokenMinus, TokenEq, TokenNe, TokenGt, TokenLt, TokenGe, TokenLe:
			p.advance()
		default:
			return left
		}
		right := p.parseTerm()
		if right == nil {
			return left
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseTerm() Expr {
	left := p.parseFactor()
	if left == nil {
		return nil
	}
	for {
		op := p.peekType()
		switch op {
		case TokenStar, TokenSlash, TokenPercent:
			p.advance()
		default:
			return left
		}
		right := p.parseFactor()
		if right == nil {
			return left
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseFactor() Expr {
	switch p.peekType() {
	case TokenNumber:
		return &NumberExpr{Value: p.advance().Literal}
	case TokenString:
		lit := p.advance().Literal
		if isQuoted(lit) {
			return &StringExpr{Value: lit}
		}
		return &IdentExpr{Name: lit}
	case TokenLParen:
		p.advance()
		inner := p.parseExpr()
		p.accept(TokenRParen)
		return inner
	case TokenMinus:
		p.advance()
		operand := p.parseFactor()
		if operand == nil {
			return nil
		}
		return &BinaryExpr{Op: TokenMinus, Left: &NumberExpr{Value: "0"}, Right: operand}
	}
	return nil
}

func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}

func stripQuotes(s string) string {
	if isQuoted(s) {
		return s[1 : len(s)-1]
	}
	return s
}
