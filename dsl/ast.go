package dsl

// Statement is a single executable line or block of a script.
type Statement interface {
	stmt()
}

// AIStmt loads a classifier model: AI: "path/to/model.onnx".
type AIStmt struct {
	Path string
}

// NeuroStmt prints its argument: neuro "hello" / neuro x / neuro 42.
type NeuroStmt struct {
	Arg string
}

// SetStmt assigns the result of an expression: set x = 2 + 3.
type SetStmt struct {
	Name string
	Expr Expr
}

// SetFromAIStmt assigns the classifier's label for a prompt:
// set verdict from AI: "this movie was great".
type SetFromAIStmt struct {
	Name   string
	Prompt string
}

// MacroStmt synthesizes script source from a natural-language instruction:
// macro from AI: repeat hello 3 times.
type MacroStmt struct {
	Prompt string
}

// IfStmt is an if/elif/else chain. Elifs share the statement shape of the
// head; Else may be nil.
type IfStmt struct {
	Cond  BoolExpr
	Then  []Statement
	Elifs []ElifClause
	Else  []Statement
}

type ElifClause struct {
	Cond BoolExpr
	Body []Statement
}

func (*AIStmt) stmt()        {}
func (*NeuroStmt) stmt()     {}
func (*SetStmt) stmt()       {}
func (*SetFromAIStmt) stmt() {}
func (*MacroStmt) stmt()     {}
func (*IfStmt) stmt()        {}

// Expr is an arithmetic or comparison expression in a set statement.
type Expr interface {
	expr()
}

type NumberExpr struct {
	Value string // raw literal text, integer or decimal
}

type IdentExpr struct {
	Name string
}

type StringExpr struct {
	Value string // includes surrounding quotes when quoted in source
}

type BinaryExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
}

func (*NumberExpr) expr() {}
func (*IdentExpr) expr()  {}
func (*StringExpr) expr() {}
func (*BinaryExpr) expr() {}

// BoolExpr is a condition in an if/elif head.
type BoolExpr interface {
	boolExpr()
}

// PredictEquals asks the classifier whether the prediction for Input equals
// Label. Operands may each be a variable name or a quoted literal.
type PredictEquals struct {
	Input string
	Label string
}

type PredictNotEquals struct {
	Input string
	Label string
}

// Compare is a relational test between two resolved values.
type Compare struct {
	Op    TokenType // TokenGt, TokenLt, TokenGe, TokenLe
	Left  string
	Right string
}

// BoolBinary joins two conditions. Both sides are always evaluated.
type BoolBinary struct {
	Op    TokenType // TokenAnd, TokenOr
	Left  BoolExpr
	Right BoolExpr
}

func (*PredictEquals) boolExpr()    {}
func (*PredictNotEquals) boolExpr() {}
func (*Compare) boolExpr()          {}
func (*BoolBinary) boolExpr()       {}
