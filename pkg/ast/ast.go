package ast

// Expr is implemented by every expression node.
type Expr interface {
	exprNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	stmtNode()
}

// Scope records where name resolution found a binding. The zero value means
// the name was not found in any enclosing lexical scope and resolves against
// the globals at runtime.
type Scope struct {
	local bool
	depth int
}

// GlobalScope marks a name as resolving against the globals.
func GlobalScope() Scope {
	return Scope{}
}

// LocalScope marks a name as bound depth lexical scopes above its use site.
func LocalScope(depth int) Scope {
	return Scope{local: true, depth: depth}
}

// Local reports the hop count for a lexically bound name.
func (s Scope) Local() (int, bool) {
	return s.depth, s.local
}

type UnaryOp int

const (
	OpNegate UnaryOp = iota
	OpNot
)

func (op UnaryOp) String() string {
	switch op {
	case OpNegate:
		return "Minus"
	case OpNot:
		return "Bang"
	}
	return "UnaryOp(?)"
}

type BinaryOp int

const (
	OpPlus BinaryOp = iota
	OpMinus
	OpStar
	OpSlash
	OpEqual
	OpBangEq
	OpGreaterThan
	OpGreaterThanEq
	OpLessThan
	OpLessThanEq
)

func (op BinaryOp) String() string {
	switch op {
	case OpPlus:
		return "Plus"
	case OpMinus:
		return "Minus"
	case OpStar:
		return "Star"
	case OpSlash:
		return "Slash"
	case OpEqual:
		return "Equal"
	case OpBangEq:
		return "BangEq"
	case OpGreaterThan:
		return "GreaterThan"
	case OpGreaterThanEq:
		return "GreaterThanEq"
	case OpLessThan:
		return "LessThan"
	case OpLessThanEq:
		return "LessThanEq"
	}
	return "BinaryOp(?)"
}

type LogicalOp int

const (
	OpAnd LogicalOp = iota
	OpOr
)

func (op LogicalOp) String() string {
	if op == OpAnd {
		return "And"
	}
	return "Or"
}

type LiteralKind int

const (
	LitNil LiteralKind = iota
	LitTrue
	LitFalse
	LitNumber
	LitString
)

// Literal is a nil, boolean, number, or string constant.
type Literal struct {
	Kind   LiteralKind
	Number float64
	Text   string
	Line   int
}

// Grouping is a parenthesized expression.
type Grouping struct {
	Expr Expr
}

type Unary struct {
	Op   UnaryOp
	Expr Expr
	Line int
}

type Binary struct {
	Op   BinaryOp
	LHS  Expr
	RHS  Expr
	Line int
}

// Logical is a short-circuiting and/or chain. It yields the deciding operand
// value untouched rather than coercing to a boolean.
type Logical struct {
	Op   LogicalOp
	LHS  Expr
	RHS  Expr
	Line int
}

// Var is a variable reference.
type Var struct {
	Name  string
	Line  int
	Scope Scope
}

type Assign struct {
	Name  string
	Value Expr
	Line  int
	Scope Scope
}

type Call struct {
	Callee Expr
	Args   []Expr
	Line   int
}

// Get reads a property off an instance.
type Get struct {
	Object Expr
	Name   string
	Line   int
}

// Set writes a field on an instance.
type Set struct {
	Object Expr
	Name   string
	Value  Expr
	Line   int
}

type This struct {
	Line  int
	Scope Scope
}

// Super looks up a method on the superclass, bound to the current instance.
type Super struct {
	Method string
	Line   int
	Scope  Scope
}

func (*Literal) exprNode()  {}
func (*Grouping) exprNode() {}
func (*Unary) exprNode()    {}
func (*Binary) exprNode()   {}
func (*Logical) exprNode()  {}
func (*Var) exprNode()      {}
func (*Assign) exprNode()   {}
func (*Call) exprNode()     {}
func (*Get) exprNode()      {}
func (*Set) exprNode()      {}
func (*This) exprNode()     {}
func (*Super) exprNode()    {}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	Expr Expr
}

type Print struct {
	Expr Expr
	Line int
}

// VarDecl declares a variable, defaulting to nil when Init is absent.
type VarDecl struct {
	Name  string
	Init  Expr
	Line  int
	Scope Scope
}

type Block struct {
	Stmts []Stmt
}

type If struct {
	Cond Expr
	Then Stmt
	Else Stmt
}

type While struct {
	Cond Expr
	Body Stmt
}

// FunctionDecl is the parameter list and body shared by named functions and
// methods.
type FunctionDecl struct {
	Params []Param
	Body   []Stmt
}

type Param struct {
	Name string
	Line int
}

type Function struct {
	Name  string
	Decl  *FunctionDecl
	Line  int
	Scope Scope
}

type Return struct {
	Value Expr
	Line  int
}

// Class declares a class with an optional superclass reference.
type Class struct {
	Name       string
	Superclass *Var
	Methods    []*Function
	Line       int
	Scope      Scope
}

func (*ExprStmt) stmtNode() {}
func (*Print) stmtNode()    {}
func (*VarDecl) stmtNode()  {}
func (*Block) stmtNode()    {}
func (*If) stmtNode()       {}
func (*While) stmtNode()    {}
func (*Function) stmtNode() {}
func (*Return) stmtNode()   {}
func (*Class) stmtNode()    {}
