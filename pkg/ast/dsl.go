package ast

// Constructors for building trees by hand, mostly in tests. They leave line
// information zeroed; comparisons that care about positions should go through
// the printer instead.

func NilLit() *Literal {
	return &Literal{Kind: LitNil}
}

func TrueLit() *Literal {
	return &Literal{Kind: LitTrue}
}

func FalseLit() *Literal {
	return &Literal{Kind: LitFalse}
}

func NumberLit(n float64) *Literal {
	return &Literal{Kind: LitNumber, Number: n}
}

func StringLit(s string) *Literal {
	return &Literal{Kind: LitString, Text: s}
}

func NewGrouping(e Expr) *Grouping {
	return &Grouping{Expr: e}
}

func NewUnary(op UnaryOp, e Expr) *Unary {
	return &Unary{Op: op, Expr: e}
}

func NewBinary(op BinaryOp, lhs, rhs Expr) *Binary {
	return &Binary{Op: op, LHS: lhs, RHS: rhs}
}

func NewLogical(op LogicalOp, lhs, rhs Expr) *Logical {
	return &Logical{Op: op, LHS: lhs, RHS: rhs}
}

func NewVar(name string) *Var {
	return &Var{Name: name}
}

func NewAssign(name string, value Expr) *Assign {
	return &Assign{Name: name, Value: value}
}

func NewCall(callee Expr, args ...Expr) *Call {
	return &Call{Callee: callee, Args: args}
}

func IfStmt(cond Expr, then Stmt) *If {
	return &If{Cond: cond, Then: then}
}

func IfElseStmt(cond Expr, then, other Stmt) *If {
	return &If{Cond: cond, Then: then, Else: other}
}
