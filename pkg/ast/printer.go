package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Dump renders a program as an indented node-per-line dump. The output is
// stable across parses of equivalent source, which makes it convenient for
// comparing trees in tests without fighting over line numbers.
func Dump(stmts []Stmt) string {
	p := &printer{}
	for _, s := range stmts {
		p.stmt(s, 0)
	}
	return p.buf.String()
}

// DumpExpr renders a single expression in the same format as Dump.
func DumpExpr(e Expr) string {
	p := &printer{}
	p.expr(e, 0)
	return p.buf.String()
}

type printer struct {
	buf strings.Builder
}

func (p *printer) line(indent int, format string, args ...any) {
	fmt.Fprintf(&p.buf, "%*s", indent, "")
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteByte('\n')
}

func (p *printer) stmt(s Stmt, indent int) {
	switch s := s.(type) {
	case *ExprStmt:
		p.line(indent, "Expr")
		p.expr(s.Expr, indent+2)
	case *Print:
		p.line(indent, "Print")
		p.expr(s.Expr, indent+2)
	case *VarDecl:
		p.line(indent, "Var(%s)", s.Name)
		if s.Init != nil {
			p.expr(s.Init, indent+2)
		}
	case *Block:
		p.line(indent, "Block")
		for _, inner := range s.Stmts {
			p.stmt(inner, indent+2)
		}
	case *If:
		if s.Else != nil {
			p.line(indent, "IfElse")
		} else {
			p.line(indent, "If")
		}
		p.expr(s.Cond, indent+2)
		p.stmt(s.Then, indent+2)
		if s.Else != nil {
			p.stmt(s.Else, indent+2)
		}
	case *While:
		p.line(indent, "While")
		p.expr(s.Cond, indent+2)
		p.stmt(s.Body, indent+2)
	case *Function:
		p.line(indent, "Fun(%s(%s))", s.Name, paramNames(s.Decl.Params))
		for _, inner := range s.Decl.Body {
			p.stmt(inner, indent+2)
		}
	case *Return:
		p.line(indent, "Return")
		if s.Value != nil {
			p.expr(s.Value, indent+2)
		}
	case *Class:
		if s.Superclass != nil {
			p.line(indent, "Class(%s < %s)", s.Name, s.Superclass.Name)
		} else {
			p.line(indent, "Class(%s)", s.Name)
		}
		for _, m := range s.Methods {
			p.stmt(m, indent+2)
		}
	default:
		p.line(indent, "Stmt(%T)", s)
	}
}

func (p *printer) expr(e Expr, indent int) {
	switch e := e.(type) {
	case *Literal:
		p.line(indent, "%s", literalLabel(e))
	case *Grouping:
		p.expr(e.Expr, indent+2)
	case *Unary:
		p.line(indent, "Unary(%s)", e.Op)
		p.expr(e.Expr, indent+2)
	case *Binary:
		p.line(indent, "Binary(%s)", e.Op)
		p.expr(e.LHS, indent+2)
		p.expr(e.RHS, indent+2)
	case *Logical:
		p.line(indent, "Logical(%s)", e.Op)
		p.expr(e.LHS, indent+2)
		p.expr(e.RHS, indent+2)
	case *Var:
		p.line(indent, "Var(%s)", e.Name)
	case *Assign:
		p.line(indent, "Assign(%s)", e.Name)
		p.expr(e.Value, indent+2)
	case *Call:
		p.line(indent, "Call")
		p.expr(e.Callee, indent+2)
		for _, arg := range e.Args {
			p.expr(arg, indent+2)
		}
	case *Get:
		p.line(indent, "Get(%s)", e.Name)
		p.expr(e.Object, indent+2)
	case *Set:
		p.line(indent, "Set(%s)", e.Name)
		p.expr(e.Object, indent+2)
		p.expr(e.Value, indent+2)
	case *This:
		p.line(indent, "This")
	case *Super:
		p.line(indent, "Super(%s)", e.Method)
	default:
		p.line(indent, "Expr(%T)", e)
	}
}

func literalLabel(l *Literal) string {
	switch l.Kind {
	case LitNil:
		return "Nil"
	case LitTrue:
		return "True"
	case LitFalse:
		return "False"
	case LitNumber:
		return "Number(" + strconv.FormatFloat(l.Number, 'g', -1, 64) + ")"
	case LitString:
		return "String(" + strconv.Quote(l.Text) + ")"
	}
	return "Literal(?)"
}

func paramNames(params []Param) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}
