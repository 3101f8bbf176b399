package vm

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ccoveille/go-safecast"

	"github.com/zaharidichev/rlox/pkg/ast"
)

// CompileError reports a construct the bytecode backend rejected.
type CompileError struct {
	Line    int
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("[line %d] %s", e.Line, e.Message)
}

const (
	maxArity  = 8
	maxLocals = 255
)

type local struct {
	name  string
	depth int
}

// compiler emits one function's chunk. Nested function declarations spawn a
// child compiler; the enclosing chain lets variable resolution tell a closure
// capture apart from a plain global.
type compiler struct {
	enclosing  *compiler
	fn         *Function
	locals     []local
	scopeDepth int
	line       int
}

// Compile lowers a resolved program to a callable script function.
func Compile(program []ast.Stmt) (*Function, error) {
	c := newCompiler(nil, "script", 0)
	for _, s := range program {
		if err := c.stmt(s); err != nil {
			return nil, err
		}
	}
	return c.fn, nil
}

func newCompiler(enclosing *compiler, name string, arity int) *compiler {
	c := &compiler{
		enclosing: enclosing,
		fn:        &Function{Name: name, Arity: arity, Chunk: NewChunk(name)},
		line:      1,
	}
	// Slot 0 holds the function itself, which is what makes recursion by
	// name work for local declarations.
	c.locals = append(c.locals, local{name: name, depth: 0})
	return c
}

func (c *compiler) errorf(format string, args ...any) error {
	return &CompileError{Line: c.line, Message: fmt.Sprintf(format, args...)}
}

func (c *compiler) stmt(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.ExprStmt:
		if err := c.expr(s.Expr); err != nil {
			return err
		}
		c.emit(OpPop)
		return nil
	case *ast.Print:
		c.line = s.Line
		if err := c.expr(s.Expr); err != nil {
			return err
		}
		c.emit(OpPrint)
		return nil
	case *ast.VarDecl:
		return c.varDecl(s)
	case *ast.Block:
		c.beginScope()
		for _, inner := range s.Stmts {
			if err := c.stmt(inner); err != nil {
				return err
			}
		}
		c.endScope()
		return nil
	case *ast.If:
		return c.ifStmt(s)
	case *ast.While:
		return c.whileStmt(s)
	case *ast.Function:
		return c.funDecl(s)
	case *ast.Return:
		c.line = s.Line
		if s.Value != nil {
			if err := c.expr(s.Value); err != nil {
				return err
			}
		} else {
			c.emit(OpNil)
		}
		c.emit(OpReturn)
		return nil
	case *ast.Class:
		c.line = s.Line
		return c.errorf("The bytecode backend does not support classes.")
	}
	return c.errorf("Unsupported statement.")
}

func (c *compiler) varDecl(s *ast.VarDecl) error {
	c.line = s.Line
	if s.Init != nil {
		if err := c.expr(s.Init); err != nil {
			return err
		}
	} else {
		c.emit(OpNil)
	}
	if _, isLocal := s.Scope.Local(); isLocal {
		// The initializer's result stays on the stack as the new slot.
		return c.declareLocal(s.Name)
	}
	idx, err := c.fn.Chunk.StringConstant(s.Name)
	if err != nil {
		return c.errorf("%s", err.Error())
	}
	c.emit(OpDefineGlobal)
	c.emitByte(idx)
	return nil
}

func (c *compiler) ifStmt(s *ast.If) error {
	if err := c.expr(s.Cond); err != nil {
		return err
	}
	elseJump := c.emitJump(OpJumpIfFalse)
	c.emit(OpPop)
	if err := c.stmt(s.Then); err != nil {
		return err
	}
	endJump := c.emitJump(OpJump)
	if err := c.patchJump(elseJump); err != nil {
		return err
	}
	c.emit(OpPop)
	if s.Else != nil {
		if err := c.stmt(s.Else); err != nil {
			return err
		}
	}
	return c.patchJump(endJump)
}

func (c *compiler) whileStmt(s *ast.While) error {
	loopStart := c.fn.Chunk.Len()
	if err := c.expr(s.Cond); err != nil {
		return err
	}
	exitJump := c.emitJump(OpJumpIfFalse)
	c.emit(OpPop)
	if err := c.stmt(s.Body); err != nil {
		return err
	}
	if err := c.emitJumpTo(OpJump, loopStart); err != nil {
		return err
	}
	if err := c.patchJump(exitJump); err != nil {
		return err
	}
	c.emit(OpPop)
	return nil
}

func (c *compiler) funDecl(s *ast.Function) error {
	c.line = s.Line
	if len(s.Decl.Params) > maxArity {
		return c.errorf("Too many arguments.")
	}

	fnCompiler := newCompiler(c, s.Name, len(s.Decl.Params))
	fnCompiler.line = s.Line
	fnCompiler.beginScope()
	for _, p := range s.Decl.Params {
		fnCompiler.line = p.Line
		if err := fnCompiler.declareLocal(p.Name); err != nil {
			return err
		}
	}
	for _, inner := range s.Decl.Body {
		if err := fnCompiler.stmt(inner); err != nil {
			return err
		}
	}
	// Falling off the end returns nil.
	fnCompiler.emit(OpNil)
	fnCompiler.emit(OpReturn)

	c.line = s.Line
	idx, err := c.fn.Chunk.AddConstant(fnCompiler.fn)
	if err != nil {
		return c.errorf("%s", err.Error())
	}
	c.emit(OpConstant)
	c.emitByte(idx)

	if _, isLocal := s.Scope.Local(); isLocal {
		return c.declareLocal(s.Name)
	}
	nameIdx, err := c.fn.Chunk.StringConstant(s.Name)
	if err != nil {
		return c.errorf("%s", err.Error())
	}
	c.emit(OpDefineGlobal)
	c.emitByte(nameIdx)
	return nil
}

func (c *compiler) expr(e ast.Expr) error {
	switch e := e.(type) {
	case *ast.Literal:
		c.line = e.Line
		return c.literal(e)
	case *ast.Grouping:
		return c.expr(e.Expr)
	case *ast.Unary:
		if err := c.expr(e.Expr); err != nil {
			return err
		}
		c.line = e.Line
		switch e.Op {
		case ast.OpNegate:
			c.emit(OpNegate)
		case ast.OpNot:
			c.emit(OpNot)
		}
		return nil
	case *ast.Binary:
		return c.binary(e)
	case *ast.Logical:
		return c.logical(e)
	case *ast.Var:
		c.line = e.Line
		return c.variable(e.Name, e.Scope, false)
	case *ast.Assign:
		if err := c.expr(e.Value); err != nil {
			return err
		}
		c.line = e.Line
		return c.variable(e.Name, e.Scope, true)
	case *ast.Call:
		return c.call(e)
	case *ast.Get, *ast.Set:
		c.line = exprNodeLine(e)
		return c.errorf("The bytecode backend does not support properties.")
	case *ast.This, *ast.Super:
		c.line = exprNodeLine(e)
		return c.errorf("The bytecode backend does not support classes.")
	}
	return c.errorf("Unsupported expression.")
}

func (c *compiler) literal(e *ast.Literal) error {
	switch e.Kind {
	case ast.LitNil:
		c.emit(OpNil)
	case ast.LitTrue:
		c.emit(OpTrue)
	case ast.LitFalse:
		c.emit(OpFalse)
	case ast.LitNumber:
		c.emit(OpImmediate)
		var payload [8]byte
		binary.LittleEndian.PutUint64(payload[:], math.Float64bits(e.Number))
		for _, b := range payload {
			c.emitByte(b)
		}
	case ast.LitString:
		idx, err := c.fn.Chunk.StringConstant(e.Text)
		if err != nil {
			return c.errorf("%s", err.Error())
		}
		c.emit(OpConstant)
		c.emitByte(idx)
	}
	return nil
}

func (c *compiler) binary(e *ast.Binary) error {
	if err := c.expr(e.LHS); err != nil {
		return err
	}
	if err := c.expr(e.RHS); err != nil {
		return err
	}
	c.line = e.Line
	switch e.Op {
	case ast.OpPlus:
		c.emit(OpAdd)
	case ast.OpMinus:
		c.emit(OpSubtract)
	case ast.OpStar:
		c.emit(OpMultiply)
	case ast.OpSlash:
		c.emit(OpDivide)
	case ast.OpEqual:
		c.emit(OpEqual)
	case ast.OpBangEq:
		c.emit(OpEqual)
		c.emit(OpNot)
	case ast.OpGreaterThan:
		c.emit(OpGreaterThan)
	case ast.OpLessThan:
		c.emit(OpLessThan)
	case ast.OpGreaterThanEq:
		c.emit(OpLessThan)
		c.emit(OpNot)
	case ast.OpLessThanEq:
		c.emit(OpGreaterThan)
		c.emit(OpNot)
	}
	return nil
}

// logical compiles the short-circuit forms. The jump peeks the condition, so
// the deciding operand itself remains as the expression's value.
func (c *compiler) logical(e *ast.Logical) error {
	if err := c.expr(e.LHS); err != nil {
		return err
	}
	c.line = e.Line
	switch e.Op {
	case ast.OpAnd:
		endJump := c.emitJump(OpJumpIfFalse)
		c.emit(OpPop)
		if err := c.expr(e.RHS); err != nil {
			return err
		}
		return c.patchJump(endJump)
	case ast.OpOr:
		elseJump := c.emitJump(OpJumpIfFalse)
		endJump := c.emitJump(OpJump)
		if err := c.patchJump(elseJump); err != nil {
			return err
		}
		c.emit(OpPop)
		if err := c.expr(e.RHS); err != nil {
			return err
		}
		return c.patchJump(endJump)
	}
	return c.errorf("Unsupported logical operator.")
}

func (c *compiler) call(e *ast.Call) error {
	if err := c.expr(e.Callee); err != nil {
		return err
	}
	if len(e.Args) > maxArity {
		c.line = e.Line
		return c.errorf("Too many arguments.")
	}
	for _, arg := range e.Args {
		if err := c.expr(arg); err != nil {
			return err
		}
	}
	c.line = e.Line
	arity, err := safecast.ToUint8(len(e.Args))
	if err != nil {
		return c.errorf("Too many arguments.")
	}
	c.emit(OpCall)
	c.emitByte(arity)
	return nil
}

// variable emits the load or store for a resolved name. Locals resolve
// against this function's slots; a local owned by an enclosing function would
// need upvalue support, which this backend does not have.
func (c *compiler) variable(name string, scope ast.Scope, store bool) error {
	if _, isLocal := scope.Local(); isLocal {
		slot, ok := c.resolveLocal(name)
		if !ok {
			if c.capturedByEnclosing(name) {
				return c.errorf("The bytecode backend does not support closures.")
			}
			return c.errorf("Undefined variable '%s'.", name)
		}
		if store {
			c.emit(OpSetLocal)
		} else {
			c.emit(OpGetLocal)
		}
		c.emitByte(slot)
		return nil
	}
	idx, err := c.fn.Chunk.StringConstant(name)
	if err != nil {
		return c.errorf("%s", err.Error())
	}
	if store {
		c.emit(OpSetGlobal)
	} else {
		c.emit(OpGetGlobal)
	}
	c.emitByte(idx)
	return nil
}

func (c *compiler) declareLocal(name string) error {
	if len(c.locals) > maxLocals {
		return c.errorf("Too many local variables in function.")
	}
	c.locals = append(c.locals, local{name: name, depth: c.scopeDepth})
	return nil
}

// resolveLocal finds the innermost live local named name, scanning newest
// first so shadowing picks the right slot.
func (c *compiler) resolveLocal(name string) (byte, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			slot, err := safecast.ToUint8(i)
			if err != nil {
				return 0, false
			}
			return slot, true
		}
	}
	return 0, false
}

func (c *compiler) capturedByEnclosing(name string) bool {
	for enc := c.enclosing; enc != nil; enc = enc.enclosing {
		if _, ok := enc.resolveLocal(name); ok {
			return true
		}
	}
	return false
}

func (c *compiler) beginScope() {
	c.scopeDepth++
}

// endScope pops the scope's locals off the stack so slot numbering stays in
// step with runtime stack height.
func (c *compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.emit(OpPop)
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (c *compiler) emit(op Op) {
	c.fn.Chunk.Write(byte(op), c.line)
}

func (c *compiler) emitByte(b byte) {
	c.fn.Chunk.Write(b, c.line)
}

// emitJump writes op with a placeholder target and returns the offset to
// patch once the destination is known.
func (c *compiler) emitJump(op Op) int {
	c.emit(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return c.fn.Chunk.Len() - 2
}

// emitJumpTo writes op with an absolute target that is already known, such
// as a loop header.
func (c *compiler) emitJumpTo(op Op, target int) error {
	t, err := safecast.ToUint16(target)
	if err != nil {
		return c.errorf("Too much code to jump over.")
	}
	c.emit(op)
	c.emitByte(byte(t & 0xff))
	c.emitByte(byte(t >> 8))
	return nil
}

// patchJump points a placeholder emitted by emitJump at the current end of
// the chunk. Targets are absolute chunk offsets.
func (c *compiler) patchJump(offset int) error {
	target, err := safecast.ToUint16(c.fn.Chunk.Len())
	if err != nil {
		return c.errorf("Too much code to jump over.")
	}
	c.fn.Chunk.WriteByteAt(offset, byte(target&0xff))
	c.fn.Chunk.WriteByteAt(offset+1, byte(target>>8))
	return nil
}

func exprNodeLine(e ast.Expr) int {
	switch e := e.(type) {
	case *ast.Get:
		return e.Line
	case *ast.Set:
		return e.Line
	case *ast.This:
		return e.Line
	case *ast.Super:
		return e.Line
	}
	return 0
}
