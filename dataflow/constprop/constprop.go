package constprop

import (
	"github.com/BarrensZeppelin/pta/dataflow"
	"github.com/BarrensZeppelin/pta/ir"
)

// Analysis is the forward constant propagation of one method. Parameters
// that can hold ints are NAC on entry.
type Analysis struct {
	method *ir.Method
}

var _ dataflow.Analysis[ir.Stmt, *Fact] = (*Analysis)(nil)

func New(m *ir.Method) *Analysis { return &Analysis{method: m} }

func (*Analysis) IsForward() bool { return true }

func (a *Analysis) NewBoundaryFact() *Fact {
	f := NewFact()
	for _, p := range a.method.Params() {
		if CanHoldInt(p) {
			f.Update(p, NAC)
		}
	}
	return f
}

func (*Analysis) NewInitialFact() *Fact { return NewFact() }

func (*Analysis) MeetInto(fact, target *Fact) {
	for v, val := range fact.m {
		target.Update(v, MeetValue(val, target.Get(v)))
	}
}

func (*Analysis) TransferNode(s ir.Stmt, in, out *Fact) bool {
	return out.CopyFrom(Transfer(s, in))
}

// Transfer returns the fact after s given the fact before it.
func Transfer(s ir.Stmt, in *Fact) *Fact {
	res := in.Copy()
	if def := s.Def(); def != nil {
		res.Remove(def)
		if CanHoldInt(def) {
			res.Update(def, evaluateStmt(s, in))
		}
	}
	return res
}

// CanHoldInt reports whether v has a type whose values are tracked.
func CanHoldInt(v *ir.Var) bool {
	switch v.Type {
	case ir.Int, ir.Short, ir.Byte, ir.Char, ir.Boolean:
		return true
	}
	return false
}

func valueOf(v *ir.Var, in *Fact) Value {
	if CanHoldInt(v) {
		return in.Get(v)
	}
	return NAC
}

func evaluateStmt(s ir.Stmt, in *Fact) Value {
	switch s := s.(type) {
	case *ir.AssignLiteral:
		return Const(s.Value)
	case *ir.Copy:
		return valueOf(s.RValue, in)
	case *ir.Binary:
		return Evaluate(s.Op, s.X, s.Y, in)
	default:
		// Loads and calls.
		return NAC
	}
}

// Evaluate computes x op y under in. Division and remainder by a constant
// zero yield UNDEF.
func Evaluate(op ir.BinaryOp, x, y *ir.Var, in *Fact) Value {
	a, b := valueOf(x, in), valueOf(y, in)
	switch {
	case (op == ir.Div || op == ir.Rem) && b.IsConstant() && b.Constant() == 0:
		return Undef
	case a.IsNAC() || b.IsNAC():
		return NAC
	case a.IsConstant() && b.IsConstant():
		return Const(compute(op, a.c, b.c))
	default:
		return Undef
	}
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// compute applies op with 32 bit two's complement semantics. Shift
// distances are taken modulo 32.
func compute(op ir.BinaryOp, a, b int32) int32 {
	shift := uint32(b) & 31
	switch op {
	case ir.Add:
		return a + b
	case ir.Sub:
		return a - b
	case ir.Mul:
		return a * b
	case ir.Div:
		return a / b
	case ir.Rem:
		return a % b
	case ir.Eq:
		return boolToInt(a == b)
	case ir.Ne:
		return boolToInt(a != b)
	case ir.Lt:
		return boolToInt(a < b)
	case ir.Le:
		return boolToInt(a <= b)
	case ir.Gt:
		return boolToInt(a > b)
	case ir.Ge:
		return boolToInt(a >= b)
	case ir.Shl:
		return a << shift
	case ir.Shr:
		return a >> shift
	case ir.Ushr:
		return int32(uint32(a) >> shift)
	case ir.And:
		return a & b
	case ir.Or:
		return a | b
	case ir.Xor:
		return a ^ b
	}
	panic("unknown operator " + string(op))
}

// Analyze runs constant propagation on the control flow graph of a method.
func Analyze(cfg *dataflow.CFG) *dataflow.Result[ir.Stmt, *Fact] {
	return dataflow.SolveWorkList[ir.Stmt, *Fact](New(cfg.Method()), cfg)
}
