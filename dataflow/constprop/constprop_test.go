package constprop

import (
	"math"
	"testing"

	"github.com/BarrensZeppelin/pta/ir"
	"github.com/stretchr/testify/assert"
)

func TestMeetValue(t *testing.T) {
	for _, tc := range []struct{ a, b, want Value }{
		{Undef, Undef, Undef},
		{Undef, Const(3), Const(3)},
		{Const(3), Undef, Const(3)},
		{Const(3), Const(3), Const(3)},
		{Const(3), Const(4), NAC},
		{NAC, Const(4), NAC},
		{Undef, NAC, NAC},
	} {
		assert.Equal(t, tc.want, MeetValue(tc.a, tc.b), "%v ⊓ %v", tc.a, tc.b)
	}
}

func TestValue(t *testing.T) {
	assert.True(t, Value{}.IsUndef())
	assert.Equal(t, "UNDEF", Undef.String())
	assert.Equal(t, "NAC", NAC.String())
	assert.Equal(t, "-7", Const(-7).String())
	assert.Equal(t, int32(5), Const(5).Constant())
	assert.Panics(t, func() { NAC.Constant() })
}

func TestCompute(t *testing.T) {
	for _, tc := range []struct {
		op   ir.BinaryOp
		a, b int32
		want int32
	}{
		{ir.Add, math.MaxInt32, 1, math.MinInt32},
		{ir.Sub, 3, 5, -2},
		{ir.Mul, 1 << 16, 1 << 16, 0},
		{ir.Div, -7, 2, -3},
		{ir.Div, math.MinInt32, -1, math.MinInt32},
		{ir.Rem, -7, 2, -1},
		{ir.Eq, 2, 2, 1},
		{ir.Ne, 2, 2, 0},
		{ir.Lt, -1, 0, 1},
		{ir.Ge, -1, 0, 0},
		{ir.Shl, 1, 33, 2},
		{ir.Shr, -8, 1, -4},
		{ir.Ushr, -8, 28, 15},
		{ir.And, 6, 3, 2},
		{ir.Or, 6, 3, 7},
		{ir.Xor, 6, 3, 5},
	} {
		assert.Equal(t, tc.want, compute(tc.op, tc.a, tc.b), "%d %s %d", tc.a, tc.op, tc.b)
	}
}

func TestEvaluate(t *testing.T) {
	x := &ir.Var{Name: "x", Type: ir.Int}
	y := &ir.Var{Name: "y", Type: ir.Int}
	z := &ir.Var{Name: "z", Type: ir.Int}
	o := &ir.Var{Name: "o", Type: ir.Boolean}

	in := NewFact()
	in.Update(x, Const(6))
	in.Update(y, NAC)
	in.Update(z, Const(0))

	assert.Equal(t, Const(12), Evaluate(ir.Add, x, x, in))
	assert.Equal(t, NAC, Evaluate(ir.Mul, x, y, in))
	assert.Equal(t, Undef, Evaluate(ir.Div, y, z, in), "division by zero")
	assert.Equal(t, Undef, Evaluate(ir.Rem, x, z, in), "remainder by zero")
	assert.Equal(t, Undef, Evaluate(ir.Add, x, o, in), "o is undefined")
	assert.Equal(t, NAC, Evaluate(ir.Add, y, o, in))
}

func TestFact(t *testing.T) {
	x := &ir.Var{Name: "x", Type: ir.Int}
	y := &ir.Var{Name: "y", Type: ir.Int}

	f := NewFact()
	assert.True(t, f.Update(x, Const(1)))
	assert.False(t, f.Update(x, Const(1)))
	assert.False(t, f.Update(y, Undef))
	assert.Equal(t, "{x=1}", f.String())

	g := f.Copy()
	assert.True(t, g.Equal(f))
	g.Update(x, NAC)
	assert.False(t, g.Equal(f))
	assert.Equal(t, Const(1), f.Get(x), "copies are independent")

	assert.True(t, f.CopyFrom(g))
	assert.False(t, f.CopyFrom(g))
	assert.Equal(t, NAC, f.Get(x))

	assert.True(t, f.Update(x, Undef))
	assert.Empty(t, f.Vars())
}

func TestCanHoldInt(t *testing.T) {
	for typ, want := range map[ir.Type]bool{
		ir.Int:     true,
		ir.Char:    true,
		ir.Boolean: true,
		ir.Long:    false,
		ir.Float:   false,
	} {
		assert.Equal(t, want, CanHoldInt(&ir.Var{Type: typ}), "%v", typ)
	}
}
