package ir_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/BarrensZeppelin/pta/ir"
	"github.com/BarrensZeppelin/pta/irutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
classes:
  - name: I
    interface: true
    methods:
      - decl: int size()
  - name: A
    implements: [I]
    fields: [A next, "int[] data", static A instance]
    methods:
      - decl: int size()
        locals: [int n]
        body: |
          n = 1
          return n
      - decl: static A make(A seed, int k)
        locals: [A a, A t, int x, "int[] xs", int zero]
        body: |
          a = new A         // fresh
          a.next = seed
          t = a.next
          A.instance = t
          t = A.instance
          xs = new int[]
          zero = 0
          xs[zero] = k
          x = xs[zero]
          x = x + k
          if x >= k goto Done
          x = invokeinterface a.<I: int size()>()
          Done:
          switch x { 1: One, default: Done2 }
          One: goto Done2
          Done2: return a
  - name: B
    extends: A
  - name: Main
    methods:
      - decl: static void main()
        locals: [A a, int k]
        body: |
          k = -3
          a = invokestatic <A: A make(A, int)>(a, k)
          invokevirtual a.<A: int size()>()
`

func TestLoad(t *testing.T) {
	prog, err := ir.Load(strings.NewReader(sample))
	require.NoError(t, err)

	t.Run("Classes", func(t *testing.T) {
		require.Len(t, prog.Classes(), 4)
		i, a, b := prog.Class("I"), prog.Class("A"), prog.Class("B")
		require.NotNil(t, i)

		assert.True(t, i.IsInterface)
		assert.True(t, i.IsAbstract)
		assert.Equal(t, []*ir.Class{i}, a.Interfaces)
		assert.Same(t, a, b.Super)
		assert.True(t, b.IsSubclassOf(i))
		assert.False(t, a.IsSubclassOf(b))

		assert.Equal(t, []*ir.Class{b}, prog.DirectSubclassesOf(a))
		assert.Equal(t, []*ir.Class{a}, prog.DirectImplementorsOf(i))
		assert.Empty(t, prog.DirectSubinterfacesOf(i))

		assert.Same(t, a.DeclaredField("next"), b.LookupField("next"))
		assert.Nil(t, b.DeclaredField("next"))
		assert.True(t, a.DeclaredField("instance").IsStatic)
		assert.Equal(t, "<A: int[] data>", a.DeclaredField("data").String())
	})

	t.Run("Methods", func(t *testing.T) {
		assert.Same(t, prog.Method("<Main: void main()>"), prog.Main)

		mk := prog.Method("<A: A make(A,int)>")
		require.NotNil(t, mk)
		assert.Same(t, mk, prog.Method("<A:A make( A , int )>"), "signatures are normalized")
		assert.True(t, mk.IsStatic)
		assert.Nil(t, mk.This())
		assert.Equal(t, []string{"seed", "k"}, names(mk.Params()))
		assert.Equal(t, []ir.Type{prog.Class("A").Type(), ir.Int}, mk.ParamTypes)
		assert.Equal(t, []string{"a"}, names(mk.ReturnVars()))

		size := prog.Method("<I: int size()>")
		assert.True(t, size.IsAbstract)
		assert.Empty(t, size.Stmts())
		assert.NotNil(t, size.This())

		assert.Nil(t, prog.Method("<A: void nope()>"))
		assert.Nil(t, prog.Method("not a signature"))
	})

	t.Run("Statements", func(t *testing.T) {
		m := prog.Method("<A: A make(A,int)>")
		stmts := m.Stmts()

		kinds := make([]string, len(stmts))
		for i, s := range stmts {
			assert.Equal(t, i, s.Index())
			assert.Same(t, m, s.Method())
			kinds[i] = strings.TrimPrefix(fmt.Sprintf("%T", s), "*ir.")
		}
		assert.Equal(t, []string{
			"New", "StoreField", "LoadField", "StoreField", "LoadField",
			"New", "AssignLiteral", "StoreArray", "LoadArray", "Binary",
			"If", "Invoke", "Switch", "Goto", "Return",
		}, kinds)

		alloc := stmts[0].(*ir.New)
		assert.Equal(t, "fresh", alloc.Comment())
		assert.Equal(t, "a = new A", alloc.String())

		static := stmts[3].(*ir.StoreField)
		assert.True(t, static.IsStatic())
		assert.Equal(t, "A.instance = t", static.String())

		arr := stmts[5].(*ir.New)
		assert.Equal(t, "int[]", arr.Type.String())
		assert.Same(t, arr.Type, prog.ArrayOf(ir.Int), "array types are interned")

		bin := stmts[9].(*ir.Binary)
		assert.Equal(t, ir.Add, bin.Op)
		assert.Equal(t, []*ir.Var{m.Var("x"), m.Var("k")}, bin.Uses())

		cond := stmts[10].(*ir.If)
		assert.Equal(t, ir.Ge, cond.Op)
		assert.Same(t, stmts[12], cond.Target, "a label on its own line marks the next statement")

		sw := stmts[12].(*ir.Switch)
		require.Len(t, sw.Cases, 1)
		assert.Equal(t, int32(1), sw.Cases[0].Value)
		assert.Same(t, stmts[13], sw.Cases[0].Target)
		assert.Same(t, stmts[14], sw.Default)
		assert.Same(t, stmts[14], stmts[13].(*ir.Goto).Target)

		call := stmts[11].(*ir.Invoke)
		assert.Equal(t, ir.InvokeInterface, call.Kind)
		assert.Equal(t, "<I: int size()>", call.Ref.String())
		assert.Same(t, m.Var("x"), call.LValue)
		assert.Equal(t, "x = invokeinterface a.<I: int size()>()", call.String())
	})

	t.Run("VarAssociations", func(t *testing.T) {
		m := prog.Method("<A: A make(A,int)>")
		a, xs := m.Var("a"), m.Var("xs")
		stmts := m.Stmts()

		assert.Equal(t, []*ir.StoreField{stmts[1].(*ir.StoreField)}, a.StoreFields())
		assert.Equal(t, []*ir.LoadField{stmts[2].(*ir.LoadField)}, a.LoadFields())
		assert.Equal(t, []*ir.Invoke{stmts[11].(*ir.Invoke)}, a.Invokes())
		assert.Equal(t, []*ir.StoreArray{stmts[7].(*ir.StoreArray)}, xs.StoreArrays())
		assert.Equal(t, []*ir.LoadArray{stmts[8].(*ir.LoadArray)}, xs.LoadArrays())
		assert.Empty(t, m.Var("t").StoreFields(), "static accesses have no base variable")
	})

	t.Run("Lines", func(t *testing.T) {
		main := prog.Main.Stmts()
		require.Len(t, main, 3)
		lines := strings.Split(sample, "\n")
		for _, s := range main {
			assert.Contains(t, lines[s.Line()-1], strings.Fields(s.String())[0])
		}

		lit := main[0].(*ir.AssignLiteral)
		assert.Equal(t, int32(-3), lit.Value)
	})
}

func TestLoadErrors(t *testing.T) {
	for name, tc := range map[string]struct {
		src string
		err error
	}{
		"UnknownSuperclass": {`
			classes:
			  - name: A
			    extends: Missing`, ir.ErrUnknownClass},
		"DuplicateClass": {`
			classes:
			  - name: A
			  - name: A`, ir.ErrDuplicate},
		"ClassExtendsInterface": {`
			classes:
			  - name: I
			    interface: true
			  - name: A
			    extends: I`, ir.ErrHierarchy},
		"ImplementsClass": {`
			classes:
			  - name: A
			  - name: B
			    implements: [A]`, ir.ErrHierarchy},
		"CyclicInheritance": {`
			classes:
			  - name: A
			    extends: B
			  - name: B
			    extends: A`, ir.ErrHierarchy},
		"UnknownVariable": {`
			classes:
			  - name: Main
			    methods:
			      - decl: static void main()
			        body: x = y`, ir.ErrUnknownVar},
		"UnknownLabel": {`
			classes:
			  - name: Main
			    methods:
			      - decl: static void main()
			        body: goto Nowhere`, ir.ErrUnknownLabel},
		"UnknownField": {`
			classes:
			  - name: A
			  - name: Main
			    methods:
			      - decl: static void main()
			        locals: [A a]
			        body: a = a.f`, ir.ErrUnknownField},
		"DuplicateVariable": {`
			classes:
			  - name: Main
			    methods:
			      - decl: static void main(int x)
			        locals: [int x]`, ir.ErrDuplicate},
		"Garbage": {`
			classes:
			  - name: Main
			    methods:
			      - decl: static void main()
			        body: this is not a statement`, ir.ErrSyntax},
		"Arity": {`
			classes:
			  - name: Main
			    methods:
			      - decl: static void main()
			        locals: [int x]
			        body: |
			          invokestatic <Main: void main()>(x)`, ir.ErrSyntax},
		"StaticCallWithReceiver": {`
			classes:
			  - name: Main
			    methods:
			      - decl: static void main()
			        locals: [Main m]
			        body: |
			          invokestatic m.<Main: void main()>()`, ir.ErrSyntax},
		"SwitchWithoutDefault": {`
			classes:
			  - name: Main
			    methods:
			      - decl: static void main()
			        locals: [int x]
			        body: |
			          L: switch x { 1: L }`, ir.ErrSyntax},
		"AbstractWithBody": {`
			classes:
			  - name: A
			    methods:
			      - decl: abstract void m()
			        body: return`, ir.ErrSyntax},
		"UnknownEntry": {`
			main: "<Main: void start()>"
			classes:
			  - name: Main`, ir.ErrUnknownMethod},
		"NewPrimitive": {`
			classes:
			  - name: Main
			    methods:
			      - decl: static void main()
			        locals: [int x]
			        body: x = new int`, ir.ErrSyntax},
	} {
		tc := tc
		t.Run(name, func(t *testing.T) {
			_, err := irutil.LoadProgramFromSource(tc.src)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestParseType(t *testing.T) {
	prog, err := irutil.LoadProgramFromSource(`
		classes:
		  - name: A`)
	require.NoError(t, err)
	assert.Nil(t, prog.Main)

	typ, err := prog.ParseType("A[][]")
	require.NoError(t, err)
	assert.Equal(t, "A[][]", typ.String())
	assert.True(t, ir.IsReference(typ))
	assert.Nil(t, ir.ClassOf(typ))

	typ, err = prog.ParseType("boolean")
	require.NoError(t, err)
	assert.False(t, ir.IsReference(typ))

	_, err = prog.ParseType("void[]")
	assert.ErrorIs(t, err, ir.ErrSyntax)
	_, err = prog.ParseType("Missing")
	assert.ErrorIs(t, err, ir.ErrUnknownClass)
}

func names(vs []*ir.Var) []string {
	res := make([]string, len(vs))
	for i, v := range vs {
		res[i] = v.Name
	}
	return res
}
