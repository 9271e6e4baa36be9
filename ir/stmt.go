package ir

import (
	"fmt"
	"strings"
)

// Stmt is a statement of the IR. The set of statement kinds is closed; the
// analyses switch over the concrete types below.
type Stmt interface {
	// Index is the position of the statement in its method body.
	Index() int
	// Line is the line in the source file the statement was loaded from.
	Line() int
	// Comment is the text of a trailing "//" comment, without the marker.
	Comment() string
	Method() *Method
	// Def returns the variable defined by the statement, if any.
	Def() *Var
	// Uses returns the variables read by the statement.
	Uses() []*Var
	fmt.Stringer

	// method used to tag statement kinds
	stmtTag()
}

type stmtInfo struct {
	index   int
	line    int
	comment string
	method  *Method
}

func (s *stmtInfo) Index() int      { return s.index }
func (s *stmtInfo) Line() int       { return s.line }
func (s *stmtInfo) Comment() string { return s.comment }
func (s *stmtInfo) Method() *Method { return s.method }
func (*stmtInfo) stmtTag()          {}

// New allocates an object: LValue = new Type.
type New struct {
	stmtInfo
	LValue *Var
	Type   Type
}

func (s *New) Def() *Var      { return s.LValue }
func (s *New) Uses() []*Var   { return nil }
func (s *New) String() string { return fmt.Sprintf("%v = new %v", s.LValue, s.Type) }

// Copy is LValue = RValue.
type Copy struct {
	stmtInfo
	LValue, RValue *Var
}

func (s *Copy) Def() *Var      { return s.LValue }
func (s *Copy) Uses() []*Var   { return []*Var{s.RValue} }
func (s *Copy) String() string { return fmt.Sprintf("%v = %v", s.LValue, s.RValue) }

// AssignLiteral is LValue = Value for an integer (or boolean) literal.
type AssignLiteral struct {
	stmtInfo
	LValue *Var
	Value  int32
}

func (s *AssignLiteral) Def() *Var      { return s.LValue }
func (s *AssignLiteral) Uses() []*Var   { return nil }
func (s *AssignLiteral) String() string { return fmt.Sprintf("%v = %d", s.LValue, s.Value) }

type BinaryOp string

const (
	Add  BinaryOp = "+"
	Sub  BinaryOp = "-"
	Mul  BinaryOp = "*"
	Div  BinaryOp = "/"
	Rem  BinaryOp = "%"
	Eq   BinaryOp = "=="
	Ne   BinaryOp = "!="
	Lt   BinaryOp = "<"
	Le   BinaryOp = "<="
	Gt   BinaryOp = ">"
	Ge   BinaryOp = ">="
	Shl  BinaryOp = "<<"
	Shr  BinaryOp = ">>"
	Ushr BinaryOp = ">>>"
	And  BinaryOp = "&"
	Or   BinaryOp = "|"
	Xor  BinaryOp = "^"
)

var binaryOps = map[string]BinaryOp{
	"+": Add, "-": Sub, "*": Mul, "/": Div, "%": Rem,
	"==": Eq, "!=": Ne, "<": Lt, "<=": Le, ">": Gt, ">=": Ge,
	"<<": Shl, ">>": Shr, ">>>": Ushr, "&": And, "|": Or, "^": Xor,
}

// IsComparison reports whether op yields a boolean (0 or 1).
func (op BinaryOp) IsComparison() bool {
	switch op {
	case Eq, Ne, Lt, Le, Gt, Ge:
		return true
	}
	return false
}

// Binary is LValue = X Op Y.
type Binary struct {
	stmtInfo
	LValue *Var
	Op     BinaryOp
	X, Y   *Var
}

func (s *Binary) Def() *Var    { return s.LValue }
func (s *Binary) Uses() []*Var { return []*Var{s.X, s.Y} }
func (s *Binary) String() string {
	return fmt.Sprintf("%v = %v %s %v", s.LValue, s.X, s.Op, s.Y)
}

// LoadField is LValue = Base.Field, or LValue = C.Field when the field is
// static (Base is nil).
type LoadField struct {
	stmtInfo
	LValue *Var
	Base   *Var
	Field  *Field
}

func (s *LoadField) IsStatic() bool { return s.Base == nil }
func (s *LoadField) Def() *Var      { return s.LValue }
func (s *LoadField) Uses() []*Var {
	if s.Base == nil {
		return nil
	}
	return []*Var{s.Base}
}
func (s *LoadField) String() string {
	if s.IsStatic() {
		return fmt.Sprintf("%v = %s.%s", s.LValue, s.Field.Class.Name, s.Field.Name)
	}
	return fmt.Sprintf("%v = %v.%s", s.LValue, s.Base, s.Field.Name)
}

// StoreField is Base.Field = RValue, or C.Field = RValue for static fields.
type StoreField struct {
	stmtInfo
	Base   *Var
	Field  *Field
	RValue *Var
}

func (s *StoreField) IsStatic() bool { return s.Base == nil }
func (s *StoreField) Def() *Var      { return nil }
func (s *StoreField) Uses() []*Var {
	if s.Base == nil {
		return []*Var{s.RValue}
	}
	return []*Var{s.Base, s.RValue}
}
func (s *StoreField) String() string {
	if s.IsStatic() {
		return fmt.Sprintf("%s.%s = %v", s.Field.Class.Name, s.Field.Name, s.RValue)
	}
	return fmt.Sprintf("%v.%s = %v", s.Base, s.Field.Name, s.RValue)
}

// LoadArray is LValue = Base[IndexVar].
type LoadArray struct {
	stmtInfo
	LValue, Base, IndexVar *Var
}

func (s *LoadArray) Def() *Var    { return s.LValue }
func (s *LoadArray) Uses() []*Var { return []*Var{s.Base, s.IndexVar} }
func (s *LoadArray) String() string {
	return fmt.Sprintf("%v = %v[%v]", s.LValue, s.Base, s.IndexVar)
}

// StoreArray is Base[IndexVar] = RValue.
type StoreArray struct {
	stmtInfo
	Base, IndexVar, RValue *Var
}

func (s *StoreArray) Def() *Var    { return nil }
func (s *StoreArray) Uses() []*Var { return []*Var{s.Base, s.IndexVar, s.RValue} }
func (s *StoreArray) String() string {
	return fmt.Sprintf("%v[%v] = %v", s.Base, s.IndexVar, s.RValue)
}

type InvokeKind uint8

const (
	InvokeStatic InvokeKind = iota
	InvokeSpecial
	InvokeVirtual
	InvokeInterface
)

func (k InvokeKind) String() string {
	switch k {
	case InvokeStatic:
		return "invokestatic"
	case InvokeSpecial:
		return "invokespecial"
	case InvokeVirtual:
		return "invokevirtual"
	case InvokeInterface:
		return "invokeinterface"
	default:
		return fmt.Sprintf("InvokeKind(%d)", k)
	}
}

// Invoke is a call site: [LValue =] Kind Receiver.Ref(Args).
type Invoke struct {
	stmtInfo
	Kind InvokeKind
	Ref  *MethodRef
	// Receiver is nil for static calls.
	Receiver *Var
	Args     []*Var
	// LValue is nil when the result is discarded.
	LValue *Var
}

func (s *Invoke) IsStatic() bool { return s.Kind == InvokeStatic }
func (s *Invoke) Def() *Var      { return s.LValue }
func (s *Invoke) Uses() []*Var {
	uses := make([]*Var, 0, len(s.Args)+1)
	if s.Receiver != nil {
		uses = append(uses, s.Receiver)
	}
	return append(uses, s.Args...)
}

func (s *Invoke) String() string {
	var sb strings.Builder
	if s.LValue != nil {
		fmt.Fprintf(&sb, "%v = ", s.LValue)
	}
	sb.WriteString(s.Kind.String())
	sb.WriteByte(' ')
	if s.Receiver != nil {
		fmt.Fprintf(&sb, "%v.", s.Receiver)
	}
	sb.WriteString(s.Ref.String())
	sb.WriteByte('(')
	for i, a := range s.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Name)
	}
	sb.WriteByte(')')
	return sb.String()
}

// Return is return [Value].
type Return struct {
	stmtInfo
	Value *Var
}

func (s *Return) Def() *Var { return nil }
func (s *Return) Uses() []*Var {
	if s.Value == nil {
		return nil
	}
	return []*Var{s.Value}
}
func (s *Return) String() string {
	if s.Value == nil {
		return "return"
	}
	return fmt.Sprintf("return %v", s.Value)
}

// If jumps to Target when X Op Y holds and falls through otherwise.
type If struct {
	stmtInfo
	Op     BinaryOp
	X, Y   *Var
	Target Stmt
}

func (s *If) Def() *Var    { return nil }
func (s *If) Uses() []*Var { return []*Var{s.X, s.Y} }
func (s *If) String() string {
	return fmt.Sprintf("if %v %s %v goto %d", s.X, s.Op, s.Y, s.Target.Index())
}

type Goto struct {
	stmtInfo
	Target Stmt
}

func (s *Goto) Def() *Var      { return nil }
func (s *Goto) Uses() []*Var   { return nil }
func (s *Goto) String() string { return fmt.Sprintf("goto %d", s.Target.Index()) }

type SwitchCase struct {
	Value  int32
	Target Stmt
}

type Switch struct {
	stmtInfo
	Var     *Var
	Cases   []SwitchCase
	Default Stmt
}

func (s *Switch) Def() *Var    { return nil }
func (s *Switch) Uses() []*Var { return []*Var{s.Var} }
func (s *Switch) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "switch %v {", s.Var)
	for _, c := range s.Cases {
		fmt.Fprintf(&sb, "%d: %d, ", c.Value, c.Target.Index())
	}
	fmt.Fprintf(&sb, "default: %d}", s.Default.Index())
	return sb.String()
}

type Nop struct {
	stmtInfo
}

func (s *Nop) Def() *Var      { return nil }
func (s *Nop) Uses() []*Var   { return nil }
func (s *Nop) String() string { return "nop" }

// NewNop creates a statement that is not part of any method body. Control
// flow graphs use such statements as synthetic entry and exit nodes.
func NewNop(m *Method, index int) *Nop {
	return &Nop{stmtInfo{index: index, method: m}}
}
