package ir

import "fmt"

type Class struct {
	Name string
	// Super is nil for root classes and for interfaces.
	Super *Class
	// Interfaces holds the implemented interfaces of a class, or the extended
	// interfaces of an interface.
	Interfaces  []*Class
	IsInterface bool
	IsAbstract  bool

	typ *ClassType

	fields       []*Field
	fieldsByName map[string]*Field

	methods         []*Method
	methodsBySubsig map[string]*Method
}

func newClass(name string) *Class {
	c := &Class{
		Name:            name,
		fieldsByName:    make(map[string]*Field),
		methodsBySubsig: make(map[string]*Method),
	}
	c.typ = &ClassType{Class: c}
	return c
}

func (c *Class) String() string             { return c.Name }
func (c *Class) Type() *ClassType           { return c.typ }
func (c *Class) DeclaredFields() []*Field   { return c.fields }
func (c *Class) DeclaredMethods() []*Method { return c.methods }

// DeclaredMethod returns the method declared in c with the given
// subsignature, or nil. Inherited methods are not considered.
func (c *Class) DeclaredMethod(subsig string) *Method {
	return c.methodsBySubsig[subsig]
}

func (c *Class) DeclaredField(name string) *Field {
	return c.fieldsByName[name]
}

// LookupField finds a field by name in c or its superclasses.
func (c *Class) LookupField(name string) *Field {
	for k := c; k != nil; k = k.Super {
		if f := k.fieldsByName[name]; f != nil {
			return f
		}
	}
	return nil
}

// IsSubclassOf reports whether c is d or (transitively) extends or
// implements d.
func (c *Class) IsSubclassOf(d *Class) bool {
	if c == d {
		return true
	}
	if c.Super != nil && c.Super.IsSubclassOf(d) {
		return true
	}
	for _, i := range c.Interfaces {
		if i.IsSubclassOf(d) {
			return true
		}
	}
	return false
}

type Field struct {
	Class    *Class
	Name     string
	Type     Type
	IsStatic bool
}

func (f *Field) String() string {
	return fmt.Sprintf("<%s: %s %s>", f.Class.Name, f.Type, f.Name)
}

type Method struct {
	Class *Class
	Name  string
	// Subsignature identifies the method within its class, e.g. "A foo(B,int)".
	Subsignature string
	ReturnType   Type
	ParamTypes   []Type
	IsStatic     bool
	IsAbstract   bool

	this       *Var
	params     []*Var
	vars       []*Var
	varsByName map[string]*Var
	stmts      []Stmt
	returnVars []*Var
}

func (m *Method) String() string {
	return fmt.Sprintf("<%s: %s>", m.Class.Name, m.Subsignature)
}

// This returns the receiver variable, or nil for static methods.
func (m *Method) This() *Var         { return m.this }
func (m *Method) Params() []*Var     { return m.params }
func (m *Method) Vars() []*Var       { return m.vars }
func (m *Method) Stmts() []Stmt      { return m.stmts }
func (m *Method) ReturnVars() []*Var { return m.returnVars }
func (m *Method) Var(name string) *Var {
	return m.varsByName[name]
}

func (m *Method) newVar(name string, typ Type) (*Var, error) {
	if _, found := m.varsByName[name]; found {
		return nil, fmt.Errorf("%w: variable %s in %v", ErrDuplicate, name, m)
	}
	v := &Var{Name: name, Type: typ, Method: m, index: len(m.vars)}
	m.vars = append(m.vars, v)
	m.varsByName[name] = v
	return v, nil
}

// MethodRef is a symbolic reference to a method from a call site. Which
// method it denotes depends on the call kind and, for instance calls, on the
// receiver object, and is decided by the cha package.
type MethodRef struct {
	Class        *Class
	Name         string
	Subsignature string
	ParamCount   int
}

func (r *MethodRef) String() string {
	return fmt.Sprintf("<%s: %s>", r.Class.Name, r.Subsignature)
}

type Var struct {
	Name   string
	Type   Type
	Method *Method
	index  int

	loadFields  []*LoadField
	storeFields []*StoreField
	loadArrays  []*LoadArray
	storeArrays []*StoreArray
	invokes     []*Invoke
}

func (v *Var) String() string { return v.Name }

// Index is the position of v among the variables of its method.
func (v *Var) Index() int { return v.index }

// QualifiedName includes the declaring method, e.g. "<A: void m()>/x".
func (v *Var) QualifiedName() string {
	return v.Method.String() + "/" + v.Name
}

// The following accessors return the statements in which v is the base
// variable of an instance field or array access, or the receiver of an
// instance call.

func (v *Var) LoadFields() []*LoadField   { return v.loadFields }
func (v *Var) StoreFields() []*StoreField { return v.storeFields }
func (v *Var) LoadArrays() []*LoadArray   { return v.loadArrays }
func (v *Var) StoreArrays() []*StoreArray { return v.storeArrays }
func (v *Var) Invokes() []*Invoke         { return v.invokes }
