package ir

import (
	"fmt"
	"strings"
)

// Type is the static type of a variable, field or abstract object.
type Type interface {
	fmt.Stringer
	typeTag()
}

type PrimitiveType string

const (
	Int     PrimitiveType = "int"
	Boolean PrimitiveType = "boolean"
	Byte    PrimitiveType = "byte"
	Short   PrimitiveType = "short"
	Char    PrimitiveType = "char"
	Long    PrimitiveType = "long"
	Float   PrimitiveType = "float"
	Double  PrimitiveType = "double"
	Void    PrimitiveType = "void"
)

var primitives = map[string]PrimitiveType{
	"int": Int, "boolean": Boolean, "byte": Byte, "short": Short,
	"char": Char, "long": Long, "float": Float, "double": Double, "void": Void,
}

func (PrimitiveType) typeTag()         {}
func (p PrimitiveType) String() string { return string(p) }

// ClassType is the type of references to instances of a class. There is
// exactly one ClassType per Class.
type ClassType struct{ Class *Class }

func (*ClassType) typeTag()         {}
func (t *ClassType) String() string { return t.Class.Name }

// ArrayType values are interned by the Program, so two array types with the
// same element type are the same pointer.
type ArrayType struct{ Elem Type }

func (*ArrayType) typeTag()         {}
func (t *ArrayType) String() string { return t.Elem.String() + "[]" }

// IsReference reports whether values of type t are references to heap objects.
func IsReference(t Type) bool {
	switch t.(type) {
	case *ClassType, *ArrayType:
		return true
	default:
		return false
	}
}

// ClassOf returns the class of a class type, or nil for other types.
func ClassOf(t Type) *Class {
	if ct, ok := t.(*ClassType); ok {
		return ct.Class
	}
	return nil
}

func (p *Program) arrayOf(elem Type) *ArrayType {
	key := elem.String()
	if at, ok := p.arrayTypes[key]; ok {
		return at
	}
	at := &ArrayType{Elem: elem}
	p.arrayTypes[key] = at
	return at
}

// ParseType resolves a type name such as "int", "A" or "A[][]".
func (p *Program) ParseType(name string) (Type, error) {
	name = strings.TrimSpace(name)
	dims := 0
	for strings.HasSuffix(name, "[]") {
		dims++
		name = strings.TrimSpace(strings.TrimSuffix(name, "[]"))
	}

	var t Type
	if prim, ok := primitives[name]; ok {
		t = prim
	} else if c := p.byName[name]; c != nil {
		t = c.Type()
	} else {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, name)
	}

	for i := 0; i < dims; i++ {
		if t == Void {
			return nil, fmt.Errorf("%w: array of void", ErrSyntax)
		}
		t = p.arrayOf(t)
	}
	return t, nil
}
