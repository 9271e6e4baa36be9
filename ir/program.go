package ir

import (
	"errors"
	"fmt"
)

var (
	ErrSyntax        = errors.New("syntax error")
	ErrUnknownClass  = errors.New("unknown class")
	ErrUnknownVar    = errors.New("unknown variable")
	ErrUnknownField  = errors.New("unknown field")
	ErrUnknownMethod = errors.New("unknown method")
	ErrUnknownLabel  = errors.New("unknown label")
	ErrDuplicate     = errors.New("duplicate declaration")
	ErrHierarchy     = errors.New("malformed class hierarchy")
)

// Program is a closed world of classes. Besides holding the IR it answers
// class hierarchy queries.
type Program struct {
	// Main is the designated entry method, if any.
	Main *Method

	classes []*Class
	byName  map[string]*Class

	subclasses    map[*Class][]*Class
	subinterfaces map[*Class][]*Class
	implementors  map[*Class][]*Class

	arrayTypes map[string]*ArrayType
}

func newProgram() *Program {
	return &Program{
		byName:        make(map[string]*Class),
		subclasses:    make(map[*Class][]*Class),
		subinterfaces: make(map[*Class][]*Class),
		implementors:  make(map[*Class][]*Class),
		arrayTypes:    make(map[string]*ArrayType),
	}
}

// Classes returns all classes in declaration order.
func (p *Program) Classes() []*Class { return p.classes }

func (p *Program) Class(name string) *Class { return p.byName[name] }

func (p *Program) DirectSubclassesOf(c *Class) []*Class    { return p.subclasses[c] }
func (p *Program) DirectSubinterfacesOf(c *Class) []*Class { return p.subinterfaces[c] }
func (p *Program) DirectImplementorsOf(c *Class) []*Class  { return p.implementors[c] }

// Methods returns every method of every class.
func (p *Program) Methods() []*Method {
	var ms []*Method
	for _, c := range p.classes {
		ms = append(ms, c.methods...)
	}
	return ms
}

// Method looks a method up by its signature, e.g. "<Main: void main()>".
func (p *Program) Method(signature string) *Method {
	cls, subsig, err := splitSignature(signature)
	if err != nil {
		return nil
	}
	c := p.byName[cls]
	if c == nil {
		return nil
	}
	if _, norm, _, err := p.parseSubsignature(subsig); err == nil {
		subsig = norm
	}
	return c.methodsBySubsig[subsig]
}

// ArrayOf returns the array type with the given element type.
func (p *Program) ArrayOf(elem Type) *ArrayType { return p.arrayOf(elem) }

func (p *Program) buildHierarchy() error {
	for _, c := range p.classes {
		if c.Super != nil {
			if c.IsInterface {
				return fmt.Errorf("%w: interface %s extends class %s", ErrHierarchy, c, c.Super)
			}
			if c.Super.IsInterface {
				return fmt.Errorf("%w: class %s extends interface %s", ErrHierarchy, c, c.Super)
			}
			p.subclasses[c.Super] = append(p.subclasses[c.Super], c)
		}

		for _, i := range c.Interfaces {
			if !i.IsInterface {
				return fmt.Errorf("%w: %s implements non-interface %s", ErrHierarchy, c, i)
			}
			if c.IsInterface {
				p.subinterfaces[i] = append(p.subinterfaces[i], c)
			} else {
				p.implementors[i] = append(p.implementors[i], c)
			}
		}
	}

	// Reject cycles in the superclass chain; dispatch would not terminate.
	for _, c := range p.classes {
		seen := map[*Class]bool{}
		for k := c; k != nil; k = k.Super {
			if seen[k] {
				return fmt.Errorf("%w: cyclic inheritance involving %s", ErrHierarchy, c)
			}
			seen[k] = true
		}
	}
	return nil
}
