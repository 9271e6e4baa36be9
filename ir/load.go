package ir

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// The on-disk form of a program:
//
//	main: "<Main: void main()>"
//	classes:
//	  - name: B
//	    extends: A
//	    implements: [I]
//	    fields: ["A next", "static B instance"]
//	    methods:
//	      - decl: "A m(A a, int n)"
//	        locals: ["A x", "int[] xs"]
//	        body: |
//	          x = new B
//	          return x
type programFile struct {
	Main    string      `yaml:"main"`
	Classes []classFile `yaml:"classes"`
}

type classFile struct {
	Name       string       `yaml:"name"`
	Extends    string       `yaml:"extends"`
	Implements []string     `yaml:"implements"`
	Interface  bool         `yaml:"interface"`
	Abstract   bool         `yaml:"abstract"`
	Fields     []string     `yaml:"fields"`
	Methods    []methodFile `yaml:"methods"`
}

type methodFile struct {
	Decl   string   `yaml:"decl"`
	Locals []string `yaml:"locals"`
	// Kept as a node to recover line numbers of statements.
	Body yaml.Node `yaml:"body"`
}

// Load reads a YAML encoded program, resolves all references and builds the
// class hierarchy.
func Load(r io.Reader) (*Program, error) {
	var pf programFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil {
		return nil, fmt.Errorf("decoding program: %w", err)
	}
	return build(&pf)
}

func LoadFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	prog, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

type pendingBody struct {
	m  *Method
	mf *methodFile
}

func build(pf *programFile) (*Program, error) {
	p := newProgram()

	for _, cf := range pf.Classes {
		if cf.Name == "" {
			return nil, fmt.Errorf("%w: class without a name", ErrSyntax)
		}
		if p.byName[cf.Name] != nil {
			return nil, fmt.Errorf("%w: class %s", ErrDuplicate, cf.Name)
		}
		c := newClass(cf.Name)
		c.IsInterface = cf.Interface
		c.IsAbstract = cf.Abstract || cf.Interface
		p.classes = append(p.classes, c)
		p.byName[c.Name] = c
	}

	for i := range pf.Classes {
		cf, c := &pf.Classes[i], p.classes[i]
		if cf.Extends != "" {
			if c.Super = p.byName[cf.Extends]; c.Super == nil {
				return nil, fmt.Errorf("%w: %s extends %q", ErrUnknownClass, c, cf.Extends)
			}
		}
		for _, name := range cf.Implements {
			itf := p.byName[name]
			if itf == nil {
				return nil, fmt.Errorf("%w: %s implements %q", ErrUnknownClass, c, name)
			}
			c.Interfaces = append(c.Interfaces, itf)
		}
		for _, decl := range cf.Fields {
			if err := p.declareField(c, decl); err != nil {
				return nil, err
			}
		}
	}

	var bodies []pendingBody
	for i := range pf.Classes {
		cf, c := &pf.Classes[i], p.classes[i]
		for j := range cf.Methods {
			mf := &cf.Methods[j]
			m, err := p.declareMethod(c, mf)
			if err != nil {
				return nil, err
			}
			bodies = append(bodies, pendingBody{m, mf})
		}
	}

	if err := p.buildHierarchy(); err != nil {
		return nil, err
	}

	for _, b := range bodies {
		if err := p.buildBody(b.m, b.mf); err != nil {
			return nil, err
		}
	}

	if pf.Main != "" {
		if p.Main = p.Method(pf.Main); p.Main == nil {
			return nil, fmt.Errorf("%w: entry %s", ErrUnknownMethod, pf.Main)
		}
	} else {
	FIND:
		for _, c := range p.classes {
			for _, m := range c.methods {
				if m.IsStatic && m.Name == "main" {
					p.Main = m
					break FIND
				}
			}
		}
	}

	return p, nil
}

func (p *Program) declareField(c *Class, decl string) error {
	words := strings.Fields(decl)
	static := len(words) == 3 && words[0] == "static"
	if static {
		words = words[1:]
	}
	if len(words) != 2 {
		return fmt.Errorf("%w: field declaration %q in %s", ErrSyntax, decl, c)
	}

	typ, err := p.ParseType(words[0])
	if err != nil {
		return fmt.Errorf("field %s.%s: %w", c, words[1], err)
	}
	if c.fieldsByName[words[1]] != nil {
		return fmt.Errorf("%w: field %s.%s", ErrDuplicate, c, words[1])
	}

	f := &Field{Class: c, Name: words[1], Type: typ, IsStatic: static}
	c.fields = append(c.fields, f)
	c.fieldsByName[f.Name] = f
	return nil
}

var (
	reDecl   = regexp.MustCompile(`^((?:(?:static|abstract)\s+)*)(\S+)\s+([\w$<>]+)\s*\((.*)\)$`)
	reSubsig = regexp.MustCompile(`^(\S+)\s+([\w$<>]+)\s*\((.*)\)$`)
)

func (p *Program) declareMethod(c *Class, mf *methodFile) (*Method, error) {
	match := reDecl.FindStringSubmatch(strings.TrimSpace(mf.Decl))
	if match == nil {
		return nil, fmt.Errorf("%w: method declaration %q in %s", ErrSyntax, mf.Decl, c)
	}

	mods := strings.Fields(match[1])
	m := &Method{
		Class:      c,
		Name:       match[3],
		varsByName: make(map[string]*Var),
	}
	for _, mod := range mods {
		switch mod {
		case "static":
			m.IsStatic = true
		case "abstract":
			m.IsAbstract = true
		}
	}
	if c.IsInterface && !m.IsStatic && strings.TrimSpace(mf.Body.Value) == "" {
		m.IsAbstract = true
	}

	ret, err := p.ParseType(match[2])
	if err != nil {
		return nil, fmt.Errorf("return type of %s.%s: %w", c, m.Name, err)
	}
	m.ReturnType = ret

	if !m.IsStatic {
		if m.this, err = m.newVar("this", c.Type()); err != nil {
			return nil, err
		}
	}

	var ptypes []string
	if params := strings.TrimSpace(match[4]); params != "" {
		for _, param := range strings.Split(params, ",") {
			words := strings.Fields(param)
			if len(words) != 2 {
				return nil, fmt.Errorf("%w: parameter %q of %s.%s", ErrSyntax, param, c, m.Name)
			}
			typ, err := p.ParseType(words[0])
			if err != nil {
				return nil, fmt.Errorf("parameter %s of %s.%s: %w", words[1], c, m.Name, err)
			}
			v, err := m.newVar(words[1], typ)
			if err != nil {
				return nil, err
			}
			m.params = append(m.params, v)
			m.ParamTypes = append(m.ParamTypes, typ)
			ptypes = append(ptypes, typ.String())
		}
	}
	m.Subsignature = fmt.Sprintf("%s %s(%s)", ret, m.Name, strings.Join(ptypes, ","))

	if c.methodsBySubsig[m.Subsignature] != nil {
		return nil, fmt.Errorf("%w: method %v", ErrDuplicate, m)
	}

	for _, local := range mf.Locals {
		words := strings.Fields(local)
		if len(words) != 2 {
			return nil, fmt.Errorf("%w: local %q in %v", ErrSyntax, local, m)
		}
		typ, err := p.ParseType(words[0])
		if err != nil {
			return nil, fmt.Errorf("local %s in %v: %w", words[1], m, err)
		}
		if _, err := m.newVar(words[1], typ); err != nil {
			return nil, err
		}
	}

	c.methods = append(c.methods, m)
	c.methodsBySubsig[m.Subsignature] = m
	return m, nil
}

// parseSubsignature normalizes a subsignature such as "A  m(B, int)" to the
// form used as method key, "A m(B,int)".
func (p *Program) parseSubsignature(s string) (name, subsig string, nparams int, err error) {
	match := reSubsig.FindStringSubmatch(strings.TrimSpace(s))
	if match == nil {
		return "", "", 0, fmt.Errorf("%w: subsignature %q", ErrSyntax, s)
	}

	ret, err := p.ParseType(match[1])
	if err != nil {
		return "", "", 0, err
	}

	var ptypes []string
	if params := strings.TrimSpace(match[3]); params != "" {
		for _, param := range strings.Split(params, ",") {
			typ, err := p.ParseType(param)
			if err != nil {
				return "", "", 0, err
			}
			ptypes = append(ptypes, typ.String())
		}
	}

	return match[2], fmt.Sprintf("%s %s(%s)", ret, match[2], strings.Join(ptypes, ",")), len(ptypes), nil
}

func splitSignature(sig string) (class, subsig string, err error) {
	sig = strings.TrimSpace(sig)
	if !strings.HasPrefix(sig, "<") || !strings.HasSuffix(sig, ">") {
		return "", "", fmt.Errorf("%w: signature %q", ErrSyntax, sig)
	}
	class, subsig, found := strings.Cut(sig[1:len(sig)-1], ":")
	if !found {
		return "", "", fmt.Errorf("%w: signature %q", ErrSyntax, sig)
	}
	return strings.TrimSpace(class), strings.TrimSpace(subsig), nil
}
