package ir

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	reLabel      = regexp.MustCompile(`^([A-Za-z_$][\w$]*):\s*(.*)$`)
	reReturn     = regexp.MustCompile(`^return(?:\s+(\w+))?$`)
	reGoto       = regexp.MustCompile(`^goto\s+(\w+)$`)
	reIf         = regexp.MustCompile(`^if\s*\(?\s*(\w+)\s*(==|!=|<=|>=|<|>)\s*(\w+)\s*\)?\s*goto\s+(\w+)$`)
	reSwitch     = regexp.MustCompile(`^switch\s+(\w+)\s*\{(.*)\}$`)
	reInvoke     = regexp.MustCompile(`^(?:(\w+)\s*=\s*)?invoke(static|special|virtual|interface)\s+(?:(\w+)\.)?<([\w$.]+):\s*([^()]+\([^()]*\))>\s*\((.*)\)$`)
	reNew        = regexp.MustCompile(`^(\w+)\s*=\s*new\s+([\w$.]+)((?:\s*\[\])*)$`)
	reLiteral    = regexp.MustCompile(`^(\w+)\s*=\s*(-?\d+|true|false)$`)
	reBinary     = regexp.MustCompile(`^(\w+)\s*=\s*(\w+)\s*(>>>|<<|>>|==|!=|<=|>=|[-+*/%<>&|^])\s*(\w+)$`)
	reLoadArray  = regexp.MustCompile(`^(\w+)\s*=\s*(\w+)\s*\[\s*(\w+)\s*\]$`)
	reStoreArray = regexp.MustCompile(`^(\w+)\s*\[\s*(\w+)\s*\]\s*=\s*(\w+)$`)
	reLoadField  = regexp.MustCompile(`^(\w+)\s*=\s*([\w$.]+)\.(\w+)$`)
	reStoreField = regexp.MustCompile(`^([\w$.]+)\.(\w+)\s*=\s*(\w+)$`)
	reCopy       = regexp.MustCompile(`^(\w+)\s*=\s*(\w+)$`)
)

var invokeKinds = map[string]InvokeKind{
	"static":    InvokeStatic,
	"special":   InvokeSpecial,
	"virtual":   InvokeVirtual,
	"interface": InvokeInterface,
}

type bodyParser struct {
	prog *Program
	m    *Method

	// Position of the line being parsed, for error messages.
	line int
	text string

	labels  map[string]int
	pending []string
	// Jump targets are resolved after all labels have been seen.
	fixups []func() error
}

func (p *Program) buildBody(m *Method, mf *methodFile) error {
	if mf.Body.Kind != 0 && mf.Body.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: body of %v must be a string", ErrSyntax, m)
	}
	text := mf.Body.Value
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if m.IsAbstract {
		return fmt.Errorf("%w: abstract method %v has a body", ErrSyntax, m)
	}

	first := mf.Body.Line
	if mf.Body.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
		first++
	}

	bp := &bodyParser{prog: p, m: m, labels: make(map[string]int)}
	for i, raw := range strings.Split(text, "\n") {
		bp.line, bp.text = first+i, raw
		if err := bp.parseLine(raw); err != nil {
			return bp.wrap(err)
		}
	}

	// Labels at the end of the body mark an implicit nop.
	if len(bp.pending) > 0 {
		bp.add(&Nop{}, "")
	}
	for _, fix := range bp.fixups {
		if err := fix(); err != nil {
			return fmt.Errorf("%v: %w", m, err)
		}
	}

	for _, s := range m.stmts {
		if ret, ok := s.(*Return); ok && ret.Value != nil {
			m.returnVars = append(m.returnVars, ret.Value)
		}
	}
	return nil
}

func (bp *bodyParser) wrap(err error) error {
	return fmt.Errorf("%v line %d %q: %w", bp.m, bp.line, strings.TrimSpace(bp.text), err)
}

func (bp *bodyParser) parseLine(raw string) error {
	code, comment := raw, ""
	if i := strings.Index(raw, "//"); i >= 0 {
		code, comment = raw[:i], strings.TrimSpace(raw[i+2:])
	}
	code = strings.TrimSpace(code)

	for {
		match := reLabel.FindStringSubmatch(code)
		if match == nil {
			break
		}
		if _, dup := bp.labels[match[1]]; dup {
			return fmt.Errorf("%w: label %s", ErrDuplicate, match[1])
		}
		bp.labels[match[1]] = -1
		bp.pending = append(bp.pending, match[1])
		code = match[2]
	}

	if code == "" {
		return nil
	}

	s, err := bp.parseStmt(code)
	if err != nil {
		return err
	}
	bp.add(s, comment)
	return nil
}

func (bp *bodyParser) add(s Stmt, comment string) {
	info := stmtInfo{
		index:   len(bp.m.stmts),
		line:    bp.line,
		comment: comment,
		method:  bp.m,
	}

	switch s := s.(type) {
	case *New:
		s.stmtInfo = info
	case *Copy:
		s.stmtInfo = info
	case *AssignLiteral:
		s.stmtInfo = info
	case *Binary:
		s.stmtInfo = info
	case *LoadField:
		s.stmtInfo = info
		if s.Base != nil {
			s.Base.loadFields = append(s.Base.loadFields, s)
		}
	case *StoreField:
		s.stmtInfo = info
		if s.Base != nil {
			s.Base.storeFields = append(s.Base.storeFields, s)
		}
	case *LoadArray:
		s.stmtInfo = info
		s.Base.loadArrays = append(s.Base.loadArrays, s)
	case *StoreArray:
		s.stmtInfo = info
		s.Base.storeArrays = append(s.Base.storeArrays, s)
	case *Invoke:
		s.stmtInfo = info
		if s.Receiver != nil {
			s.Receiver.invokes = append(s.Receiver.invokes, s)
		}
	case *Return:
		s.stmtInfo = info
	case *If:
		s.stmtInfo = info
	case *Goto:
		s.stmtInfo = info
	case *Switch:
		s.stmtInfo = info
	case *Nop:
		s.stmtInfo = info
	}

	for _, l := range bp.pending {
		bp.labels[l] = info.index
	}
	bp.pending = bp.pending[:0]
	bp.m.stmts = append(bp.m.stmts, s)
}

func (bp *bodyParser) v(name string) (*Var, error) {
	if v := bp.m.varsByName[name]; v != nil {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownVar, name)
}

func (bp *bodyParser) vars(names ...string) ([]*Var, error) {
	vs := make([]*Var, len(names))
	for i, name := range names {
		var err error
		if vs[i], err = bp.v(name); err != nil {
			return nil, err
		}
	}
	return vs, nil
}

// target registers a fixup that sets *dst to the statement labelled l.
func (bp *bodyParser) target(l string, dst *Stmt) {
	line := bp.line
	bp.fixups = append(bp.fixups, func() error {
		idx, ok := bp.labels[l]
		if !ok || idx < 0 {
			return fmt.Errorf("line %d: %w: %s", line, ErrUnknownLabel, l)
		}
		*dst = bp.m.stmts[idx]
		return nil
	})
}

func (bp *bodyParser) parseStmt(code string) (Stmt, error) {
	if code == "nop" {
		return &Nop{}, nil
	}

	if match := reReturn.FindStringSubmatch(code); match != nil {
		s := &Return{}
		if match[1] != "" {
			v, err := bp.v(match[1])
			if err != nil {
				return nil, err
			}
			s.Value = v
		}
		return s, nil
	}

	if match := reGoto.FindStringSubmatch(code); match != nil {
		s := &Goto{}
		bp.target(match[1], &s.Target)
		return s, nil
	}

	if match := reIf.FindStringSubmatch(code); match != nil {
		vs, err := bp.vars(match[1], match[3])
		if err != nil {
			return nil, err
		}
		s := &If{Op: binaryOps[match[2]], X: vs[0], Y: vs[1]}
		bp.target(match[4], &s.Target)
		return s, nil
	}

	if match := reSwitch.FindStringSubmatch(code); match != nil {
		return bp.parseSwitch(match[1], match[2])
	}

	if match := reInvoke.FindStringSubmatch(code); match != nil {
		return bp.parseInvoke(match)
	}

	if match := reNew.FindStringSubmatch(code); match != nil {
		lhs, err := bp.v(match[1])
		if err != nil {
			return nil, err
		}
		typ, err := bp.prog.ParseType(match[2] + strings.ReplaceAll(match[3], " ", ""))
		if err != nil {
			return nil, err
		}
		if !IsReference(typ) {
			return nil, fmt.Errorf("%w: cannot allocate %v", ErrSyntax, typ)
		}
		return &New{LValue: lhs, Type: typ}, nil
	}

	if match := reLiteral.FindStringSubmatch(code); match != nil {
		lhs, err := bp.v(match[1])
		if err != nil {
			return nil, err
		}
		var val int32
		switch match[2] {
		case "true":
			val = 1
		case "false":
			val = 0
		default:
			n, err := strconv.ParseInt(match[2], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
			}
			val = int32(n)
		}
		return &AssignLiteral{LValue: lhs, Value: val}, nil
	}

	if match := reBinary.FindStringSubmatch(code); match != nil {
		vs, err := bp.vars(match[1], match[2], match[4])
		if err != nil {
			return nil, err
		}
		return &Binary{LValue: vs[0], Op: binaryOps[match[3]], X: vs[1], Y: vs[2]}, nil
	}

	if match := reLoadArray.FindStringSubmatch(code); match != nil {
		vs, err := bp.vars(match[1], match[2], match[3])
		if err != nil {
			return nil, err
		}
		return &LoadArray{LValue: vs[0], Base: vs[1], IndexVar: vs[2]}, nil
	}

	if match := reStoreArray.FindStringSubmatch(code); match != nil {
		vs, err := bp.vars(match[1], match[2], match[3])
		if err != nil {
			return nil, err
		}
		return &StoreArray{Base: vs[0], IndexVar: vs[1], RValue: vs[2]}, nil
	}

	if match := reLoadField.FindStringSubmatch(code); match != nil {
		lhs, err := bp.v(match[1])
		if err != nil {
			return nil, err
		}
		base, field, err := bp.fieldRef(match[2], match[3])
		if err != nil {
			return nil, err
		}
		return &LoadField{LValue: lhs, Base: base, Field: field}, nil
	}

	if match := reStoreField.FindStringSubmatch(code); match != nil {
		rhs, err := bp.v(match[3])
		if err != nil {
			return nil, err
		}
		base, field, err := bp.fieldRef(match[1], match[2])
		if err != nil {
			return nil, err
		}
		return &StoreField{Base: base, Field: field, RValue: rhs}, nil
	}

	if match := reCopy.FindStringSubmatch(code); match != nil {
		vs, err := bp.vars(match[1], match[2])
		if err != nil {
			return nil, err
		}
		return &Copy{LValue: vs[0], RValue: vs[1]}, nil
	}

	return nil, fmt.Errorf("%w: unrecognized statement", ErrSyntax)
}

// fieldRef resolves "x.f" to an instance field of x's class, and "C.f" to a
// static field of class C. Local variables shadow class names.
func (bp *bodyParser) fieldRef(qual, name string) (*Var, *Field, error) {
	if base := bp.m.varsByName[qual]; base != nil {
		cls := ClassOf(base.Type)
		if cls == nil {
			return nil, nil, fmt.Errorf("%w: field access on %s of type %v", ErrSyntax, base, base.Type)
		}
		f := cls.LookupField(name)
		if f == nil {
			return nil, nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, cls, name)
		}
		if f.IsStatic {
			return nil, nil, fmt.Errorf("%w: static field %v accessed through %s", ErrSyntax, f, base)
		}
		return base, f, nil
	}

	cls := bp.prog.byName[qual]
	if cls == nil {
		return nil, nil, fmt.Errorf("%w: %s is neither a variable nor a class", ErrUnknownVar, qual)
	}
	f := cls.LookupField(name)
	if f == nil {
		return nil, nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, cls, name)
	}
	if !f.IsStatic {
		return nil, nil, fmt.Errorf("%w: instance field %v accessed statically", ErrSyntax, f)
	}
	return nil, f, nil
}

func (bp *bodyParser) parseSwitch(name, body string) (Stmt, error) {
	v, err := bp.v(name)
	if err != nil {
		return nil, err
	}

	s := &Switch{Var: v}
	hasDefault := false
	for _, arm := range strings.Split(body, ",") {
		if strings.TrimSpace(arm) == "" {
			continue
		}
		key, label, found := strings.Cut(arm, ":")
		key, label = strings.TrimSpace(key), strings.TrimSpace(label)
		if !found || label == "" {
			return nil, fmt.Errorf("%w: switch arm %q", ErrSyntax, arm)
		}

		if key == "default" {
			if hasDefault {
				return nil, fmt.Errorf("%w: switch has two defaults", ErrSyntax)
			}
			hasDefault = true
			bp.target(label, &s.Default)
			continue
		}

		n, err := strconv.ParseInt(key, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: switch case %q", ErrSyntax, key)
		}
		s.Cases = append(s.Cases, SwitchCase{Value: int32(n)})
	}
	if !hasDefault {
		return nil, fmt.Errorf("%w: switch without default", ErrSyntax)
	}

	// Targets of cases are fixed up in place, so register them only once the
	// slice no longer grows.
	i := 0
	for _, arm := range strings.Split(body, ",") {
		key, label, _ := strings.Cut(arm, ":")
		if key = strings.TrimSpace(key); key == "" || key == "default" {
			continue
		}
		bp.target(strings.TrimSpace(label), &s.Cases[i].Target)
		i++
	}
	return s, nil
}

func (bp *bodyParser) parseInvoke(match []string) (Stmt, error) {
	s := &Invoke{Kind: invokeKinds[match[2]]}

	if match[1] != "" {
		lhs, err := bp.v(match[1])
		if err != nil {
			return nil, err
		}
		s.LValue = lhs
	}

	switch {
	case s.Kind == InvokeStatic && match[3] != "":
		return nil, fmt.Errorf("%w: static call with receiver", ErrSyntax)
	case s.Kind != InvokeStatic && match[3] == "":
		return nil, fmt.Errorf("%w: %v without receiver", ErrSyntax, s.Kind)
	case match[3] != "":
		recv, err := bp.v(match[3])
		if err != nil {
			return nil, err
		}
		s.Receiver = recv
	}

	cls := bp.prog.byName[match[4]]
	if cls == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, match[4])
	}
	name, subsig, nparams, err := bp.prog.parseSubsignature(match[5])
	if err != nil {
		return nil, err
	}
	s.Ref = &MethodRef{Class: cls, Name: name, Subsignature: subsig, ParamCount: nparams}

	if args := strings.TrimSpace(match[6]); args != "" {
		names := strings.Split(args, ",")
		for i := range names {
			names[i] = strings.TrimSpace(names[i])
		}
		if s.Args, err = bp.vars(names...); err != nil {
			return nil, err
		}
	}
	if len(s.Args) != nparams {
		return nil, fmt.Errorf("%w: %v expects %d arguments, got %d", ErrSyntax, s.Ref, nparams, len(s.Args))
	}
	return s, nil
}
