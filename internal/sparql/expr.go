package sparql

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/oxhq/stottr/internal/column"
	"github.com/oxhq/stottr/internal/rdf"
)

// Expr is a SPARQL scalar expression: given the current solution mappings it
// produces one column of results, one value per row, with nil standing for
// an unbound variable or a per-row evaluation error (SPARQL's "error"
// propagates as an absent result, not a failed query).
type Expr interface {
	Eval(ctx Context, sm SolutionMappings) (*column.Column, error)
}

// VarRef reads a bound variable's column. A variable the solution mappings
// never bound evaluates to an all-nil column rather than an error, so BOUND()
// and COALESCE() can observe it.
type VarRef struct{ Name string }

func (e VarRef) Eval(ctx Context, sm SolutionMappings) (*column.Column, error) {
	if c := sm.Batch.Column(e.Name); c != nil {
		return c, nil
	}
	vals := make([]any, sm.Batch.Height())
	return &column.Column{Name: ctx.String(), Type: rdf.TypeUnknown, Values: vals}, nil
}

// Lit is a constant value broadcast across every row.
type Lit struct {
	Value any
	Type  rdf.NodeType
}

func (e Lit) Eval(ctx Context, sm SolutionMappings) (*column.Column, error) {
	vals := make([]any, sm.Batch.Height())
	for i := range vals {
		vals[i] = e.Value
	}
	return &column.Column{Name: ctx.String(), Type: e.Type, Values: vals}, nil
}

func evalBool(ctx Context, sm SolutionMappings, e Expr) ([]any, error) {
	c, err := e.Eval(ctx, sm)
	if err != nil {
		return nil, err
	}
	return c.Values, nil
}

// And is three-valued logical conjunction: a nil operand makes the row's
// result nil unless the other operand is a concrete false (false wins).
type And struct{ Left, Right Expr }

func (e And) Eval(ctx Context, sm SolutionMappings) (*column.Column, error) {
	l, err := evalBool(ctx.Push("and/l"), sm, e.Left)
	if err != nil {
		return nil, err
	}
	r, err := evalBool(ctx.Push("and/r"), sm, e.Right)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(l))
	for i := range out {
		lb, lok := l[i].(bool)
		rb, rok := r[i].(bool)
		switch {
		case lok && !lb || rok && !rb:
			out[i] = false
		case lok && rok:
			out[i] = lb && rb
		default:
			out[i] = nil
		}
	}
	return &column.Column{Name: ctx.String(), Type: rdf.Literal(rdf.XSDBoolean), Values: out}, nil
}

// Or is three-valued logical disjunction: true wins over an unbound operand.
type Or struct{ Left, Right Expr }

func (e Or) Eval(ctx Context, sm SolutionMappings) (*column.Column, error) {
	l, err := evalBool(ctx.Push("or/l"), sm, e.Left)
	if err != nil {
		return nil, err
	}
	r, err := evalBool(ctx.Push("or/r"), sm, e.Right)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(l))
	for i := range out {
		lb, lok := l[i].(bool)
		rb, rok := r[i].(bool)
		switch {
		case lok && lb || rok && rb:
			out[i] = true
		case lok && rok:
			out[i] = lb || rb
		default:
			out[i] = nil
		}
	}
	return &column.Column{Name: ctx.String(), Type: rdf.Literal(rdf.XSDBoolean), Values: out}, nil
}

// Not negates a boolean column; nil stays nil.
type Not struct{ Inner Expr }

func (e Not) Eval(ctx Context, sm SolutionMappings) (*column.Column, error) {
	in, err := evalBool(ctx.Push("not"), sm, e.Inner)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(in))
	for i, v := range in {
		if b, ok := v.(bool); ok {
			out[i] = !b
		}
	}
	return &column.Column{Name: ctx.String(), Type: rdf.Literal(rdf.XSDBoolean), Values: out}, nil
}

// CmpOp selects a comparison operator.
type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

// Cmp compares two expressions. Equality/inequality fall back to lexical
// string comparison when both sides aren't numeric; ordering operators
// require both sides to parse as numbers and produce nil otherwise.
type Cmp struct {
	Left, Right Expr
	Op          CmpOp
}

func (e Cmp) Eval(ctx Context, sm SolutionMappings) (*column.Column, error) {
	l, err := e.Left.Eval(ctx.Push("cmp/l"), sm)
	if err != nil {
		return nil, err
	}
	r, err := e.Right.Eval(ctx.Push("cmp/r"), sm)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(l.Values))
	for i := range out {
		out[i] = compareOne(l.Values[i], r.Values[i], e.Op)
	}
	return &column.Column{Name: ctx.String(), Type: rdf.Literal(rdf.XSDBoolean), Values: out}, nil
}

func compareOne(lv, rv any, op CmpOp) any {
	if lv == nil || rv == nil {
		return nil
	}
	ln, lok := toFloat(lv)
	rn, rok := toFloat(rv)
	if lok && rok {
		switch op {
		case CmpEq:
			return ln == rn
		case CmpNe:
			return ln != rn
		case CmpLt:
			return ln < rn
		case CmpLe:
			return ln <= rn
		case CmpGt:
			return ln > rn
		case CmpGe:
			return ln >= rn
		}
	}
	switch op {
	case CmpEq:
		return fmt.Sprint(lv) == fmt.Sprint(rv)
	case CmpNe:
		return fmt.Sprint(lv) != fmt.Sprint(rv)
	default:
		// Ordering on non-numeric values isn't supported; the row errors out.
		return nil
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ArithOp selects an arithmetic operator.
type ArithOp int

const (
	ArithAdd ArithOp = iota
	ArithSub
	ArithMul
	ArithDiv
)

// Arith evaluates a binary numeric expression; either side failing to parse
// as a number, or division by zero, produces nil for that row.
type Arith struct {
	Left, Right Expr
	Op          ArithOp
}

func (e Arith) Eval(ctx Context, sm SolutionMappings) (*column.Column, error) {
	l, err := e.Left.Eval(ctx.Push("arith/l"), sm)
	if err != nil {
		return nil, err
	}
	r, err := e.Right.Eval(ctx.Push("arith/r"), sm)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(l.Values))
	for i := range out {
		ln, lok := toFloat(l.Values[i])
		rn, rok := toFloat(r.Values[i])
		if !lok || !rok {
			continue
		}
		switch e.Op {
		case ArithAdd:
			out[i] = ln + rn
		case ArithSub:
			out[i] = ln - rn
		case ArithMul:
			out[i] = ln * rn
		case ArithDiv:
			if rn != 0 {
				out[i] = ln / rn
			}
		}
	}
	return &column.Column{Name: ctx.String(), Type: rdf.Literal(rdf.XSDDouble), Values: out}, nil
}

// If is SPARQL's IF(cond, then, else).
type If struct{ Cond, Then, Else Expr }

func (e If) Eval(ctx Context, sm SolutionMappings) (*column.Column, error) {
	cond, err := evalBool(ctx.Push("if/cond"), sm, e.Cond)
	if err != nil {
		return nil, err
	}
	then, err := e.Then.Eval(ctx.Push("if/then"), sm)
	if err != nil {
		return nil, err
	}
	els, err := e.Else.Eval(ctx.Push("if/else"), sm)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(cond))
	typ := then.Type
	for i, c := range cond {
		if b, ok := c.(bool); ok && b {
			out[i] = then.Values[i]
		} else {
			out[i] = els.Values[i]
			typ = els.Type
		}
	}
	return &column.Column{Name: ctx.String(), Type: typ, Values: out}, nil
}

// Coalesce returns the first operand bound (non-nil) for each row.
type Coalesce struct{ Exprs []Expr }

func (e Coalesce) Eval(ctx Context, sm SolutionMappings) (*column.Column, error) {
	cols := make([]*column.Column, len(e.Exprs))
	for i, sub := range e.Exprs {
		c, err := sub.Eval(ctx.PushIndexed("coalesce", i), sm)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	height := sm.Batch.Height()
	out := make([]any, height)
	var typ rdf.NodeType
	for row := 0; row < height; row++ {
		for _, c := range cols {
			if c.Values[row] != nil {
				out[row] = c.Values[row]
				typ = c.Type
				break
			}
		}
	}
	return &column.Column{Name: ctx.String(), Type: typ, Values: out}, nil
}

// Bound implements BOUND(?var).
type Bound struct{ Variable string }

func (e Bound) Eval(ctx Context, sm SolutionMappings) (*column.Column, error) {
	c := sm.Batch.Column(e.Variable)
	height := sm.Batch.Height()
	out := make([]any, height)
	for i := range out {
		out[i] = c != nil && c.Values[i] != nil
	}
	return &column.Column{Name: ctx.String(), Type: rdf.Literal(rdf.XSDBoolean), Values: out}, nil
}

// Str implements STR(expr): the plain lexical form of any term, stripped of
// type and language tag.
type Str struct{ Inner Expr }

func (e Str) Eval(ctx Context, sm SolutionMappings) (*column.Column, error) {
	c, err := e.Inner.Eval(ctx.Push("str"), sm)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(c.Values))
	for i, v := range c.Values {
		if v != nil {
			out[i] = fmt.Sprint(v)
		}
	}
	return &column.Column{Name: ctx.String(), Type: rdf.Literal(rdf.XSDString), Values: out}, nil
}

// Lang implements LANG(?var): the language tag bound alongside a variable,
// or the empty string when the variable carries none.
type Lang struct{ Variable string }

func (e Lang) Eval(ctx Context, sm SolutionMappings) (*column.Column, error) {
	height := sm.Batch.Height()
	out := make([]any, height)
	lc := sm.LangTags[e.Variable]
	for i := range out {
		s := ""
		if lc != nil {
			if v, ok := lc.Values[i].(string); ok {
				s = v
			}
		}
		out[i] = s
	}
	return &column.Column{Name: ctx.String(), Type: rdf.Literal(rdf.XSDString), Values: out}, nil
}

// Datatype implements DATATYPE(?var): the variable's declared RDF datatype
// IRI, read from the solution mappings' static type map rather than
// inspected value-by-value.
type Datatype struct{ Variable string }

func (e Datatype) Eval(ctx Context, sm SolutionMappings) (*column.Column, error) {
	height := sm.Batch.Height()
	out := make([]any, height)
	nt, ok := sm.Types[e.Variable]
	dt := rdf.XSDAnyURI
	if ok && nt.Kind == rdf.KindLiteral {
		dt = nt.Datatype
		if dt == "" {
			dt = rdf.XSDString
		}
	}
	c := sm.Batch.Column(e.Variable)
	for i := range out {
		if c == nil || c.Values[i] == nil {
			continue
		}
		out[i] = dt
	}
	return &column.Column{Name: ctx.String(), Type: rdf.TypeIRI, Values: out}, nil
}

// Regex implements REGEX(expr, pattern[, flags]). A "i" in flags enables
// case-insensitive matching.
type Regex struct {
	Inner   Expr
	Pattern string
	Flags   string
}

func (e Regex) Eval(ctx Context, sm SolutionMappings) (*column.Column, error) {
	c, err := e.Inner.Eval(ctx.Push("regex"), sm)
	if err != nil {
		return nil, err
	}
	pattern := e.Pattern
	for _, f := range e.Flags {
		if f == 'i' {
			pattern = "(?i)" + pattern
		}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("sparql: invalid REGEX pattern %q: %w", e.Pattern, err)
	}
	out := make([]any, len(c.Values))
	for i, v := range c.Values {
		if v == nil {
			continue
		}
		out[i] = re.MatchString(fmt.Sprint(v))
	}
	return &column.Column{Name: ctx.String(), Type: rdf.Literal(rdf.XSDBoolean), Values: out}, nil
}
