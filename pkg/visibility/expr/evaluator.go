// Package expr implements a small rule language for visibility.Evaluator.
//
//	enabled
//	!archived
//	role == "admin" || extras.beta
//	(seats >= 10 && plan != 'free')
//
// Identifiers are dotted paths into Context.Values; the "extras." prefix
// reads Context.Extras instead. Literals are strings, numbers, true, false
// and null.
package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/goliatone/go-dorf/pkg/visibility"
)

// ErrSyntax wraps every parse failure.
var ErrSyntax = errors.New("visibility/expr: syntax error")

// Evaluator parses and evaluates rules. Parsed rules are not cached.
type Evaluator struct{}

var _ visibility.Evaluator = (*Evaluator)(nil)

func New() *Evaluator { return &Evaluator{} }

// Eval returns true for empty rules.
func (e *Evaluator) Eval(_ string, rule string, ctx visibility.Context) (bool, error) {
	if strings.TrimSpace(rule) == "" {
		return true, nil
	}
	node, err := Parse(rule)
	if err != nil {
		return false, err
	}
	return truthy(node.eval(ctx)), nil
}

// Parse compiles rule into an evaluable node. It is exported for callers
// that want to validate rules up front.
func Parse(rule string) (Node, error) {
	tokens, err := lex(rule)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	node, err := p.or()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, p.peek().text)
	}
	return node, nil
}

// Node is a parsed rule.
type Node interface {
	eval(ctx visibility.Context) any
}

type kind int

const (
	kindIdent kind = iota
	kindString
	kindNumber
	kindOp
	kindLParen
	kindRParen
)

type token struct {
	kind kind
	text string
}

var operators = []string{"&&", "||", "==", "!=", "<=", ">=", "<", ">", "!"}

func lex(input string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(input); {
		ch := rune(input[i])
		switch {
		case unicode.IsSpace(ch):
			i++
		case ch == '(':
			tokens = append(tokens, token{kind: kindLParen, text: "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: kindRParen, text: ")"})
			i++
		case ch == '"' || ch == '\'':
			end := strings.IndexByte(input[i+1:], input[i])
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated string at %d", ErrSyntax, i)
			}
			tokens = append(tokens, token{kind: kindString, text: input[i+1 : i+1+end]})
			i += end + 2
		case ch == '-' || unicode.IsDigit(ch):
			j := i + 1
			for j < len(input) && (unicode.IsDigit(rune(input[j])) || input[j] == '.') {
				j++
			}
			tokens = append(tokens, token{kind: kindNumber, text: input[i:j]})
			i = j
		case ch == '_' || unicode.IsLetter(ch):
			j := i + 1
			for j < len(input) && (input[j] == '_' || input[j] == '.' || unicode.IsLetter(rune(input[j])) || unicode.IsDigit(rune(input[j]))) {
				j++
			}
			tokens = append(tokens, token{kind: kindIdent, text: input[i:j]})
			i = j
		default:
			matched := false
			for _, op := range operators {
				if strings.HasPrefix(input[i:], op) {
					tokens = append(tokens, token{kind: kindOp, text: op})
					i += len(op)
					matched = true
					break
				}
			}
			if !matched {
				return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, input[i], i)
			}
		}
	}
	return tokens, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) done() bool { return p.pos >= len(p.tokens) }

func (p *parser) peek() token {
	if p.done() {
		return token{kind: -1, text: "end of rule"}
	}
	return p.tokens[p.pos]
}

func (p *parser) accept(k kind, text string) bool {
	if p.done() {
		return false
	}
	tok := p.tokens[p.pos]
	if tok.kind != k || (text != "" && tok.text != text) {
		return false
	}
	p.pos++
	return true
}

func (p *parser) or() (Node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.accept(kindOp, "||") {
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = logical{or: true, left: left, right: right}
	}
	return left, nil
}

func (p *parser) and() (Node, error) {
	left, err := p.comparison()
	if err != nil {
		return nil, err
	}
	for p.accept(kindOp, "&&") {
		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		left = logical{left: left, right: right}
	}
	return left, nil
}

func (p *parser) comparison() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	tok := p.peek()
	if tok.kind != kindOp || tok.text == "&&" || tok.text == "||" || tok.text == "!" {
		return left, nil
	}
	p.pos++
	right, err := p.unary()
	if err != nil {
		return nil, err
	}
	return compare{op: tok.text, left: left, right: right}, nil
}

func (p *parser) unary() (Node, error) {
	if p.accept(kindOp, "!") {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return not{inner: inner}, nil
	}
	return p.primary()
}

func (p *parser) primary() (Node, error) {
	tok := p.peek()
	switch {
	case p.accept(kindLParen, ""):
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if !p.accept(kindRParen, "") {
			return nil, fmt.Errorf("%w: missing ')'", ErrSyntax)
		}
		return inner, nil
	case p.accept(kindString, ""):
		return literal{value: tok.text}, nil
	case p.accept(kindNumber, ""):
		n, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %q", ErrSyntax, tok.text)
		}
		return literal{value: n}, nil
	case p.accept(kindIdent, ""):
		switch tok.text {
		case "true":
			return literal{value: true}, nil
		case "false":
			return literal{value: false}, nil
		case "null":
			return literal{value: nil}, nil
		}
		return path{key: tok.text}, nil
	}
	return nil, fmt.Errorf("%w: unexpected %s", ErrSyntax, tok.text)
}

type literal struct{ value any }

func (n literal) eval(visibility.Context) any { return n.value }

type path struct{ key string }

func (n path) eval(ctx visibility.Context) any {
	if rest, ok := strings.CutPrefix(n.key, "extras."); ok {
		return lookup(ctx.Extras, rest)
	}
	return lookup(ctx.Values, n.key)
}

type not struct{ inner Node }

func (n not) eval(ctx visibility.Context) any { return !truthy(n.inner.eval(ctx)) }

type logical struct {
	or          bool
	left, right Node
}

func (n logical) eval(ctx visibility.Context) any {
	left := truthy(n.left.eval(ctx))
	if n.or {
		return left || truthy(n.right.eval(ctx))
	}
	return left && truthy(n.right.eval(ctx))
}

type compare struct {
	op          string
	left, right Node
}

func (n compare) eval(ctx visibility.Context) any {
	left, right := n.left.eval(ctx), n.right.eval(ctx)
	switch n.op {
	case "==":
		return equal(left, right)
	case "!=":
		return !equal(left, right)
	}
	a, okA := number(left)
	b, okB := number(right)
	if !okA || !okB {
		return false
	}
	switch n.op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	default:
		return a >= b
	}
}

// equal coerces the left side to the type of a literal on the right (and
// vice versa) so "true" == true and "3" == 3 hold.
func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch bv := b.(type) {
	case bool:
		av, ok := boolean(a)
		return ok && av == bv
	case float64:
		av, ok := number(a)
		return ok && av == bv
	}
	switch a.(type) {
	case bool, float64:
		return equal(b, a)
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// lookup prefers an exact key before walking dotted segments.
func lookup(values map[string]any, key string) any {
	if v, ok := values[key]; ok {
		return v
	}
	var current any = values
	for _, part := range strings.Split(key, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[part]
	}
	return current
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	}
	if n, ok := number(value); ok {
		return n != 0
	}
	return true
}

func boolean(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return parsed, err == nil
	}
	if n, ok := number(value); ok {
		return n != 0, true
	}
	return false, false
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}
