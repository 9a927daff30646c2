// # internal/astq/pathexpr.go
package astq

import (
	"fmt"
	"strings"

	cerrors "retrofit/internal/core/errors"
)

// PathExpr is a compiled path expression. Steps use a child (`/`) or
// descendant-or-self (`//`) axis, a node name or `*`, and any number of
// predicates: `[@value='...']` matches the node's text (string literals
// compare unquoted), `[<relative expr>]` requires a non-empty selection.
type PathExpr struct {
	steps []step
}

type step struct {
	deep  bool
	name  string
	preds []predicate
}

type predicate struct {
	value *string
	path  *PathExpr
}

func ParsePathExpr(input string) (*PathExpr, error) {
	p := &exprParser{input: input}
	pe, err := p.parse()
	if err != nil {
		return nil, cerrors.Wrap(err, cerrors.CodeValidationError,
			fmt.Sprintf("invalid path expression %q", input))
	}
	return pe, nil
}

// SelectFrom evaluates the expression with the node as context, returning
// matches in document order without duplicates.
func (pe *PathExpr) SelectFrom(ctx *Node) []*Node {
	current := []*Node{ctx}
	for i := range pe.steps {
		st := &pe.steps[i]
		seen := make(map[*Node]bool)
		var next []*Node
		add := func(n *Node) {
			if !seen[n] {
				seen[n] = true
				next = append(next, n)
			}
		}
		for _, n := range current {
			if st.deep {
				walkSelfAndDescendants(n, func(d *Node) {
					if st.matches(d) {
						add(d)
					}
				})
			} else {
				for _, c := range n.Children() {
					if st.matches(c) {
						add(c)
					}
				}
			}
		}
		current = next
	}
	return current
}

func (st *step) matches(n *Node) bool {
	if st.name != "*" && n.Name() != st.name {
		return false
	}
	for i := range st.preds {
		pred := &st.preds[i]
		if pred.value != nil && !n.matchValue(*pred.value) {
			return false
		}
		if pred.path != nil && len(pred.path.SelectFrom(n)) == 0 {
			return false
		}
	}
	return true
}

func walkSelfAndDescendants(n *Node, visit func(*Node)) {
	visit(n)
	for _, c := range n.Children() {
		walkSelfAndDescendants(c, visit)
	}
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) parse() (*PathExpr, error) {
	pe := &PathExpr{}
	for p.pos < len(p.input) {
		st, err := p.parseStep()
		if err != nil {
			return nil, err
		}
		pe.steps = append(pe.steps, st)
	}
	if len(pe.steps) == 0 {
		return nil, fmt.Errorf("empty expression")
	}
	return pe, nil
}

func (p *exprParser) parseStep() (step, error) {
	var st step
	if !p.consume("/") {
		return st, fmt.Errorf("expected '/' at offset %d", p.pos)
	}
	if p.consume("/") {
		st.deep = true
	}

	start := p.pos
	for p.pos < len(p.input) && isNameChar(p.input[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return st, fmt.Errorf("expected node name at offset %d", p.pos)
	}
	st.name = p.input[start:p.pos]

	for p.pos < len(p.input) && p.input[p.pos] == '[' {
		inner, err := p.readBracketed()
		if err != nil {
			return st, err
		}
		pred, err := parsePredicate(inner)
		if err != nil {
			return st, err
		}
		st.preds = append(st.preds, pred)
	}
	return st, nil
}

// readBracketed consumes a balanced [...] group, respecting quoted values.
func (p *exprParser) readBracketed() (string, error) {
	start := p.pos + 1
	depth := 0
	var quote byte
	for ; p.pos < len(p.input); p.pos++ {
		ch := p.input[p.pos]
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"':
			quote = ch
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				inner := p.input[start:p.pos]
				p.pos++
				return inner, nil
			}
		}
	}
	return "", fmt.Errorf("unterminated predicate at offset %d", start-1)
}

func parsePredicate(inner string) (predicate, error) {
	inner = strings.TrimSpace(inner)
	if strings.HasPrefix(inner, "@value=") {
		raw := strings.TrimSpace(strings.TrimPrefix(inner, "@value="))
		if len(raw) < 2 || (raw[0] != '\'' && raw[0] != '"') || raw[len(raw)-1] != raw[0] {
			return predicate{}, fmt.Errorf("malformed @value predicate %q", inner)
		}
		value := raw[1 : len(raw)-1]
		return predicate{value: &value}, nil
	}

	sub := &exprParser{input: inner}
	pe, err := sub.parse()
	if err != nil {
		return predicate{}, err
	}
	return predicate{path: pe}, nil
}

func (p *exprParser) consume(prefix string) bool {
	if strings.HasPrefix(p.input[p.pos:], prefix) {
		p.pos += len(prefix)
		return true
	}
	return false
}

func isNameChar(ch byte) bool {
	return ch == '*' || ch == '_' ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}
