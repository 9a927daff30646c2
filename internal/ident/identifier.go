// # internal/ident/identifier.go
package ident

import (
	"fmt"
	"strings"
)

// Access classifies a callable's visibility, which decides how widely its
// call sites are searched and whether downstream consumers are affected.
type Access int

const (
	PublicFunctionAccess Access = iota
	PrivateFunctionAccess
	PublicMethodAccess
	PrivateMethodAccess
)

func (a Access) String() string {
	switch a {
	case PublicFunctionAccess:
		return "public-function"
	case PrivateFunctionAccess:
		return "private-function"
	case PublicMethodAccess:
		return "public-method"
	case PrivateMethodAccess:
		return "private-method"
	}
	return "unknown"
}

func (a Access) Public() bool {
	return a == PublicFunctionAccess || a == PublicMethodAccess
}

func (a Access) Method() bool {
	return a == PublicMethodAccess || a == PrivateMethodAccess
}

func ParseAccess(s string) (Access, error) {
	switch s {
	case "public-function":
		return PublicFunctionAccess, nil
	case "private-function":
		return PrivateFunctionAccess, nil
	case "public-method":
		return PublicMethodAccess, nil
	case "private-method":
		return PrivateMethodAccess, nil
	}
	return 0, fmt.Errorf("unknown access %q", s)
}

type ScopeKind int

const (
	ClassAroundMethod ScopeKind = iota
	EnclosingNamespace
)

// Scope is one link in the lexical chain wrapping a declaration. Parent
// points outward; each link owns its parent, so chains compare structurally
// without shared mutable state.
type Scope struct {
	Kind     ScopeKind
	Name     string
	Exported bool
	Parent   *Scope
}

func (s *Scope) Equal(other *Scope) bool {
	if s == nil || other == nil {
		return s == nil && other == nil
	}
	return s.Kind == other.Kind && s.Name == other.Name && s.Exported == other.Exported &&
		s.Parent.Equal(other.Parent)
}

// OutermostFirst returns the chain's scope links from outermost to innermost.
func (s *Scope) OutermostFirst() []*Scope {
	var chain []*Scope
	for cur := s; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// FunctionCallIdentifier is the canonical handle for a callable: its name,
// enclosing scope chain (innermost first), declaring file, and access.
type FunctionCallIdentifier struct {
	Name           string
	EnclosingScope *Scope
	FilePath       string
	Access         Access
}

func (id FunctionCallIdentifier) Equal(other FunctionCallIdentifier) bool {
	return id.Name == other.Name &&
		id.FilePath == other.FilePath &&
		id.Access == other.Access &&
		id.EnclosingScope.Equal(other.EnclosingScope)
}

// Key returns a canonical string usable as a set/map key. Exported flags are
// part of scope structure and therefore of identity.
func (id FunctionCallIdentifier) Key() string {
	var b strings.Builder
	b.WriteString(id.FilePath)
	b.WriteString("#")
	for _, s := range id.EnclosingScope.OutermostFirst() {
		if s.Kind == ClassAroundMethod {
			b.WriteString("class:")
		} else {
			b.WriteString("ns:")
		}
		b.WriteString(s.Name)
		if s.Exported {
			b.WriteString("!")
		}
		b.WriteString(".")
	}
	b.WriteString(id.Name)
	b.WriteString("@")
	b.WriteString(id.Access.String())
	return b.String()
}

// QualifiedName joins the scope names and function name with dots.
func (id FunctionCallIdentifier) QualifiedName() string {
	parts := make([]string, 0, 4)
	for _, s := range id.EnclosingScope.OutermostFirst() {
		parts = append(parts, s.Name)
	}
	parts = append(parts, id.Name)
	return strings.Join(parts, ".")
}

// DeclarationPathExpr builds the path expression locating the declaration,
// outermost scope first: classes contribute a ClassDeclaration component,
// namespaces a ModuleDeclaration/ModuleBlock pair, and the terminal component
// is a MethodDeclaration when the innermost scope is a class.
func (id FunctionCallIdentifier) DeclarationPathExpr() string {
	var b strings.Builder
	b.WriteString("/")
	innermostIsClass := false
	for _, s := range id.EnclosingScope.OutermostFirst() {
		if s.Kind == ClassAroundMethod {
			fmt.Fprintf(&b, "/ClassDeclaration[/Identifier[@value='%s']]", s.Name)
			innermostIsClass = true
		} else {
			fmt.Fprintf(&b, "/ModuleDeclaration[/Identifier[@value='%s']]/ModuleBlock", s.Name)
			innermostIsClass = false
		}
	}
	if innermostIsClass {
		fmt.Fprintf(&b, "/MethodDeclaration[/Identifier[@value='%s']]", id.Name)
	} else {
		fmt.Fprintf(&b, "/FunctionDeclaration[/Identifier[@value='%s']]", id.Name)
	}
	return b.String()
}

// CallPathExpr builds the path expression matching call sites. Private
// methods match any qualified access ending in the name (this.fn and
// equivalents); scoped callables match the full dotted name; free functions
// match a bare identifier call.
func (id FunctionCallIdentifier) CallPathExpr() string {
	if id.Access == PrivateMethodAccess {
		return fmt.Sprintf("//CallExpression[/PropertyAccessExpression/Identifier[@value='%s']]", id.Name)
	}
	if id.EnclosingScope != nil {
		return fmt.Sprintf("//CallExpression[/PropertyAccessExpression[@value='%s']]", id.QualifiedName())
	}
	return fmt.Sprintf("//CallExpression[/Identifier[@value='%s']]", id.Name)
}

// PlanningGlob is the search scope when discovering consequences.
func (id FunctionCallIdentifier) PlanningGlob() string {
	if id.Access.Public() {
		return "{src,test}/**/*.ts"
	}
	return id.FilePath
}

// SourceGlob is the search scope for source edits during execution.
func (id FunctionCallIdentifier) SourceGlob() string {
	if id.Access.Public() {
		return "src/**/*.ts"
	}
	return id.FilePath
}

// TestGlob is the search scope for dummy insertion in tests.
func TestGlob() string {
	return "test*/**/*.ts"
}
