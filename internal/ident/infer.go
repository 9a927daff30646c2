// # internal/ident/infer.go
package ident

import (
	"fmt"
	"strings"

	"retrofit/internal/astq"
	cerrors "retrofit/internal/core/errors"
)

// FromNode infers the identifier of a function or method declaration node by
// walking its ancestors for class/namespace scopes and reading modifiers.
// Top-level functions without export default to private; methods without an
// accessibility modifier default to public; protected collapses to private.
func FromNode(decl *astq.Node, filePath string) (FunctionCallIdentifier, error) {
	if decl.Name() != "FunctionDeclaration" && decl.Name() != "MethodDeclaration" {
		return FunctionCallIdentifier{}, cerrors.New(cerrors.CodeValidationError,
			fmt.Sprintf("not a function declaration: %s", decl.Name()))
	}

	name, ok := declaredName(decl)
	if !ok {
		return FunctionCallIdentifier{}, cerrors.New(cerrors.CodeValidationError,
			"declaration has no name identifier")
	}

	var innermost *Scope
	var current *Scope
	for p := decl.Parent(); p != nil; p = p.Parent() {
		var scope *Scope
		switch p.Name() {
		case "ClassDeclaration":
			scopeName, _ := declaredName(p)
			scope = &Scope{Kind: ClassAroundMethod, Name: scopeName, Exported: p.HasChild("ExportKeyword")}
		case "ModuleDeclaration":
			scopeName, _ := declaredName(p)
			scope = &Scope{Kind: EnclosingNamespace, Name: scopeName, Exported: p.HasChild("ExportKeyword")}
		default:
			continue
		}
		if innermost == nil {
			innermost = scope
		} else {
			current.Parent = scope
		}
		current = scope
	}

	var access Access
	if decl.Name() == "MethodDeclaration" {
		if decl.HasChild("PrivateKeyword") || decl.HasChild("ProtectedKeyword") {
			access = PrivateMethodAccess
		} else {
			access = PublicMethodAccess
		}
	} else {
		if decl.HasChild("ExportKeyword") {
			access = PublicFunctionAccess
		} else {
			access = PrivateFunctionAccess
		}
	}

	return FunctionCallIdentifier{
		Name:           name,
		EnclosingScope: innermost,
		FilePath:       filePath,
		Access:         access,
	}, nil
}

// EnclosingDeclaration walks up from a node to the nearest wrapping function
// or method declaration, or nil when the node sits at module level.
func EnclosingDeclaration(n *astq.Node) *astq.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Name() == "FunctionDeclaration" || p.Name() == "MethodDeclaration" {
			return p
		}
	}
	return nil
}

// ParameterOfType scans a declaration's parameter list for a parameter whose
// type reference textually equals typeName, returning that parameter's name.
func ParameterOfType(decl *astq.Node, typeName string) (string, bool) {
	for _, c := range decl.Children() {
		if c.Name() != "Parameter" {
			continue
		}
		ann, ok := c.FirstChild("TypeAnnotation")
		if !ok {
			continue
		}
		typeText := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(ann.Value()), ":"))
		if typeText != typeName {
			continue
		}
		if name, ok := c.FirstChild("Identifier"); ok {
			return name.Value(), true
		}
	}
	return "", false
}

func declaredName(decl *astq.Node) (string, bool) {
	if n, ok := decl.FirstChild("Identifier"); ok {
		return n.Value(), true
	}
	return "", false
}
