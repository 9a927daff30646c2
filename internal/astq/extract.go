// # internal/astq/extract.go
package astq

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"retrofit/internal/project"
)

// Path expressions address nodes by TypeScript-compiler names, so tree-sitter
// kinds are normalized during extraction. Wrapper nodes that the compiler AST
// does not have (class_body, formal_parameters, arguments) are spliced away,
// and the export keyword of an export_statement is folded into the exported
// declaration as its first child, so modifiers read as direct children.
var namedKinds = map[string]string{
	"program":                    "SourceFile",
	"function_declaration":       "FunctionDeclaration",
	"function_signature":         "FunctionDeclaration",
	"method_definition":          "MethodDeclaration",
	"method_signature":           "MethodDeclaration",
	"class_declaration":          "ClassDeclaration",
	"abstract_class_declaration": "ClassDeclaration",
	"internal_module":            "ModuleDeclaration",
	"module":                     "ModuleDeclaration",
	"call_expression":            "CallExpression",
	"member_expression":          "PropertyAccessExpression",
	"identifier":                 "Identifier",
	"property_identifier":        "Identifier",
	"type_identifier":            "Identifier",
	"import_statement":           "ImportDeclaration",
	"import_clause":              "ImportClause",
	"named_imports":              "NamedImports",
	"import_specifier":           "ImportSpecifier",
	"string":                     "StringLiteral",
	"string_fragment":            "StringFragment",
	"required_parameter":         "Parameter",
	"optional_parameter":         "Parameter",
	"type_annotation":            "TypeAnnotation",
	"statement_block":            "Block",
	"arrow_function":             "ArrowFunction",
	"function_expression":        "FunctionExpression",
	"this":                       "ThisKeyword",
	"number":                     "NumericLiteral",
	"object":                     "ObjectLiteralExpression",
	"as_expression":              "AsExpression",
	"new_expression":             "NewExpression",
	"expression_statement":       "ExpressionStatement",
	"return_statement":           "ReturnStatement",
	"lexical_declaration":        "LexicalDeclaration",
	"variable_declarator":        "VariableDeclarator",
}

var tokenKinds = map[string]string{
	"(":         "OpenParenToken",
	")":         "CloseParenToken",
	"{":         "OpenBraceToken",
	"}":         "CloseBraceToken",
	",":         "CommaToken",
	";":         "SemicolonToken",
	".":         "DotToken",
	":":         "ColonToken",
	"=":         "EqualsToken",
	"=>":        "EqualsGreaterThanToken",
	"export":    "ExportKeyword",
	"default":   "DefaultKeyword",
	"static":    "StaticKeyword",
	"abstract":  "AbstractKeyword",
	"async":     "AsyncKeyword",
	"class":     "ClassKeyword",
	"function":  "FunctionKeyword",
	"namespace": "NamespaceKeyword",
	"module":    "ModuleKeyword",
	"import":    "ImportKeyword",
	"from":      "FromKeyword",
	"return":    "ReturnKeyword",
	"new":       "NewKeyword",
}

// Declarations an export keyword can attach to.
var exportableKinds = map[string]bool{
	"FunctionDeclaration": true,
	"ClassDeclaration":    true,
	"ModuleDeclaration":   true,
	"LexicalDeclaration":  true,
}

type extraction struct {
	src  []byte
	path string
	prj  *project.Project
	gen  uint64
}

func (e *extraction) root(ts *sitter.Node) *Node {
	nodes := e.convert(ts, nil)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func (e *extraction) convert(ts *sitter.Node, parent *Node) []*Node {
	switch ts.Kind() {
	case "class_body", "formal_parameters", "arguments":
		var out []*Node
		for i := uint(0); i < ts.ChildCount(); i++ {
			out = append(out, e.convert(ts.Child(i), parent)...)
		}
		return out
	case "export_statement":
		return e.convertExport(ts, parent)
	case "accessibility_modifier":
		// Leaf: the modifier's own text decides its name.
		n := e.newNode(ts, parent)
		switch n.value {
		case "private":
			n.name = "PrivateKeyword"
		case "protected":
			n.name = "ProtectedKeyword"
		default:
			n.name = "PublicKeyword"
		}
		return []*Node{n}
	}

	n := e.newNode(ts, parent)
	for i := uint(0); i < ts.ChildCount(); i++ {
		n.children = append(n.children, e.convert(ts.Child(i), n)...)
	}
	return []*Node{n}
}

// convertExport folds the export (and default) keywords into the exported
// declaration so access inference can look at direct children only.
func (e *extraction) convertExport(ts *sitter.Node, parent *Node) []*Node {
	var converted []*Node
	for i := uint(0); i < ts.ChildCount(); i++ {
		converted = append(converted, e.convert(ts.Child(i), parent)...)
	}

	var modifiers []*Node
	var decl *Node
	var rest []*Node
	for _, c := range converted {
		switch {
		case c.name == "ExportKeyword" || c.name == "DefaultKeyword":
			modifiers = append(modifiers, c)
		case decl == nil && exportableKinds[c.name]:
			decl = c
		default:
			rest = append(rest, c)
		}
	}

	if decl == nil {
		// export {x} / export default expr: keep a plain statement wrapper.
		n := e.newNodeNamed(ts, parent, "ExportStatement")
		for _, c := range converted {
			c.parent = n
		}
		n.children = converted
		return []*Node{n}
	}

	for _, m := range modifiers {
		m.parent = decl
	}
	decl.children = append(modifiers, decl.children...)
	decl.parent = parent
	out := []*Node{decl}
	return append(out, rest...)
}

func (e *extraction) newNode(ts *sitter.Node, parent *Node) *Node {
	return e.newNodeNamed(ts, parent, e.normalizeKind(ts, parent))
}

func (e *extraction) newNodeNamed(ts *sitter.Node, parent *Node, name string) *Node {
	start := int(ts.StartByte())
	end := int(ts.EndByte())
	pos := ts.StartPosition()
	return &Node{
		name:   name,
		value:  string(e.src[start:end]),
		start:  start,
		end:    end,
		line:   int(pos.Row) + 1,
		column: int(pos.Column) + 1,
		parent: parent,
		path:   e.path,
		prj:    e.prj,
		gen:    e.gen,
	}
}

func (e *extraction) normalizeKind(ts *sitter.Node, parent *Node) string {
	kind := ts.Kind()

	if !ts.IsNamed() {
		if name, ok := tokenKinds[kind]; ok {
			return name
		}
		return kind
	}

	if kind == "statement_block" && parent != nil && parent.name == "ModuleDeclaration" {
		return "ModuleBlock"
	}
	if name, ok := namedKinds[kind]; ok {
		return name
	}
	return camelizeKind(kind)
}

func camelizeKind(kind string) string {
	parts := strings.Split(kind, "_")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
