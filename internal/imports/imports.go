// # internal/imports/imports.go
package imports

import (
	"fmt"
	"strings"

	"retrofit/internal/astq"
	"retrofit/internal/project"
)

type Kind int

const (
	LibraryImport Kind = iota
	LocalImport
)

// ImportIdentifier names a symbol and where it is imported from: a library
// module specifier, or a project-local path. ExternalPath carries the package
// name downstream consumers resolve the same symbol under.
type ImportIdentifier struct {
	Kind         Kind
	Name         string
	Location     string
	LocalPath    string
	ExternalPath string
}

func Library(name, location string) ImportIdentifier {
	return ImportIdentifier{Kind: LibraryImport, Name: name, Location: location}
}

func Local(name, localPath, externalPath string) ImportIdentifier {
	return ImportIdentifier{Kind: LocalImport, Name: name, LocalPath: localPath, ExternalPath: externalPath}
}

// ModuleSpecifier returns the import source written into files. Local paths
// pass through unchanged; computing the relative path from the importing
// file is an open question inherited from the source behavior.
func (i ImportIdentifier) ModuleSpecifier() string {
	if i.Kind == LibraryImport {
		return i.Location
	}
	return i.LocalPath
}

// AsLibrary rewrites a local import to the package downstream consumers see.
// Imports without an external path are returned unchanged.
func (i ImportIdentifier) AsLibrary() ImportIdentifier {
	if i.Kind == LocalImport && i.ExternalPath != "" {
		return Library(i.Name, i.ExternalPath)
	}
	return i
}

// AddImport idempotently adds the import to the file, merging into an
// existing import from the same module when one exists. Returns true when
// the file was mutated; the caller owns the flush. Files importing the name
// already are left alone, as are `*`-style and default imports.
func AddImport(finder *astq.Finder, prj *project.Project, filePath string, imp ImportIdentifier) (bool, error) {
	existing, err := finder.Find(prj, filePath,
		fmt.Sprintf("//ImportDeclaration//Identifier[@value='%s']", imp.Name))
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	location := imp.ModuleSpecifier()

	sameSource, err := finder.Find(prj, filePath,
		fmt.Sprintf("//ImportDeclaration[//StringLiteral[@value='%s']]", location))
	if err != nil {
		return false, err
	}
	if len(sameSource) > 0 {
		decl := sameSource[0]
		text := decl.Value()
		if !strings.Contains(text, "{") {
			return false, nil
		}
		if err := decl.SetValue(strings.Replace(text, "{", "{ "+imp.Name+",", 1)); err != nil {
			return false, err
		}
		return true, nil
	}

	root, err := finder.FileRoot(prj, filePath)
	if err != nil {
		return false, err
	}
	line := fmt.Sprintf("import { %s } from \"%s\";\n", imp.Name, location)
	if err := root.SetValue(line + root.Value()); err != nil {
		return false, err
	}
	return true, nil
}
