// Package noosexit reports os.Exit calls made directly from main.main.
// Exiting there skips deferred cleanup such as closing the storage.
package noosexit

import (
	"go/ast"
	"go/types"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer reports os.Exit inside the main.main function. Calls from other
// functions of package main are allowed, as are renamed imports of os,
// which are resolved through type information.
var Analyzer = &analysis.Analyzer{
	Name: "noosexit",
	Doc:  "prohibits direct use of os.Exit in main.main",
	Run:  run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	for _, file := range pass.Files {
		// go test generates a main package in the build cache.
		if isGoBuildCacheFile(pass.Fset.File(file.Pos()).Name()) {
			continue
		}

		mainFunc := findMain(file)
		if mainFunc == nil || mainFunc.Body == nil {
			continue
		}

		ast.Inspect(mainFunc.Body, func(n ast.Node) bool {
			// Closures run later, possibly after main returned.
			if _, ok := n.(*ast.FuncLit); ok {
				return false
			}

			call, ok := n.(*ast.CallExpr)
			if ok && isOSExit(pass, call) {
				pass.Reportf(call.Pos(), "avoid using os.Exit in main.main")
			}

			return true
		})
	}

	return nil, nil
}

func findMain(file *ast.File) *ast.FuncDecl {
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if ok && fn.Recv == nil && fn.Name.Name == "main" {
			return fn
		}
	}

	return nil
}

func isOSExit(pass *analysis.Pass, call *ast.CallExpr) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}

	fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)

	return ok && fn.Pkg() != nil && fn.Pkg().Path() == "os" && fn.Name() == "Exit"
}

func isGoBuildCacheFile(path string) bool {
	return strings.Contains(filepath.ToSlash(path), "/go-build/")
}
