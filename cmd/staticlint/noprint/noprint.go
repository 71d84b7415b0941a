// Package noprint reports fmt.Print* and the print builtins outside tests.
// Service code logs through the shared zap logger instead.
package noprint

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer flags direct writes to stdout with fmt.Print, fmt.Printf,
// fmt.Println, print and println. Files ending in _test.go are skipped,
// since Example tests print on purpose.
var Analyzer = &analysis.Analyzer{
	Name:     "noprint",
	Doc:      "prohibits fmt.Print* and the print builtins outside tests",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var fmtPrinters = map[string]bool{
	"Print":   true,
	"Printf":  true,
	"Println": true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	theInspector := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	theInspector.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call := n.(*ast.CallExpr)
		if strings.HasSuffix(pass.Fset.File(call.Pos()).Name(), "_test.go") {
			return
		}

		switch fun := astutil.Unparen(call.Fun).(type) {
		case *ast.Ident:
			if builtin, ok := pass.TypesInfo.Uses[fun].(*types.Builtin); ok &&
				(builtin.Name() == "print" || builtin.Name() == "println") {
				pass.Reportf(call.Pos(), "use the logger instead of %s", builtin.Name())
			}

		case *ast.SelectorExpr:
			fn, ok := pass.TypesInfo.Uses[fun.Sel].(*types.Func)
			if !ok || fn.Pkg() == nil || fn.Pkg().Path() != "fmt" || !fmtPrinters[fn.Name()] {
				return
			}
			pass.Reportf(call.Pos(), "use the logger instead of fmt.%s", fn.Name())
		}
	})

	return nil, nil
}
