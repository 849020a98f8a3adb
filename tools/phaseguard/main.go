// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// phaseguard fails when code outside internal/lifecycle fabricates phases or
// drives a phase machine directly. Phases must come from the declared
// constants or lifecycle.ParsePhase, and only lifecycle.Controller may own a
// machine over them.
//
// Usage:
//
//	go run ./tools/phaseguard [pattern...]
package main

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"os"
	"strings"

	"golang.org/x/tools/go/packages"
)

const (
	lifecycleSuffix = "/internal/lifecycle"
	fsmSuffix       = "/internal/fsm"
)

func main() {
	patterns := os.Args[1:]
	if len(patterns) == 0 {
		patterns = []string{"./internal/...", "./cmd/..."}
	}
	violations, err := Analyze(".", patterns...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load packages: %v\n", err)
		os.Exit(1)
	}
	if len(violations) > 0 {
		fmt.Fprintln(os.Stderr, "phase boundary violations (use lifecycle.ParsePhase / Controller.Transition):")
		for _, v := range violations {
			fmt.Fprintln(os.Stderr, v)
		}
		os.Exit(1)
	}
}

// Analyze loads patterns relative to dir and returns one line per violation.
func Analyze(dir string, patterns ...string) ([]string, error) {
	cfg := &packages.Config{
		Mode: packages.NeedSyntax | packages.NeedFiles | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedName,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, pkg := range pkgs {
		if strings.HasSuffix(pkg.PkgPath, lifecycleSuffix) || pkg.TypesInfo == nil {
			continue
		}
		for _, file := range pkg.Syntax {
			name := pkg.Fset.Position(file.Pos()).Filename
			if strings.HasSuffix(name, "_test.go") {
				continue
			}
			out = append(out, inspect(pkg.Fset, file, pkg.TypesInfo)...)
		}
	}
	return out, nil
}

// inspect reports phase conversions from non-constant values and fsm.New
// instantiations over lifecycle.Phase.
func inspect(fset *token.FileSet, file *ast.File, info *types.Info) []string {
	var out []string
	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}

		if tv, ok := info.Types[call.Fun]; ok && tv.IsType() && isPhase(tv.Type) && len(call.Args) == 1 {
			if arg, ok := info.Types[call.Args[0]]; !ok || arg.Value == nil {
				out = append(out, report(fset, call.Pos(), "lifecycle.Phase conversion from a runtime value"))
			}
			return true
		}

		if isFSMNew(call, info) {
			out = append(out, report(fset, call.Pos(), "fsm machine over lifecycle.Phase built outside lifecycle"))
		}
		return true
	})
	return out
}

func isPhase(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return false
	}
	return named.Obj().Name() == "Phase" && strings.HasSuffix(named.Obj().Pkg().Path(), lifecycleSuffix)
}

func isFSMNew(call *ast.CallExpr, info *types.Info) bool {
	fun := call.Fun
	if idx, ok := fun.(*ast.IndexListExpr); ok {
		fun = idx.X
	}
	if idx, ok := fun.(*ast.IndexExpr); ok {
		fun = idx.X
	}
	var ident *ast.Ident
	switch f := fun.(type) {
	case *ast.SelectorExpr:
		ident = f.Sel
	case *ast.Ident:
		ident = f
	default:
		return false
	}
	obj, ok := info.Uses[ident].(*types.Func)
	if !ok || obj.Pkg() == nil || obj.Name() != "New" || !strings.HasSuffix(obj.Pkg().Path(), fsmSuffix) {
		return false
	}
	inst, ok := info.Instances[ident]
	if !ok || inst.TypeArgs.Len() == 0 {
		return false
	}
	return isPhase(inst.TypeArgs.At(0))
}

func report(fset *token.FileSet, pos token.Pos, msg string) string {
	p := fset.Position(pos)
	return fmt.Sprintf("%s:%d:%d: %s", p.Filename, p.Line, p.Column, msg)
}
