package internalcheck

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"
)

const module = "github.com/pubky/pubky-ffi-go"

// Log keys whose values must go through logging.Redacted.
var secretKeys = map[string]bool{
	"secret":       true,
	"secret_key":   true,
	"seed":         true,
	"passphrase":   true,
	"cookie":       true,
	"signup_token": true,
}

func load(t *testing.T) []*packages.Package {
	t.Helper()
	cfg := &packages.Config{
		Mode: packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedFiles | packages.NeedName,
	}
	pkgs, err := packages.Load(cfg, module+"/pkg/...", module+"/cmd/pubky-probe")
	require.NoError(t, err)
	require.NotEmpty(t, pkgs)
	return pkgs
}

// inspectCalls visits every call whose callee is a package function or a
// method with a known package.
func inspectCalls(pkgs []*packages.Package, visit func(pkg *packages.Package, call *ast.CallExpr, obj types.Object)) {
	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			ast.Inspect(file, func(n ast.Node) bool {
				call, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}
				sel, ok := call.Fun.(*ast.SelectorExpr)
				if !ok {
					return true
				}
				obj := pkg.TypesInfo.Uses[sel.Sel]
				if obj == nil || obj.Pkg() == nil {
					return true
				}
				visit(pkg, call, obj)
				return true
			})
		}
	}
}

func TestNoHexFormatting(t *testing.T) {
	var findings []string
	inspectCalls(load(t), func(pkg *packages.Package, call *ast.CallExpr, obj types.Object) {
		idx, ok := formatIndex(obj.Pkg().Path(), obj.Name())
		if !ok || len(call.Args) <= idx {
			return
		}
		value, ok := stringLit(call.Args[idx])
		if ok && containsHexVerb(value) {
			findings = append(findings, fmt.Sprintf("%s: avoid %%x formatting, keys have a z32 form", pkg.Fset.Position(call.Pos())))
		}
	})
	if len(findings) > 0 {
		t.Fatalf("formatting policy violation:\n%s", strings.Join(findings, "\n"))
	}
}

func TestSecretsAreRedactedInLogs(t *testing.T) {
	var findings []string
	inspectCalls(load(t), func(pkg *packages.Package, call *ast.CallExpr, obj types.Object) {
		if !isLogCall(obj) {
			return
		}
		for _, arg := range call.Args {
			key, ok := stringLit(arg)
			if ok && secretKeys[key] {
				findings = append(findings, fmt.Sprintf("%s: log key %q must use logging.Redacted", pkg.Fset.Position(arg.Pos()), key))
			}
		}
	})
	if len(findings) > 0 {
		t.Fatalf("secret logging policy violation:\n%s", strings.Join(findings, "\n"))
	}
}

// TestBridgeAPIIsDocumented requires a doc comment on every exported bridge
// function and Kind constant, since those are what the cgo exports wrap.
func TestBridgeAPIIsDocumented(t *testing.T) {
	var findings []string
	for _, pkg := range load(t) {
		if pkg.PkgPath != module+"/pkg/bridge" {
			continue
		}
		for _, file := range pkg.Syntax {
			for _, decl := range file.Decls {
				switch d := decl.(type) {
				case *ast.FuncDecl:
					if d.Recv == nil && d.Name.IsExported() && d.Doc == nil {
						findings = append(findings, fmt.Sprintf("%s: %s has no doc comment", pkg.Fset.Position(d.Pos()), d.Name.Name))
					}
				case *ast.GenDecl:
					if d.Tok != token.CONST {
						continue
					}
					for _, spec := range d.Specs {
						vs := spec.(*ast.ValueSpec)
						for _, name := range vs.Names {
							obj := pkg.TypesInfo.Defs[name]
							if obj == nil || !name.IsExported() || !isNamed(obj.Type(), module+"/pkg/bridge", "Kind") {
								continue
							}
							if vs.Doc == nil && vs.Comment == nil {
								findings = append(findings, fmt.Sprintf("%s: %s has no doc comment", pkg.Fset.Position(name.Pos()), name.Name))
							}
						}
					}
				}
			}
		}
	}
	if len(findings) > 0 {
		t.Fatalf("undocumented bridge API:\n%s", strings.Join(findings, "\n"))
	}
}

func isNamed(t types.Type, pkgPath, name string) bool {
	n, ok := t.(*types.Named)
	return ok && n.Obj().Pkg() != nil && n.Obj().Pkg().Path() == pkgPath && n.Obj().Name() == name
}

func formatIndex(pkgPath, name string) (int, bool) {
	switch pkgPath {
	case "fmt":
		switch name {
		case "Errorf", "Printf", "Sprintf":
			return 0, true
		case "Fprintf":
			return 1, true
		}
	case "log":
		switch name {
		case "Printf", "Fatalf", "Panicf":
			return 0, true
		}
	}
	return 0, false
}

// isLogCall matches slog functions and the methods of logging.Logger.
func isLogCall(obj types.Object) bool {
	switch obj.Pkg().Path() {
	case "log/slog", module + "/pkg/pubky/logging":
	default:
		return false
	}
	switch obj.Name() {
	case "Debug", "Info", "Warn", "Error", "With", "Log",
		"DebugContext", "InfoContext", "WarnContext", "ErrorContext":
		return true
	}
	return false
}

func stringLit(e ast.Expr) (string, bool) {
	lit, ok := e.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	v, err := strconv.Unquote(lit.Value)
	return v, err == nil
}

func containsHexVerb(s string) bool {
	return strings.Contains(s, "%x") || strings.Contains(s, "%X")
}
