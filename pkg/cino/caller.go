package cino

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io/ioutil"
	"runtime"
	"strings"
	"sync"

	"github.com/golang/glog"
)

// nullExpr is reported when the expression text can't be recovered.
const nullExpr = "null"

type callSite struct {
	file string
	line int
}

// callerSite returns the call site skip frames above its caller.
func callerSite(skip int) callSite {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return callSite{}
	}
	return callSite{file: file, line: line}
}

// exprOf recovers the source text of the first argument passed to fn at
// the call site.
func (s callSite) exprOf(fn string) (string, bool) {
	if s.file == "" {
		return "", false
	}
	return sources.exprOf(s.file, s.line, fn)
}

type exprKey struct {
	file string
	line int
	fn   string
}

type sourceFile struct {
	fset *token.FileSet
	file *ast.File
	src  []byte
}

// sourceCache keeps parsed caller sources. A nil file entry means the
// source isn't available.
type sourceCache struct {
	lock  sync.Mutex
	files map[string]*sourceFile
	exprs map[exprKey]string
}

var sources = &sourceCache{
	files: make(map[string]*sourceFile),
	exprs: make(map[exprKey]string),
}

func (c *sourceCache) exprOf(file string, line int, fn string) (string, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	key := exprKey{file: file, line: line, fn: fn}
	if text, ok := c.exprs[key]; ok {
		return text, true
	}
	sf, ok := c.files[file]
	if !ok {
		var err error
		if sf, err = parseSourceFile(file); err != nil {
			glog.V(2).Infof("expression capture unavailable: %v", err)
		}
		c.files[file] = sf
	}
	if sf == nil {
		return "", false
	}
	text, ok := sf.argText(line, fn)
	if ok {
		c.exprs[key] = text
	}
	return text, ok
}

func parseSourceFile(path string) (*sourceFile, error) {
	src, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, src, 0)
	if err != nil {
		return nil, err
	}
	return &sourceFile{fset: fset, file: f, src: src}, nil
}

// argText finds the call of fn reported at line and returns its first
// argument as written. Line breaks inside the argument collapse to
// single spaces. The innermost call spanning line is taken; when the
// line can't be told apart between calls, e.g. two calls on the same
// line or an enclosing call starting on it, nothing is returned.
func (sf *sourceFile) argText(line int, fn string) (string, bool) {
	lineOf := func(pos token.Pos) int {
		return sf.fset.Position(pos).Line
	}
	var calls []*ast.CallExpr
	ast.Inspect(sf.file, func(n ast.Node) bool {
		if n == nil || lineOf(n.Pos()) > line || lineOf(n.End()) < line {
			return false
		}
		if call, ok := n.(*ast.CallExpr); ok && len(call.Args) > 0 && calleeName(call.Fun) == fn {
			calls = append(calls, call)
		}
		return true
	})
	var inner []*ast.CallExpr
	for _, call := range calls {
		if !enclosesAny(call, calls) {
			inner = append(inner, call)
		}
	}
	if len(inner) != 1 {
		return "", false
	}
	found := inner[0]
	for _, call := range calls {
		if call != found && (lineOf(call.Pos()) == line || lineOf(call.Lparen) == line) {
			return "", false
		}
	}
	arg := found.Args[0]
	from, to := sf.fset.Position(arg.Pos()).Offset, sf.fset.Position(arg.End()).Offset
	text := string(sf.src[from:to])
	if strings.ContainsAny(text, "\r\n") {
		text = strings.Join(strings.Fields(text), " ")
	}
	return text, true
}

func enclosesAny(call *ast.CallExpr, calls []*ast.CallExpr) bool {
	for _, other := range calls {
		if other != call && other.Pos() >= call.Pos() && other.End() <= call.End() {
			return true
		}
	}
	return false
}

func calleeName(fun ast.Expr) string {
	switch f := fun.(type) {
	case *ast.Ident:
		return f.Name
	case *ast.SelectorExpr:
		return f.Sel.Name
	}
	return ""
}
