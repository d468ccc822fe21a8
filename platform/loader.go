package platform

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/bazelbuild/buildtools/build"

	"github.com/albertocavalcante/go-pkgresolve/internal/buildutil"
)

// Platform definition files are Starlark files made of top-level calls:
//
//	platform(name = "el", major_only = True, fallback_arch = "i386")
//	platform(name = "centos", remap = "el")
//	platform(name = "suse", remap = "el", version_remap = "6")
//	platform(name = "linuxmint", remap = "ubuntu", version_remap = computed("linuxmint"), yolo = True)
//	arch_alias(alias = "amd64", arch = "x86_64")
//
// Nothing is evaluated; unknown calls or attributes are errors.

var platformAttrs = []string{
	"name", "major_only", "remap", "version_remap", "yolo", "fallback_arch", "window_floor",
}

var archAliasAttrs = []string{"alias", "arch"}

// LoadFile reads and parses a platform definition file.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read platform table: %w", err)
	}
	return Load(path, data)
}

// Load parses platform definitions from data. filename is used in error
// positions only. All problems in the file are reported together; each is a
// *LoadError.
func Load(filename string, data []byte) (*Table, error) {
	f, err := build.ParseDefault(filename, data)
	if err != nil {
		return nil, &LoadError{Pos: Position{Filename: filename}, Message: err.Error(), Wrapped: err}
	}

	l := &loader{filename: filename, aliases: make(map[string]string)}
	for _, stmt := range f.Stmt {
		l.statement(stmt)
	}
	if len(l.errs) > 0 {
		return nil, errors.Join(l.errs...)
	}

	t, err := NewTable(l.specs, l.aliases)
	if err != nil {
		return nil, &LoadError{Pos: Position{Filename: filename}, Message: err.Error(), Wrapped: err}
	}
	return t, nil
}

type loader struct {
	filename string
	specs    []Spec
	aliases  map[string]string
	errs     []error
}

func (l *loader) statement(stmt build.Expr) {
	switch stmt := stmt.(type) {
	case *build.CommentBlock:
		return
	case *build.CallExpr:
		switch buildutil.FuncName(stmt) {
		case "platform":
			l.platform(stmt)
		case "arch_alias":
			l.archAlias(stmt)
		default:
			l.addError(stmt, "unknown function %q", buildutil.FuncName(stmt))
		}
	default:
		l.addError(stmt, "unexpected statement; only platform() and arch_alias() calls are allowed")
	}
}

func (l *loader) platform(call *build.CallExpr) {
	if !l.checkAttrs(call, "platform", platformAttrs) {
		return
	}

	spec := Spec{
		Name:         buildutil.String(call, "name"),
		Remap:        buildutil.String(call, "remap"),
		FallbackArch: buildutil.String(call, "fallback_arch"),
		WindowFloor:  buildutil.String(call, "window_floor"),
	}
	if spec.Name == "" {
		l.addError(call, "platform: missing required 'name' attribute")
		return
	}

	var ok bool
	if spec.MajorOnly, ok = l.boolAttr(call, "major_only"); !ok {
		return
	}
	if spec.Yolo, ok = l.boolAttr(call, "yolo"); !ok {
		return
	}
	for _, attr := range []string{"remap", "fallback_arch", "window_floor"} {
		if rhs, found := buildutil.Attr(call, attr); found {
			if _, isString := rhs.(*build.StringExpr); !isString {
				l.addError(rhs, "platform %q: %s must be a string", spec.Name, attr)
				return
			}
		}
	}

	if rhs, found := buildutil.Attr(call, "version_remap"); found {
		remap, ok := l.versionRemap(spec.Name, rhs)
		if !ok {
			return
		}
		spec.VersionRemap = remap
	}

	l.specs = append(l.specs, spec)
}

func (l *loader) versionRemap(name string, rhs build.Expr) (VersionRemap, bool) {
	switch rhs := rhs.(type) {
	case *build.StringExpr:
		return StaticRemap(rhs.Value), true
	case *build.CallExpr:
		if buildutil.FuncName(rhs) != "computed" || len(rhs.List) != 1 {
			l.addError(rhs, "platform %q: version_remap call must be computed(\"<function>\")", name)
			return VersionRemap{}, false
		}
		fn := buildutil.String(rhs, "")
		remap, err := ComputedRemap(fn)
		if err != nil {
			l.addError(rhs, "platform %q: %v", name, err)
			return VersionRemap{}, false
		}
		return remap, true
	default:
		l.addError(rhs, "platform %q: version_remap must be a string or computed(...)", name)
		return VersionRemap{}, false
	}
}

func (l *loader) archAlias(call *build.CallExpr) {
	if !l.checkAttrs(call, "arch_alias", archAliasAttrs) {
		return
	}
	alias := buildutil.String(call, "alias")
	arch := buildutil.String(call, "arch")
	if alias == "" || arch == "" {
		l.addError(call, "arch_alias: 'alias' and 'arch' must be non-empty strings")
		return
	}
	if prev, dup := l.aliases[alias]; dup {
		l.addError(call, "arch_alias: %q already maps to %q", alias, prev)
		return
	}
	l.aliases[alias] = arch
}

func (l *loader) checkAttrs(call *build.CallExpr, fn string, allowed []string) bool {
	if buildutil.HasPositional(call) {
		l.addError(call, "%s: positional arguments are not supported", fn)
		return false
	}
	ok := true
	for _, name := range buildutil.KeywordNames(call) {
		if !slices.Contains(allowed, name) {
			l.addError(call, "%s: unknown attribute %q", fn, name)
			ok = false
		}
	}
	return ok
}

// boolAttr returns false as its second result only when the attribute is
// present and not a boolean.
func (l *loader) boolAttr(call *build.CallExpr, name string) (bool, bool) {
	rhs, found := buildutil.Attr(call, name)
	if !found {
		return false, true
	}
	v, ok := buildutil.Bool(call, name)
	if !ok {
		l.addError(rhs, "%s must be True or False", name)
		return false, false
	}
	return v, true
}

func (l *loader) position(expr build.Expr) Position {
	start, _ := expr.Span()
	return Position{
		Filename: l.filename,
		Line:     start.Line,
		Column:   start.LineRune,
	}
}

func (l *loader) addError(expr build.Expr, format string, args ...any) {
	l.errs = append(l.errs, &LoadError{
		Pos:     l.position(expr),
		Message: fmt.Sprintf(format, args...),
	})
}
