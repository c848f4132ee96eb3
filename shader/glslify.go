package shader

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"
)

//go:embed chunks
var chunkFS embed.FS

// ErrUnknownModule is returned when a require pragma names a chunk the
// library does not carry.
var ErrUnknownModule = errors.New("unknown glslify module")

var (
	requireRE = regexp.MustCompile(`^\s*#pragma\s+glslify:\s*(\w+)\s*=\s*require\(\s*([^)\s]+)\s*\)\s*;?\s*$`)
	exportRE  = regexp.MustCompile(`^\s*#pragma\s+glslify:\s*export\(\s*(\w+)\s*\)\s*$`)
)

// Preprocessor inlines glslify-style require pragmas:
//
//	#pragma glslify: snoise3 = require(glsl-noise/simplex/3d)
//
// The chunk's exported function is renamed to the local alias. A module is
// inlined once per source; later requires of it under another alias become a
// #define.
type Preprocessor struct {
	lib fs.FS
}

// NewPreprocessor resolves modules as "<module>.glsl" paths inside lib.
func NewPreprocessor(lib fs.FS) *Preprocessor {
	return &Preprocessor{lib: lib}
}

// DefaultPreprocessor resolves modules from the chunks embedded in this
// package.
func DefaultPreprocessor() *Preprocessor {
	sub, err := fs.Sub(chunkFS, "chunks")
	if err != nil {
		panic(err)
	}
	return NewPreprocessor(sub)
}

// Preprocess expands src with the embedded chunk library.
func Preprocess(src string) (string, error) {
	return DefaultPreprocessor().Process(src)
}

type expansion struct {
	included map[string]string // module -> alias it was inlined under
	stack    []string
}

// Process returns src with every require pragma expanded.
func (p *Preprocessor) Process(src string) (string, error) {
	st := &expansion{included: make(map[string]string)}
	return p.expand(src, st)
}

func (p *Preprocessor) expand(src string, st *expansion) (string, error) {
	var out strings.Builder
	for _, line := range strings.Split(src, "\n") {
		m := requireRE.FindStringSubmatch(line)
		if m == nil {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}
		alias, module := m[1], path.Clean(m[2])

		if prev, ok := st.included[module]; ok {
			if prev != alias {
				fmt.Fprintf(&out, "#define %s %s\n", alias, prev)
			}
			continue
		}
		for _, s := range st.stack {
			if s == module {
				return "", fmt.Errorf("glslify require cycle through %s", module)
			}
		}

		body, err := p.load(module)
		if err != nil {
			return "", err
		}
		st.stack = append(st.stack, module)
		body, err = p.expand(body, st)
		st.stack = st.stack[:len(st.stack)-1]
		if err != nil {
			return "", fmt.Errorf("expanding %s: %w", module, err)
		}

		body, err = renameExport(body, alias)
		if err != nil {
			return "", fmt.Errorf("module %s: %w", module, err)
		}
		st.included[module] = alias
		out.WriteString(body)
		out.WriteByte('\n')
	}
	return strings.TrimSuffix(out.String(), "\n"), nil
}

func (p *Preprocessor) load(module string) (string, error) {
	data, err := fs.ReadFile(p.lib, module+".glsl")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrUnknownModule, module)
		}
		return "", fmt.Errorf("failed to read module %s: %w", module, err)
	}
	return string(data), nil
}

// renameExport strips the export pragma from body and renames the exported
// identifier to alias.
func renameExport(body, alias string) (string, error) {
	var export string
	var kept []string
	for _, line := range strings.Split(body, "\n") {
		if m := exportRE.FindStringSubmatch(line); m != nil {
			export = m[1]
			continue
		}
		kept = append(kept, line)
	}
	if export == "" {
		return "", errors.New("no export pragma")
	}
	out := strings.Join(kept, "\n")
	if export == alias {
		return out, nil
	}
	ident := regexp.MustCompile(`\b` + regexp.QuoteMeta(export) + `\b`)
	return ident.ReplaceAllString(out, alias), nil
}
