package shader

import (
	"fmt"
	"path"
	"strings"
)

// IncludeExt is the file extension of include modules.
const IncludeExt = ".glsl"

// LoadFunc returns the contents of a shader asset.
type LoadFunc func(name string) ([]byte, error)

// Preprocessor expands include directives. Leading lines of the form
//
//	// include globe::sphere
//
// are replaced by the module dir/globe/sphere.glsl, itself preprocessed.
// A #version line may precede them and stays first.
type Preprocessor struct {
	Dir  string
	Load LoadFunc
}

// Source returns the expanded source of the named shader, relative to Dir.
func (p *Preprocessor) Source(name string) (string, error) {
	var b strings.Builder
	if err := p.expand(path.Join(p.Dir, name), &b, map[string]bool{}, true); err != nil {
		return "", err
	}
	return b.String(), nil
}

// ModulePath maps a module reference such as "globe::sphere" to its asset
// name under dir.
func ModulePath(dir, module string) string {
	return path.Join(dir, strings.ReplaceAll(module, "::", "/")+IncludeExt)
}

func (p *Preprocessor) expand(name string, out *strings.Builder, stack map[string]bool, top bool) error {
	if stack[name] {
		return fmt.Errorf("include cycle at %s", name)
	}
	stack[name] = true
	defer delete(stack, name)

	data, err := p.Load(name)
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}

	lines := strings.SplitAfter(string(data), "\n")
	i := 0
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		switch {
		case line == "":
			out.WriteString(lines[i])
		case strings.HasPrefix(line, "#version"):
			if top {
				out.WriteString(lines[i])
			}
		default:
			module, ok := includeDirective(line)
			if !ok {
				out.WriteString(strings.Join(lines[i:], ""))
				return nil
			}
			if err := p.expand(ModulePath(p.Dir, module), out, stack, false); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			out.WriteString("\n")
		}
	}
	return nil
}

// includeDirective parses "// include a::b".
func includeDirective(line string) (string, bool) {
	rest, ok := strings.CutPrefix(line, "//")
	if !ok {
		return "", false
	}
	fields := strings.Fields(rest)
	if len(fields) != 2 || fields[0] != "include" {
		return "", false
	}
	return fields[1], true
}
