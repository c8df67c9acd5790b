package linkage

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed platforms.yaml
var defaultTable []byte

// ErrUnsupportedPlatform is returned by Lookup when no entry matches.
var ErrUnsupportedPlatform = errors.New("linkage: no JavaScriptCore linkage for this platform")

// Table is the parsed platform table.
type Table struct {
	Platforms []Platform `yaml:"platforms"`
}

// Platform is one row of the table. Apple platforms link frameworks; Linux
// platforms list pkg-config modules in order of preference.
type Platform struct {
	Name       string   `yaml:"name"`
	GOOS       string   `yaml:"goos"`
	Distros    []string `yaml:"distros,omitempty"`
	Frameworks []string `yaml:"frameworks,omitempty"`
	Modules    []Module `yaml:"modules,omitempty"`
}

// Module is a pkg-config module and the build tag that selects it.
type Module struct {
	PkgConfig string `yaml:"pkg_config"`
	BuildTag  string `yaml:"build_tag,omitempty"`
	Install   string `yaml:"install,omitempty"`
}

var loadDefault = sync.OnceValues(func() (*Table, error) {
	return Parse(defaultTable)
})

// Default returns the embedded table.
func Default() (*Table, error) {
	return loadDefault()
}

// Load reads a table from path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("linkage: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a table.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("linkage: decode table: %w", err)
	}
	if len(t.Platforms) == 0 {
		return nil, errors.New("linkage: table has no platforms")
	}
	for i, p := range t.Platforms {
		if p.Name == "" || p.GOOS == "" {
			return nil, fmt.Errorf("linkage: platform %d: name and goos are required", i)
		}
		if len(p.Frameworks) == 0 && len(p.Modules) == 0 {
			return nil, fmt.Errorf("linkage: platform %q: needs frameworks or modules", p.Name)
		}
		for _, m := range p.Modules {
			if m.PkgConfig == "" {
				return nil, fmt.Errorf("linkage: platform %q: module without pkg_config", p.Name)
			}
		}
	}
	return &t, nil
}

// Lookup returns the platform for goos. Distros are tried in order (ID first,
// then ID_LIKE, as returned by DetectDistro); an entry without distros is the
// fallback for its goos.
func (t *Table) Lookup(goos string, distros ...string) (*Platform, error) {
	for _, d := range distros {
		for i := range t.Platforms {
			p := &t.Platforms[i]
			if p.GOOS == goos && slices.Contains(p.Distros, d) {
				return p, nil
			}
		}
	}
	for i := range t.Platforms {
		p := &t.Platforms[i]
		if p.GOOS == goos && len(p.Distros) == 0 {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, goos)
}

// Module returns the module selected by buildTags: the first module whose
// tag is set, else the first untagged module.
func (p *Platform) Module(buildTags ...string) (Module, bool) {
	for _, m := range p.Modules {
		if m.BuildTag != "" && slices.Contains(buildTags, m.BuildTag) {
			return m, true
		}
	}
	for _, m := range p.Modules {
		if m.BuildTag == "" {
			return m, true
		}
	}
	return Module{}, false
}

// LDFlags renders the linker flags for a framework platform.
func (p *Platform) LDFlags() []string {
	var flags []string
	for _, f := range p.Frameworks {
		flags = append(flags, "-framework", f)
	}
	return flags
}

// Directive renders the cgo directive that links m.
func (m Module) Directive() string {
	return "#cgo pkg-config: " + m.PkgConfig
}

// DetectDistro reads an os-release file and returns ID followed by the
// entries of ID_LIKE.
func DetectDistro(r io.Reader) []string {
	var id string
	var like []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		key, val, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok {
			continue
		}
		val = strings.Trim(val, `"'`)
		switch key {
		case "ID":
			id = strings.ToLower(val)
		case "ID_LIKE":
			like = strings.Fields(strings.ToLower(val))
		}
	}
	if id == "" {
		return like
	}
	return append([]string{id}, like...)
}

// DetectHostDistro reads /etc/os-release, falling back to
// /usr/lib/os-release. It returns nil when neither exists.
func DetectHostDistro() []string {
	for _, path := range []string{"/etc/os-release", "/usr/lib/os-release"} {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		defer f.Close()
		return DetectDistro(f)
	}
	return nil
}
