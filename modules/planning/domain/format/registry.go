package format

import (
	"fmt"
	"regexp"

	"github.com/BurntSushi/toml"
)

// uploadPathRe matches "uploads/<format>/<userId>/<file>.xlsx".
var uploadPathRe = regexp.MustCompile(`^uploads/([a-z]+)/([^/]+)/([^/]+\.[xX][lL][sS][xX])$`)

// Upload is an object path routed to a format.
type Upload struct {
	Format   Format
	UserID   string
	FileName string
}

type Registry struct {
	formats map[Kind]Format
}

func NewRegistry(formats ...Format) *Registry {
	r := &Registry{formats: make(map[Kind]Format, len(formats))}
	for _, f := range formats {
		r.formats[f.Kind] = f
	}
	return r
}

// DefaultRegistry knows the Einsatzplan and Workload formats.
func DefaultRegistry() *Registry {
	return NewRegistry(Einsatzplan(), Workload())
}

func (r *Registry) Get(kind Kind) (Format, bool) {
	f, ok := r.formats[kind]
	return f, ok
}

// Route maps an uploaded object path to its format. Paths outside the upload
// layout or naming an unknown format are not routed.
func (r *Registry) Route(objectPath string) (Upload, bool) {
	m := uploadPathRe.FindStringSubmatch(objectPath)
	if m == nil {
		return Upload{}, false
	}
	f, ok := r.formats[Kind(m[1])]
	if !ok {
		return Upload{}, false
	}
	return Upload{Format: f, UserID: m[2], FileName: m[3]}, true
}

// LoadOverrides applies a TOML file of per-format overrides, keyed by format kind:
//
//	[auslastung]
//	sheet = "Auslastung 2025"
//	header_row = 1
//	data_offset = 2
func (r *Registry) LoadOverrides(path string) error {
	var raw map[string]toml.Primitive
	md, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("read format overrides: %w", err)
	}
	for name, prim := range raw {
		f, ok := r.formats[Kind(name)]
		if !ok {
			return fmt.Errorf("format overrides: unknown format %q", name)
		}
		if err := md.PrimitiveDecode(prim, &f); err != nil {
			return fmt.Errorf("format overrides [%s]: %w", name, err)
		}
		if err := f.Validate(); err != nil {
			return fmt.Errorf("format overrides: %w", err)
		}
		r.formats[f.Kind] = f
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("format overrides: unknown keys %v", undecoded)
	}
	return nil
}
