package manifest

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/wxsbridge/internal/bridge"
)

// Manifest is the build-time module table for a set of components.
type Manifest struct {
	Components []Component
}

// Component lists the modules one component declares and the module ids
// the build assigned to them.
type Component struct {
	Name            string
	OwnerID         int
	WXS             []string
	RenderJS        []string
	WXSModules      bridge.ModuleTable
	RenderJSModules bridge.ModuleTable
}

type fileManifest struct {
	Components []fileComponent `toml:"components"`
}

type fileComponent struct {
	Name            string            `toml:"name"`
	OwnerID         int               `toml:"owner_id"`
	WXS             []string          `toml:"wxs"`
	RenderJS        []string          `toml:"renderjs"`
	WXSModules      map[string]string `toml:"wxs_modules"`
	RenderJSModules map[string]string `toml:"renderjs_modules"`
}

// Load reads and validates a manifest file.
func Load(path string) (Manifest, error) {
	var raw fileManifest
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest load failed (%s): %w", path, err)
	}
	m, err := build(raw, meta)
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest invalid (%s): %w", path, err)
	}
	return m, nil
}

// Parse decodes and validates manifest text.
func Parse(data string) (Manifest, error) {
	var raw fileManifest
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest parse failed: %w", err)
	}
	return build(raw, meta)
}

func build(raw fileManifest, meta toml.MetaData) (Manifest, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return Manifest{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	m := Manifest{Components: make([]Component, 0, len(raw.Components))}
	for i, fc := range raw.Components {
		c := Component{
			Name:            strings.TrimSpace(fc.Name),
			OwnerID:         fc.OwnerID,
			WXS:             normalizeNames(fc.WXS),
			RenderJS:        normalizeNames(fc.RenderJS),
			WXSModules:      bridge.ModuleTable(fc.WXSModules),
			RenderJSModules: bridge.ModuleTable(fc.RenderJSModules),
		}
		if c.OwnerID <= 0 {
			c.OwnerID = i + 1
		}
		m.Components = append(m.Components, c)
	}
	if err := Validate(m); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Validate checks component names and owner ids are unique and that
// declarations are well formed. A declared name without a module id is not
// a validation failure; the registrar reports it at bind time.
func Validate(m Manifest) error {
	names := make(map[string]struct{}, len(m.Components))
	owners := make(map[int]string, len(m.Components))
	for i, c := range m.Components {
		if c.Name == "" {
			return fmt.Errorf("component[%d] missing name", i)
		}
		if _, ok := names[c.Name]; ok {
			return fmt.Errorf("component %q declared twice", c.Name)
		}
		names[c.Name] = struct{}{}
		if prev, ok := owners[c.OwnerID]; ok {
			return fmt.Errorf("component %q reuses owner_id %d of %q", c.Name, c.OwnerID, prev)
		}
		owners[c.OwnerID] = c.Name
		if err := validateDeclared(c.WXS); err != nil {
			return fmt.Errorf("component %q wxs: %w", c.Name, err)
		}
		if err := validateDeclared(c.RenderJS); err != nil {
			return fmt.Errorf("component %q renderjs: %w", c.Name, err)
		}
	}
	return nil
}

func validateDeclared(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if strings.Contains(name, ".") {
			return fmt.Errorf("module name %q contains '.'", name)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("module name %q declared twice", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func normalizeNames(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, name := range in {
		v := strings.TrimSpace(name)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Component returns the component with the given name.
func (m Manifest) Component(name string) (Component, bool) {
	for _, c := range m.Components {
		if c.Name == name {
			return c, true
		}
	}
	return Component{}, false
}

// Names returns component names sorted.
func (m Manifest) Names() []string {
	out := make([]string, 0, len(m.Components))
	for _, c := range m.Components {
		out = append(out, c.Name)
	}
	sort.Strings(out)
	return out
}

// Declared returns the module names c declares for kind.
func (c Component) Declared(kind bridge.Kind) []string {
	switch kind {
	case bridge.KindWXS:
		return c.WXS
	case bridge.KindRenderJS:
		return c.RenderJS
	default:
		return nil
	}
}

// Table returns the name to module id table for kind.
func (c Component) Table(kind bridge.Kind) bridge.ModuleTable {
	switch kind {
	case bridge.KindWXS:
		return c.WXSModules
	case bridge.KindRenderJS:
		return c.RenderJSModules
	default:
		return nil
	}
}

// Bind creates the component's owner and registers its wxs modules, then its
// renderjs modules. The owner is always returned; err joins any
// MissingModuleErrors for names that were skipped.
func (c Component) Bind(r *bridge.Registrar) (*bridge.Owner, error) {
	owner := bridge.NewOwner(c.OwnerID)
	var errs []error
	for _, kind := range []bridge.Kind{bridge.KindWXS, bridge.KindRenderJS} {
		if err := r.InitModules(owner, kind, c.Declared(kind), c.Table(kind)); err != nil {
			errs = append(errs, err)
		}
	}
	return owner, errors.Join(errs...)
}
