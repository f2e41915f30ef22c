package entity

import (
	_ "embed"
	"fmt"
	"sort"

	"aspataal/internal/apperr"

	"gopkg.in/yaml.v3"
)

//go:embed entities.yaml
var defaultDescriptors []byte

type document struct {
	Entities map[string]*Descriptor `yaml:"entities"`
	Options  map[string]*OptionList `yaml:"options"`
}

// Registry is the immutable set of descriptors loaded at start-up.
type Registry struct {
	entities map[string]*Descriptor
	options  map[string]*OptionList
}

// Default loads the descriptors compiled into the binary.
func Default() (*Registry, error) {
	return Load(defaultDescriptors)
}

// Load parses and validates a descriptor document.
func Load(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse entities: %w", err)
	}
	if len(doc.Entities) == 0 {
		return nil, fmt.Errorf("no entities declared")
	}
	reg := &Registry{
		entities: make(map[string]*Descriptor, len(doc.Entities)),
		options:  make(map[string]*OptionList, len(doc.Options)),
	}
	for name, d := range doc.Entities {
		if d == nil {
			return nil, fmt.Errorf("entity %s: empty descriptor", name)
		}
		d.Name = name
		if err := validateDescriptor(d); err != nil {
			return nil, fmt.Errorf("entity %s: %w", name, err)
		}
		reg.entities[name] = d
	}
	for name, o := range doc.Options {
		if o == nil {
			return nil, fmt.Errorf("option list %s: empty", name)
		}
		o.Name = name
		d, ok := reg.entities[o.Entity]
		if !ok {
			return nil, fmt.Errorf("option list %s: unknown entity %q", name, o.Entity)
		}
		for _, col := range []string{o.Value, o.Label} {
			if !d.HasColumn(col) {
				return nil, fmt.Errorf("option list %s: unknown column %q", name, col)
			}
		}
		if o.OrderBy != "" && !d.HasColumn(o.OrderBy) {
			return nil, fmt.Errorf("option list %s: unknown order column %q", name, o.OrderBy)
		}
		reg.options[name] = o
	}
	return reg, nil
}

func validateDescriptor(d *Descriptor) error {
	if d.Table == "" {
		return fmt.Errorf("table is required")
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("columns are required")
	}
	for col, typ := range d.Columns {
		switch typ {
		case TypeInt, TypeDecimal, TypeString, TypeDatetime:
		default:
			return fmt.Errorf("column %s: unknown type %q", col, typ)
		}
	}
	if len(d.PrimaryKeys) == 0 {
		return fmt.Errorf("primary_keys are required")
	}
	if err := knownColumns(d, "primary_keys", d.PrimaryKeys); err != nil {
		return err
	}
	if len(d.List) == 0 {
		return fmt.Errorf("list fields are required")
	}
	sets := map[string][]string{
		"list":   d.List,
		"view":   d.View,
		"edit":   d.Edit,
		"add":    d.Add,
		"search": d.Search,
		"unique": d.Unique,
		"hashed": d.Hashed,
	}
	for name, fields := range d.Listings {
		if name == IndexListing {
			return fmt.Errorf("listing name %q is reserved", name)
		}
		sets["listings."+name] = fields
	}
	for name, fields := range sets {
		if err := knownColumns(d, name, fields); err != nil {
			return err
		}
	}
	for _, col := range d.Search {
		if d.Type(col) != TypeString {
			return fmt.Errorf("search column %s must be a string column", col)
		}
	}
	for _, col := range d.Hashed {
		for name, fields := range sets {
			if name == "hashed" || name == "add" || name == "unique" {
				continue
			}
			for _, f := range fields {
				if f == col {
					return fmt.Errorf("hashed column %s must not appear in %s", col, name)
				}
			}
		}
	}
	for _, m := range []map[string]string{d.Rules, d.Defaults, d.Confirm} {
		for col := range m {
			if !d.HasColumn(col) {
				return fmt.Errorf("unknown column %q", col)
			}
		}
	}
	for col, raw := range d.Defaults {
		if _, err := d.Parse(col, raw); err != nil {
			return fmt.Errorf("default for %s: %w", col, err)
		}
	}
	if d.OrderBy != "" && !d.HasColumn(d.OrderBy) {
		return fmt.Errorf("unknown order_by column %q", d.OrderBy)
	}
	if d.Stamp != "" && d.Type(d.Stamp) != TypeDatetime {
		return fmt.Errorf("stamp column %s must be a datetime column", d.Stamp)
	}
	return nil
}

func knownColumns(d *Descriptor, set string, fields []string) error {
	for _, f := range fields {
		if !d.HasColumn(f) {
			return fmt.Errorf("%s: unknown column %q", set, f)
		}
	}
	return nil
}

// Get returns the descriptor registered under name.
func (r *Registry) Get(name string) (*Descriptor, error) {
	d, ok := r.entities[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperr.ErrUnknownEntity, name)
	}
	return d, nil
}

// Option returns the option list registered under name.
func (r *Registry) Option(name string) (*OptionList, *Descriptor, error) {
	o, ok := r.options[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: option list %s", apperr.ErrUnknownEntity, name)
	}
	return o, r.entities[o.Entity], nil
}

// Names lists the registered entities in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entities))
	for n := range r.entities {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
