package entity

import "slices"

// ColumnType is the storage type of a declared column.
type ColumnType string

const (
	TypeInt      ColumnType = "int"
	TypeDecimal  ColumnType = "decimal"
	TypeString   ColumnType = "string"
	TypeDatetime ColumnType = "datetime"
)

// IndexListing is the listing served by GET /{entity} and /{entity}/index.
const IndexListing = "index"

// Descriptor is the static metadata of one manageable table.
type Descriptor struct {
	Name        string                `yaml:"-"`
	Table       string                `yaml:"table"`
	PrimaryKeys []string              `yaml:"primary_keys"`
	Columns     map[string]ColumnType `yaml:"columns"`

	List   []string `yaml:"list"`
	View   []string `yaml:"view"`
	Edit   []string `yaml:"edit"`
	Add    []string `yaml:"add"`    // defaults to Edit
	Search []string `yaml:"search"` // string columns only

	OrderBy  string              `yaml:"order_by"`
	Listings map[string][]string `yaml:"listings"` // extra named list projections

	Rules    map[string]string `yaml:"rules"`   // validator tags per column
	Confirm  map[string]string `yaml:"confirm"` // column -> payload key that must repeat it
	Unique   []string          `yaml:"unique"`
	Hashed   []string          `yaml:"hashed"`
	Defaults map[string]string `yaml:"defaults"` // forced on insert
	Stamp    string            `yaml:"stamp"`    // set to now on insert
	ReadOnly bool              `yaml:"readonly"`
}

// OptionList describes a value/label list for form selects.
type OptionList struct {
	Name     string `yaml:"-"`
	Entity   string `yaml:"entity"`
	Value    string `yaml:"value"`
	Label    string `yaml:"label"`
	Distinct bool   `yaml:"distinct"`
	OrderBy  string `yaml:"order_by"`
	Desc     bool   `yaml:"desc"`
}

func (d *Descriptor) HasColumn(name string) bool {
	_, ok := d.Columns[name]
	return ok
}

// Filterable reports whether col may be used in a list filter or sort.
// Hashed columns are excluded.
func (d *Descriptor) Filterable(col string) bool {
	return d.HasColumn(col) && !d.IsHashed(col)
}

func (d *Descriptor) Type(name string) ColumnType {
	return d.Columns[name]
}

// PrimaryKey returns the key used for view/edit/delete lookups.
func (d *Descriptor) PrimaryKey() string {
	if len(d.PrimaryKeys) > 0 {
		return d.PrimaryKeys[0]
	}
	return "id"
}

// DefaultOrder is the sort column used when a request names none or an
// unknown one.
func (d *Descriptor) DefaultOrder() string {
	if d.OrderBy != "" {
		return d.OrderBy
	}
	return d.PrimaryKey()
}

// Listing returns the projection for a named listing.
func (d *Descriptor) Listing(name string) ([]string, bool) {
	if name == "" || name == IndexListing {
		return d.List, true
	}
	fields, ok := d.Listings[name]
	return fields, ok
}

func (d *Descriptor) IsUnique(col string) bool { return slices.Contains(d.Unique, col) }

func (d *Descriptor) IsHashed(col string) bool { return slices.Contains(d.Hashed, col) }

// AddFields is the set of columns an add payload may carry.
func (d *Descriptor) AddFields() []string {
	if len(d.Add) > 0 {
		return d.Add
	}
	return d.Edit
}

// Writable reports whether col may be supplied by an add (insert) or update
// payload.
func (d *Descriptor) Writable(col string, insert bool) bool {
	if insert {
		return slices.Contains(d.AddFields(), col)
	}
	return slices.Contains(d.Edit, col) || d.IsHashed(col)
}
