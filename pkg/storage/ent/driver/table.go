package entdriver

import (
	"fmt"
	"strings"

	"entgo.io/ent"
	entschema "entgo.io/ent/dialect/sql/schema"

	"github.com/papercomputeco/innerai/pkg/storage/ent/schema"
)

// ExchangesTable is the migration table for schema.Exchange.
const ExchangesTable = "exchanges"

// Tables returns the migration tables derived from the ent schemas.
func Tables() ([]*entschema.Table, error) {
	exchanges, err := tableOf(ExchangesTable, schema.Exchange{})
	if err != nil {
		return nil, err
	}
	return []*entschema.Table{exchanges}, nil
}

// tableOf converts an ent schema's field and index descriptors into a
// migration table. The "id" field becomes the primary key.
func tableOf(name string, s ent.Interface) (*entschema.Table, error) {
	table := entschema.NewTable(name)

	for _, f := range s.Fields() {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, d.Name, d.Err)
		}

		column := &entschema.Column{
			Name:       d.Name,
			Type:       d.Info.Type,
			Size:       int64(d.Size),
			Unique:     d.Unique,
			Nullable:   d.Optional || d.Nillable,
			SchemaType: d.SchemaType,
		}
		if d.StorageKey != "" {
			column.Name = d.StorageKey
		}
		switch d.Default.(type) {
		case string, int, int64, bool:
			column.Default = d.Default
		}

		if d.Name == "id" {
			table.AddPrimary(column)
			continue
		}
		table.AddColumn(column)
	}

	if len(table.PrimaryKey) == 0 {
		return nil, fmt.Errorf("%s: schema has no id field", name)
	}

	for _, idx := range s.Indexes() {
		d := idx.Descriptor()

		for _, field := range d.Fields {
			if _, ok := table.Column(field); !ok {
				return nil, fmt.Errorf("%s: index on unknown field %q", name, field)
			}
		}

		indexName := d.StorageKey
		if indexName == "" {
			indexName = strings.TrimSuffix(name, "s") + "_" + strings.Join(d.Fields, "_")
		}
		table.AddIndex(indexName, d.Unique, d.Fields)
	}

	return table, nil
}
