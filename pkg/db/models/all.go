package models

// All lists the models owned by the schema, in dependency order. Used by the
// sqlite auto-migration path; postgres uses the goose migrations.
func All() []any {
	return []any{
		&User{},
		&Store{},
		&SupplierProfile{},
		&Product{},
	}
}
