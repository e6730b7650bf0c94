package models

// All returns every model managed by schema automigration, in creation order.
func All() []any {
	return []any{
		&School{},
		&Student{},
		&License{},
	}
}
