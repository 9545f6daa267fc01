// Package entity holds the gorm models for the cafe database.
package entity

// All returns every model, in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Product{},
		&Customer{},
		&CustomerSession{},
		&Order{},
		&OrderItem{},
	}
}
