package models

// Product is a read-only catalog entry.
type Product struct {
	ID    string  `json:"id" mapstructure:"id"`
	Name  string  `json:"name" mapstructure:"name"`
	Price float64 `json:"price" mapstructure:"price"`
}

// DefaultCatalog returns the built-in product reference data.
func DefaultCatalog() []Product {
	return []Product{
		{ID: "5d0b0c9e-7aa9-4b15-84a9-20111a597ad0", Name: "Aspirin", Price: 150.00},
		{ID: "a1b2c3d4-e5f6-47a8-9b0c-1d2e3f4a5b6c", Name: "No-Spa", Price: 280.00},
		{ID: "b2c3d4e5-f6a7-48b9-9c0d-2e3f4a5b6c7d", Name: "Paracetamol", Price: 90.00},
		{ID: "c3d4e5f6-a7b8-49c0-8d1e-3f4a5b6c7d8e", Name: "Ibuprofen", Price: 120.00},
	}
}
