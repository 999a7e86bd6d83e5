package catalogs

// Sample returns a small catalog used by tests and examples.
func Sample() *Catalog {
	c, err := NewFromProducts([]Product{
		{ID: "pho-bo", Name: "Phở bò", Category: "noodles", Price: 4500, Stock: 20},
		{ID: "bun-cha", Name: "Bún chả", Category: "noodles", Price: 5000, Stock: 3},
		{ID: "banh-mi", Name: "Bánh mì", Category: "bread", Price: 2500, Stock: 0},
		{ID: "ca-phe", Name: "Cà phê sữa đá", Category: "drinks", Price: 1800, Stock: 50, Hidden: true},
	}, WithSource("sample"))
	if err != nil {
		panic(err)
	}
	return c
}
