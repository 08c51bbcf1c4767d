package catalog

// Default returns the flower shop catalog used when no catalog file is configured.
func Default() *Index {
	return New([]Product{
		{ID: "bouquet_roses", Title: "Bouquet of Red Roses", Price: 3500, Category: "flowers"},
		{ID: "bouquet_sunflowers", Title: "Sunflower Bundle", Price: 2500, Category: "flowers"},
		{ID: "bouquet_tulips", Title: "Spring Tulips", Price: 3000, Category: "flowers"},
		{ID: "orchid_white", Title: "White Orchid", Price: 4500, Category: "flowers"},
		{ID: "pot_ceramic", Title: "Ceramic Pot", Price: 1500, Category: "accessories"},
		{ID: "gardenias", Title: "Gardenias", Price: 2000, Category: "flowers"},
	})
}
