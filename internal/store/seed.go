package store

import "shopos/backend/internal/domain"

// SeedProducts is the starter catalog used when no products document exists.
func SeedProducts() []domain.Product {
	return []domain.Product{
		{ID: "p1", Name: "Indomie Noodles", SellPrice: 500, BuyPrice: 400, Stock: 200},
		{ID: "p2", Name: "Taliya Spaghetti", SellPrice: 1300, BuyPrice: 1100, Stock: 50},
		{ID: "p3", Name: "Sugar (Kg)", SellPrice: 1500, BuyPrice: 1250, Stock: 75},
		{ID: "p4", Name: "Cooking Oil (L)", SellPrice: 4000, BuyPrice: 3500, Stock: 30},
		{ID: "p5", Name: "Chips", SellPrice: 1000, BuyPrice: 700, Stock: 50},
		{ID: "p6", Name: "Yam", SellPrice: 300, BuyPrice: 200, Stock: 50},
		{ID: "p7", Name: "Egg", SellPrice: 300, BuyPrice: 200, Stock: 200},
		{ID: "p8", Name: "Maggi Cubes", SellPrice: 50, BuyPrice: 30, Stock: 500},
	}
}

func SeedCustomers() []string {
	return []string{"Regular A", "Mama Uche", "Mr. Tunde"}
}
