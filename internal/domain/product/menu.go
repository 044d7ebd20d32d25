package product

import "github.com/shopspring/decimal"

// InitialMenu returns the static menu definition the catalog is seeded
// with on every start.
func InitialMenu() []Product {
	return []Product{
		{ID: "1", Name: "Caipirinha Clássica", Price: decimal.NewFromFloat(25.00), Category: CategoryCocktail, Description: "Cachaça, limão e açúcar"},
		{ID: "2", Name: "Gin Tônica", Price: decimal.NewFromFloat(32.00), Category: CategoryCocktail, Description: "Gin importado, tônica e especiarias"},
		{ID: "3", Name: "Cerveja Artesanal IPA", Price: decimal.NewFromFloat(18.00), Category: CategoryDrink, Description: "500ml"},
		{ID: "4", Name: "Água sem Gás", Price: decimal.NewFromFloat(6.00), Category: CategoryDrink, Description: "350ml"},
		{ID: "5", Name: "Batata Frita Rústica", Price: decimal.NewFromFloat(28.00), Category: CategoryFood, Description: "Com alecrim e alho"},
		{ID: "6", Name: "Hambúrguer da Casa", Price: decimal.NewFromFloat(35.00), Category: CategoryFood, Description: "Blend 180g, queijo cheddar, bacon"},
		{ID: "7", Name: "Dadinho de Tapioca", Price: decimal.NewFromFloat(24.00), Category: CategoryFood, Description: "Acompanha geleia de pimenta"},
		{ID: "8", Name: "Petit Gâteau", Price: decimal.NewFromFloat(22.00), Category: CategoryDessert, Description: "Com sorvete de creme"},
		{ID: "9", Name: "Moscow Mule", Price: decimal.NewFromFloat(30.00), Category: CategoryCocktail, Description: "Vodka, espuma de gengibre e limão"},
		{ID: "10", Name: "Refrigerante Lata", Price: decimal.NewFromFloat(7.00), Category: CategoryDrink, Description: "Coca-cola, Guaraná"},
	}
}
