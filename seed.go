package main

import (
	"context"
	"errors"
	"log"

	"mandale/internal/errs"
	"mandale/internal/models"
	"mandale/internal/services"
)

const demoSellerEmail = "demo.vendedor@mandale.test"

// seedDemoData registers a demo seller with a few listings. It does nothing
// when the seller already exists.
func seedDemoData(authService *services.AuthService, productService *services.ProductService) {
	ctx := context.Background()

	seller := &models.User{
		Username: "demo_vendedor",
		Email:    demoSellerEmail,
		Password: "demo1234",
		Name:     "Demo Vendedor",
		City:     "Córdoba",
	}
	if err := authService.RegisterUser(ctx, seller); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			log.Println("Demo data already present, skipping seed")
			return
		}
		log.Printf("Error seeding demo seller: %v", err)
		return
	}

	products := []services.ProductInput{
		{Title: "Notebook Lenovo ThinkPad T14", Description: "16GB RAM, 512GB SSD", Price: 850000, Category: "Computación", Condition: models.ConditionUsed, Stock: 1, WeightKg: 1.5},
		{Title: "Teclado mecánico Redragon", Description: "Switches red, retroiluminado", Price: 65000, Category: "Computación", Condition: models.ConditionNew, Stock: 5, WeightKg: 0.9},
		{Title: "Bicicleta rodado 29", Description: "Cuadro de aluminio, 21 cambios", Price: 420000, Category: "Deportes", Condition: models.ConditionRefurbished, Stock: 2, WeightKg: 14},
	}
	for _, in := range products {
		product, err := productService.CreateProduct(ctx, seller.ID, in)
		if err != nil {
			log.Printf("Error seeding product %s: %v", in.Title, err)
			continue
		}
		log.Printf("Seeded product: %s (ID: %s)", product.Title, product.ID)
	}
}
