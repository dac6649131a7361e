package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/config"
	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/domain"
	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/repository"
)

// seed-demo loads a small demo data set: one account per role plus two
// businesses with staff assignments, so a fresh database is usable right
// after `go run ./cmd/seed-demo`.
func main() {
	var password = flag.String("password", "ChangeMe123!", "Password for every demo account")
	flag.Parse()

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := repository.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		log.Fatalf("Cannot connect to MongoDB at %s: %v", cfg.Mongo.URI, err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.Mongo.Database)
	users := repository.NewMongoUserRepo(db)
	businesses := repository.NewMongoBusinessRepo(db)

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Cannot hash password: %v", err)
	}

	demoUsers := []*domain.User{
		{Username: "superadmin", Email: "superadmin@example.com", Roles: []string{domain.RoleSuperAdmin}},
		{Username: "admin", Email: "admin@example.com", Roles: []string{domain.RoleAdmin}},
		{Username: "writer", Email: "writer@example.com", Roles: []string{domain.RoleContentWriter}},
		{Username: "designer", Email: "designer@example.com", Roles: []string{domain.RoleContentDesigner}},
		{Username: "editor", Email: "editor@example.com", Roles: []string{domain.RoleVideoEditor}},
	}

	fmt.Println("Demo Accounts:")
	fmt.Println("Username | Email | Roles")
	fmt.Println("---------|-------|------")
	created := map[string]primitive.ObjectID{}
	for _, u := range demoUsers {
		if existing, err := users.GetByLogin(ctx, u.Username); err == nil {
			created[u.Username] = existing.ID
			fmt.Printf("%s | %s | %v (already present)\n", existing.Username, existing.Email, existing.Roles)
			continue
		}
		u.Password = string(hash)
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("Cannot create user %s: %v", u.Username, err)
		}
		created[u.Username] = u.ID
		fmt.Printf("%s | %s | %v\n", u.Username, u.Email, u.Roles)
	}

	demoBusinesses := []*domain.Business{
		{
			BusinessName:   "Acme Coffee Roasters",
			TypeOfBusiness: "Cafe",
			ContactPerson:  "Dana Reyes",
			Tags:           "#coffee #local",
			AssignedCW:     []primitive.ObjectID{created["writer"]},
			AssignedCD:     []primitive.ObjectID{created["designer"]},
			AssignedVE:     []primitive.ObjectID{created["editor"]},
		},
		{
			BusinessName:   "Northside Fitness",
			TypeOfBusiness: "Gym",
			ContactPerson:  "Sam Okafor",
			Tags:           "#fitness",
			AssignedCW:     []primitive.ObjectID{created["writer"]},
			AssignedCD:     []primitive.ObjectID{created["designer"]},
		},
	}

	fmt.Println("\nDemo Businesses:")
	existing, err := businesses.List(ctx)
	if err != nil {
		log.Fatalf("Cannot list businesses: %v", err)
	}
	present := map[string]bool{}
	for _, b := range existing {
		present[b.BusinessName] = true
	}
	for _, b := range demoBusinesses {
		if present[b.BusinessName] {
			fmt.Printf("%s (already present)\n", b.BusinessName)
			continue
		}
		if err := businesses.Create(ctx, b); err != nil {
			log.Fatalf("Cannot create business %s: %v", b.BusinessName, err)
		}
		fmt.Printf("%s (%s)\n", b.BusinessName, b.TypeOfBusiness)
	}

	fmt.Printf("\nDone. Log in with any account above and password %q.\n", *password)
}
