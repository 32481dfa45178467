// Command createadmin provisions an admin user out of band: it inserts the
// user unless the username is already taken, and never overwrites an
// existing row.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/himique/Industial-Automation/auth"
	"github.com/himique/Industial-Automation/config"
	"github.com/himique/Industial-Automation/models"
	"github.com/himique/Industial-Automation/store"
)

func main() {
	username := flag.String("username", "admin", "username of the admin account")
	password := flag.String("password", "", "password of the admin account (or ADMIN_PASSWORD env)")
	flag.Parse()

	godotenv.Load()

	if *password == "" {
		*password = os.Getenv("ADMIN_PASSWORD")
	}
	if *password == "" {
		log.Fatal("A password is required: pass -password or set ADMIN_PASSWORD")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := config.Connect(dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.Fatalf("Failed to migrate users table: %v", err)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	_, created, err := store.EnsureUser(context.Background(), db, *username, hash, true)
	if err != nil {
		log.Fatalf("Failed to provision admin: %v", err)
	}
	if created {
		log.WithField("username", *username).Info("Admin user created")
	} else {
		log.WithField("username", *username).Info("Admin user already exists, left unchanged")
	}
}
