package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"taskboard/internal/db"
	"taskboard/internal/domain"
	"taskboard/internal/store"
)

func main() {
	login := flag.String("login", "", "user login")
	password := flag.String("password", "", "user password")
	flag.Parse()

	if *login == "" || *password == "" {
		log.Fatal("both -login and -password are required")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	st := store.NewPostgres(pool)
	ctx := context.Background()

	err := st.InsertUser(ctx, &domain.User{Login: *login, Password: *password})
	if errors.Is(err, store.ErrDuplicate) {
		log.Fatalf("user %s already exists", *login)
	}
	if err != nil {
		log.Fatalf("create user failed: %v", err)
	}

	u, err := st.FindUser(ctx, *login)
	if err != nil {
		log.Fatalf("read back failed: %v", err)
	}
	log.Printf("user created login=%s created_at=%v\n", u.Login, u.CreatedAt)
}
