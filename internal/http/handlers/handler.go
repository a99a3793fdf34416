package handlers

import (
	"taskboard/internal/service"
	"taskboard/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB    *pgxpool.Pool
	Users *service.UserService
}

func NewHandler(db *pgxpool.Pool, st store.Store) *Handler {
	return &Handler{
		DB:    db,
		Users: service.NewUserService(st),
	}
}
