package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ytakada1021/video-convert-aws-lambda/internal/transport/handler"
)

func NewRouter(h *handler.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/events", h.ServeEvents)
	r.Get("/hello", handler.ServeHello)
	r.Options("/hello", handler.ServeHello)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
