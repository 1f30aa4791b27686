package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"costbook/internal/handlers"
	applog "costbook/internal/log"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")

	mux.HandleFunc("/healthz", handlers.Health)
	mux.Handle("/metrics", promhttp.Handler())

	api := map[string]http.HandlerFunc{
		"/api/cost":                  handlers.Cost,
		"/api/costs":                 handlers.Costs,
		"/api/used-in":               handlers.UsedIn,
		"/api/convert":               handlers.Convert,
		"/api/units":                 handlers.Units,
		"/api/preferences":           handlers.Preferences,
		"/api/ingredients":           handlers.IngredientResource,
		"/api/ingredients/":          handlers.IngredientResource,
		"/api/recipes":               handlers.RecipeResource,
		"/api/recipes/":              handlers.RecipeResource,
		"/api/ingredient-relations":  handlers.IngredientRelationResource,
		"/api/ingredient-relations/": handlers.IngredientRelationResource,
		"/api/sub-recipe-relations":  handlers.SubRecipeRelationResource,
		"/api/sub-recipe-relations/": handlers.SubRecipeRelationResource,
	}
	for pattern, handler := range api {
		mux.Handle(pattern, s.withMiddleware(pattern, handler))
		applog.Debug(context.Background(), "route registered", "path", pattern)
	}
	return mux
}
