package server

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/gravitas-games/crimeboss/internal/network"
	"github.com/gravitas-games/crimeboss/pkg/crafting"
	"github.com/gravitas-games/crimeboss/pkg/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, network.ErrorPayload{Code: code, Message: message})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"bosses": s.session.BossCount(),
	})
}

// handleCatalog lists every item definition
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Catalog().Export())
}

// handleItem returns one item definition
func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	id := models.ItemID(mux.Vars(r)["id"])
	def, ok := s.engine.Catalog().Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_item", s.engine.Catalog().UnknownItemError(id).Error())
		return
	}
	writeJSON(w, http.StatusOK, def.Details())
}

// handleRecipes lists crafting recipes, optionally filtered by ?category=
// and ?output=
func (s *Server) handleRecipes(w http.ResponseWriter, r *http.Request) {
	reg := s.engine.Recipes()
	category := r.URL.Query().Get("category")
	output := models.ItemID(r.URL.Query().Get("output"))

	var ids []crafting.RecipeID
	switch {
	case category != "" && output != "":
		produces := make(map[crafting.RecipeID]bool)
		for _, id := range reg.GetByOutput(output) {
			produces[id] = true
		}
		for _, id := range reg.GetByCategory(category) {
			if produces[id] {
				ids = append(ids, id)
			}
		}
	case category != "":
		ids = reg.GetByCategory(category)
	case output != "":
		ids = reg.GetByOutput(output)
	default:
		writeJSON(w, http.StatusOK, reg.GetAll())
		return
	}

	recipes := make([]*crafting.Recipe, 0, len(ids))
	for _, id := range ids {
		if recipe := reg.Lookup(id); recipe != nil {
			recipes = append(recipes, recipe)
		}
	}
	sort.Slice(recipes, func(i, j int) bool { return recipes[i].ID < recipes[j].ID })
	writeJSON(w, http.StatusOK, recipes)
}

// handleState returns the caller's save
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	tokenString := extractTokenFromHeader(r)
	if tokenString == "" {
		writeError(w, http.StatusUnauthorized, "not_authenticated", "Missing authentication token")
		return
	}
	boss, err := s.validator.ValidateToken(tokenString)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not_authenticated", err.Error())
		return
	}
	store, err := s.session.Store(r.Context(), boss)
	if err != nil {
		s.log.WithError(err).WithField("boss", boss.SaveKey()).Error("Failed to open save")
		writeError(w, http.StatusInternalServerError, "save_unavailable", "Failed to load your save")
		return
	}
	writeJSON(w, http.StatusOK, network.SnapshotPayload{State: store.State()})
}
