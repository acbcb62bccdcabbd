package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/utilization/pkg/httpapi"
)

type HealthController struct {
	basePath string
}

func NewHealthController() *HealthController {
	return &HealthController{basePath: "/healthz"}
}

func (c *HealthController) Key() string {
	return c.basePath
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc(c.basePath, c.Get).Methods(http.MethodGet)
}

func (c *HealthController) Get(w http.ResponseWriter, _ *http.Request) {
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
