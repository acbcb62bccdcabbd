package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/utilization/modules/planning/domain/entry"
	"github.com/iota-uz/utilization/modules/planning/domain/format"
	"github.com/iota-uz/utilization/modules/planning/domain/plan"
	"github.com/iota-uz/utilization/modules/planning/services"
	"github.com/iota-uz/utilization/modules/roster/domain/match"
	"github.com/iota-uz/utilization/pkg/httpapi"
)

// PlanController serves imported plans read-only as JSON.
type PlanController struct {
	registry    *format.Registry
	planService *services.PlanService
	log         *logrus.Logger
	basePath    string
}

func NewPlanController(registry *format.Registry, planService *services.PlanService, log *logrus.Logger) *PlanController {
	return &PlanController{
		registry:    registry,
		planService: planService,
		log:         log,
		basePath:    "/plans",
	}
}

func (c *PlanController) Key() string {
	return c.basePath
}

func (c *PlanController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/{format}/latest", c.Latest).Methods(http.MethodGet)
	router.HandleFunc("/{format}/entries", c.Entries).Methods(http.MethodGet)
}

type entriesResponse struct {
	Plan    *plan.Plan     `json:"plan"`
	Entries []*entry.Entry `json:"entries"`
}

func (c *PlanController) Latest(w http.ResponseWriter, r *http.Request) {
	f, ok := c.format(w, r)
	if !ok {
		return
	}
	p, err := c.planService.Latest(r.Context(), f)
	if err != nil {
		c.readError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, p)
}

// Entries lists the entries of ?plan= (default latest), optionally filtered by
// ?status= and ?orgUnit=.
func (c *PlanController) Entries(w http.ResponseWriter, r *http.Request) {
	f, ok := c.format(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	status, err := match.ParseStatus(q.Get("status"))
	if err != nil {
		_ = httpapi.WriteRequestError(w, r, http.StatusBadRequest, httpapi.CodeInvalidRequest, err.Error())
		return
	}
	p, entries, err := c.planService.Entries(r.Context(), f, strings.TrimSpace(q.Get("plan")), plan.EntryFilter{
		Status:  status,
		OrgUnit: strings.TrimSpace(q.Get("orgUnit")),
	})
	if err != nil {
		c.readError(w, r, err)
		return
	}
	if entries == nil {
		entries = []*entry.Entry{}
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, entriesResponse{Plan: p, Entries: entries})
}

func (c *PlanController) format(w http.ResponseWriter, r *http.Request) (format.Format, bool) {
	kind := format.Kind(strings.ToLower(mux.Vars(r)["format"]))
	f, ok := c.registry.Get(kind)
	if !ok {
		_ = httpapi.WriteRequestError(w, r, http.StatusNotFound, httpapi.CodeNotFound, "unknown format "+string(kind))
	}
	return f, ok
}

func (c *PlanController) readError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, plan.ErrNotFound) {
		_ = httpapi.WriteRequestError(w, r, http.StatusNotFound, httpapi.CodeNotFound, err.Error())
		return
	}
	c.log.WithError(err).WithField("path", r.URL.Path).Error("failed to read plans")
	_ = httpapi.WriteRequestError(w, r, http.StatusInternalServerError, httpapi.CodeInternal, "failed to read plans")
}
