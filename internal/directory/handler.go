// Package directory serves the read-side listings the kiosk form needs:
// host employees, companies, their locations and the location NDA content.
package directory

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"visitgate/internal/company"
	"visitgate/internal/employee"
	"visitgate/internal/location"
	"visitgate/internal/transport/http/shared"
	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

type Handler struct {
	employees employee.Store
	companies company.Store
	locations location.Store
}

func New(employees employee.Store, companies company.Store, locations location.Store) *Handler {
	return &Handler{employees: employees, companies: companies, locations: locations}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/visitor/employee", h.handleEmployees)
	r.Get("/visitor/company", h.handleCompanies)
	r.Get("/visitor/company/{companyID}/locations", h.handleCompanyLocations)
	r.Get("/company/getNDA", h.handleNDA)
}

func (h *Handler) handleEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employees.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if len(employees) == 0 {
		shared.Write(w, shared.StatusFailed, "No employees found.", shared.Fields{"Data": []any{}})
		return
	}

	data := make([]shared.Fields, 0, len(employees))
	for _, emp := range employees {
		data = append(data, shared.Fields{
			"id":         emp.ID.String(),
			"name":       emp.Name,
			"work_email": emp.Email,
			"work_phone": emp.Phone,
			"company_id": emp.CompanyID.String(),
		})
	}
	shared.WriteOK(w, "Employees fetched successfully.", shared.Fields{"Data": data})
}

func (h *Handler) handleCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.companies.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if len(companies) == 0 {
		shared.Write(w, shared.StatusFailed, "No companies found", shared.Fields{"Data": []any{}})
		return
	}

	data := make([]shared.Fields, 0, len(companies))
	for _, comp := range companies {
		data = append(data, shared.Fields{
			"id":   comp.ID.String(),
			"name": comp.Name,
		})
	}
	shared.WriteOK(w, "Companies fetched successfully", shared.Fields{"Data": data})
}

func (h *Handler) handleCompanyLocations(w http.ResponseWriter, r *http.Request) {
	companyID, err := domain.ParseCompanyID(chi.URLParam(r, "companyID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "Invalid company ID"))
		return
	}
	if _, err := h.companies.GetByID(r.Context(), companyID); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "Company not found"))
			return
		}
		shared.WriteError(w, err)
		return
	}

	locations, err := h.locations.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	data := make([]shared.Fields, 0, len(locations))
	for _, loc := range locations {
		if loc.CompanyID != companyID {
			continue
		}
		data = append(data, shared.Fields{
			"id":   loc.ID.String(),
			"name": loc.Name,
		})
	}
	shared.WriteOK(w, "Locations fetched successfully", shared.Fields{"data": data})
}

func (h *Handler) handleNDA(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("location_id")
	if raw == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "location_id is required"))
		return
	}
	locationID, err := domain.ParseLocationID(raw)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "location_id is not valid"))
		return
	}

	loc, err := h.locations.GetByID(r.Context(), locationID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "Location not found"))
			return
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteOK(w, "NDA Content fetched successfully", shared.Fields{
		"Location":    loc.Name,
		"NDA":         loc.NDA.Enabled,
		"NDARequired": loc.NDA.Required,
		"NDADetails":  loc.NDADetails,
	})
}
