package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"visitgate/internal/transport/http/shared"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/dashboard/counts", h.handleCounts)
	r.Get("/dashboard/visits", h.handleVisits)
}

func (h *Handler) handleCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.Counts(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteOK(w, "Counts fetched successfully.", shared.Fields{"Data": counts})
}

func (h *Handler) handleVisits(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.Today(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	data := make([]shared.Fields, 0, len(records))
	for _, record := range records {
		entry := shared.Fields{
			"id":         record.ID.String(),
			"name":       record.Name,
			"phone":      record.Phone,
			"purpose":    record.Purpose,
			"status":     string(record.Status),
			"visit_type": string(record.VisitType),
			"attendance": string(record.Attendance()),
		}
		if record.CheckInAt != nil {
			entry["check_in"] = record.CheckInAt.Format("2006-01-02 15:04:05")
		}
		if record.CheckOutAt != nil {
			entry["check_out"] = record.CheckOutAt.Format("2006-01-02 15:04:05")
		}
		data = append(data, entry)
	}
	shared.WriteOK(w, "Visits fetched successfully.", shared.Fields{"Data": data})
}
