// Package handler exposes the visitor lifecycle over HTTP with the Status
// envelope the kiosk and mobile clients expect.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"visitgate/internal/badge"
	"visitgate/internal/transport/http/shared"
	"visitgate/internal/visit"
	"visitgate/internal/visit/service"
	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

// Service is the slice of the visit service the handlers call.
type Service interface {
	RequestCode(ctx context.Context, phone string) (*service.CodeDelivery, error)
	VerifyCode(ctx context.Context, phone, code string) (*service.Verification, error)
	CheckInOut(ctx context.Context, id domain.VisitID, action string) (*service.AttendanceResult, error)
	Approve(ctx context.Context, id domain.VisitID) (*visit.Record, error)
	Cancel(ctx context.Context, id domain.VisitID, reason string) (*visit.Record, error)
	ResendPassLink(ctx context.Context, phone string) error
	SubmitForm(ctx context.Context, fields map[string]any) (*visit.Record, error)
	SubmitNdaPhoto(ctx context.Context, id domain.VisitID, ndaImage, photoImage []byte) (*service.ImageURLs, error)
	GetImage(ctx context.Context, id domain.VisitID, kind string) ([]byte, error)
	SubmitAnswers(ctx context.Context, id domain.VisitID, answers []service.AnswerSubmission) error
	Requirements(ctx context.Context, id domain.VisitID) (*service.RequirementSet, error)
	Questions(ctx context.Context, id domain.VisitID) (*service.VisitQuestions, error)
	NotifyEmployee(ctx context.Context, id domain.VisitID) error
	VerifyQR(ctx context.Context, token string, deviceID domain.DeviceID, deviceSecret string) (*visit.Record, error)
	DownloadBadge(ctx context.Context, token string) (*badge.Attachment, error)
}

type Handler struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the visitor routes. The shared middleware chain is applied
// by the top-level router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/visitor/SendOTP", h.handleSendOTP)
	r.Post("/visitor/verifyOTP", h.handleVerifyOTP)
	r.Post("/visitor/checkin_out", h.handleCheckInOut)
	r.Post("/visitor/submitForm", h.handleSubmitForm)
	r.Post("/visitor/approve", h.handleApprove)
	r.Post("/visitor/cancel", h.handleCancel)
	r.Post("/visitor/send_sms", h.handleResendPassLink)
	r.Post("/visitor/sendNotification", h.handleNotifyEmployee)
	r.Post("/visitor/requirements", h.handleRequirements)
	r.Post("/visitor/nda_photo", h.handleNdaPhoto)
	r.Post("/visitor/get_questions", h.handleGetQuestions)
	r.Post("/visitor/submit_answer", h.handleSubmitAnswers)
	r.Post("/visitor/verify/{token}", h.handleVerifyQR)
	r.Get("/visitor/pass/{token}", h.handleDownloadBadge)
	r.Get("/visitor/image/{visitorID}/{kind}", h.handleGetImage)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	return true
}

// visitorID parses the visitor id field shared by most request bodies.
func visitorID(w http.ResponseWriter, raw string) (domain.VisitID, bool) {
	if raw == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Visitor ID is required."))
		return domain.VisitID{}, false
	}
	id, err := domain.ParseVisitID(raw)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "Visitor ID is not valid."))
		return domain.VisitID{}, false
	}
	return id, true
}

type sendOTPRequest struct {
	MobileNumber string `json:"mobileNumber"`
}

func (h *Handler) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if !h.decode(w, r, &req) {
		return
	}

	delivery, err := h.svc.RequestCode(r.Context(), req.MobileNumber)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if !delivery.Sent {
		shared.Write(w, shared.StatusFailed, "Failed to send OTP. Please try again.", shared.Fields{
			"VisitorID": delivery.VisitID.String(),
			"Data":      nil,
		})
		return
	}
	code, _ := strconv.Atoi(delivery.Code)
	shared.WriteOK(w, "OTP sent successfully.", shared.Fields{
		"VisitorID": delivery.VisitID.String(),
		"Data":      code,
	})
}

type verifyOTPRequest struct {
	MobileNumber string `json:"mobileNumber"`
	AccessToken  string `json:"accessToken"`
}

func (h *Handler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.svc.VerifyCode(r.Context(), req.MobileNumber, req.AccessToken)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	switch result.Kind {
	case service.VerificationNewUser:
		extra := shared.Fields{"Newuser": 1, "Data": map[string]any{}}
		if result.Visit != nil {
			extra["VisitorID"] = result.Visit.ID.String()
		}
		shared.WriteOK(w, "New user - please register", extra)
	case service.VerificationNotApproved:
		shared.Write(w, shared.StatusFailed,
			"Visitor not approved yet (status="+string(result.Status)+").",
			shared.Fields{"Data": map[string]any{}})
	default:
		shared.WriteOK(w, "OTP verified successfully.", shared.Fields{
			"VisitorID": result.Visit.ID.String(),
		})
	}
}

type checkInOutRequest struct {
	VisitorID string `json:"visitor_id"`
	Action    string `json:"action"`
}

func (h *Handler) handleCheckInOut(w http.ResponseWriter, r *http.Request) {
	var req checkInOutRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.VisitorID == "" || req.Action == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request. Visitor ID and action are required."))
		return
	}
	id, ok := visitorID(w, req.VisitorID)
	if !ok {
		return
	}

	result, err := h.svc.CheckInOut(r.Context(), id, req.Action)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	data := shared.Fields{"name": result.Visit.Name}
	at := result.At.Format("2006-01-02 15:04:05")
	if result.Action == service.ActionCheckIn {
		data["check_in"] = at
		shared.WriteOK(w, "Visitor check-in successful.", shared.Fields{"Data": data})
		return
	}
	data["check_out"] = at
	shared.WriteOK(w, "Visitor check-out successful.", shared.Fields{"Data": data})
}

func (h *Handler) handleSubmitForm(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if !h.decode(w, r, &fields) {
		return
	}

	record, err := h.svc.SubmitForm(r.Context(), fields)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteOK(w, "Form submitted successfully!", shared.Fields{
		"VisitorID": record.ID.String(),
	})
}

type approveRequest struct {
	VisitorID string `json:"visitor_id"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, ok := visitorID(w, req.VisitorID)
	if !ok {
		return
	}

	record, err := h.svc.Approve(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteOK(w, "Visitor approved.", shared.Fields{
		"VisitorID": record.ID.String(),
		"Data": shared.Fields{
			"status":     string(record.Status),
			"attendance": string(record.Attendance()),
		},
	})
}

type cancelRequest struct {
	VisitorID string `json:"visitor_id"`
	Reason    string `json:"reason"`
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, ok := visitorID(w, req.VisitorID)
	if !ok {
		return
	}

	record, err := h.svc.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteOK(w, "Visit cancelled.", shared.Fields{
		"VisitorID": record.ID.String(),
	})
}

type resendPassRequest struct {
	Phone        string `json:"phone"`
	MobileNumber string `json:"mobileNumber"`
}

func (h *Handler) handleResendPassLink(w http.ResponseWriter, r *http.Request) {
	var req resendPassRequest
	if !h.decode(w, r, &req) {
		return
	}
	phone := req.Phone
	if phone == "" {
		phone = req.MobileNumber
	}

	if err := h.svc.ResendPassLink(r.Context(), phone); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnavailable) {
			shared.Write(w, shared.StatusFailed, "Failed to send SMS", nil)
			return
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteOK(w, "Download link sent via SMS", nil)
}

type notifyEmployeeRequest struct {
	VisitorID string `json:"visitor_id"`
}

func (h *Handler) handleNotifyEmployee(w http.ResponseWriter, r *http.Request) {
	var req notifyEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, ok := visitorID(w, req.VisitorID)
	if !ok {
		return
	}

	if err := h.svc.NotifyEmployee(r.Context(), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteOK(w, "Notification sent to employee!", shared.Fields{
		"VisitorID": id.String(),
	})
}

type requirementsRequest struct {
	VisitorID string `json:"visitor_id"`
}

func (h *Handler) handleRequirements(w http.ResponseWriter, r *http.Request) {
	var req requirementsRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, ok := visitorID(w, req.VisitorID)
	if !ok {
		return
	}

	set, err := h.svc.Requirements(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteOK(w, "Requirements", shared.Fields{
		"VisitorID": set.VisitID.String(),
		"NDA":       set.NDA,
		"Photo":     set.Photo,
		"Questions": set.Questions,
	})
}

type ndaPhotoRequest struct {
	VisitorID   string `json:"visitor_id"`
	NDAAnswer   []byte `json:"nda_answer"`
	PhotoAnswer []byte `json:"photo_answer"`
}

func (h *Handler) handleNdaPhoto(w http.ResponseWriter, r *http.Request) {
	var req ndaPhotoRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, ok := visitorID(w, req.VisitorID)
	if !ok {
		return
	}

	urls, err := h.svc.SubmitNdaPhoto(r.Context(), id, req.NDAAnswer, req.PhotoAnswer)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteOK(w, "NDA/Photo updated successfully!", shared.Fields{
		"VisitorID": id.String(),
		"NDA_URL":   urls.NDA,
		"PhotoURL":  urls.Photo,
	})
}

type getQuestionsRequest struct {
	VisitorID string `json:"visitor_id"`
}

func (h *Handler) handleGetQuestions(w http.ResponseWriter, r *http.Request) {
	var req getQuestionsRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, ok := visitorID(w, req.VisitorID)
	if !ok {
		return
	}

	result, err := h.svc.Questions(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	questions := make([]shared.Fields, 0, len(result.Questions))
	for _, question := range result.Questions {
		questions = append(questions, shared.Fields{
			"id":       question.ID.String(),
			"question": question.Text,
			"type":     "checkbox",
			"required": question.Required,
		})
	}
	shared.WriteOK(w, "Questions fetched successfully.", shared.Fields{
		"VisitorID":  result.VisitID.String(),
		"CompanyID":  result.CompanyID.String(),
		"LocationID": result.LocationID.String(),
		"Questions":  questions,
	})
}

type submitAnswersRequest struct {
	VisitorID string `json:"visitor_id"`
	Answers   []struct {
		QuestionID      string `json:"question_id"`
		AnswerSelection string `json:"answer_selection"`
	} `json:"answers"`
}

func (h *Handler) handleSubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var req submitAnswersRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, ok := visitorID(w, req.VisitorID)
	if !ok {
		return
	}

	answers := make([]service.AnswerSubmission, 0, len(req.Answers))
	for _, answer := range req.Answers {
		// A malformed question id behaves like a missing one: skipped.
		questionID, err := domain.ParseQuestionID(answer.QuestionID)
		if err != nil {
			continue
		}
		answers = append(answers, service.AnswerSubmission{
			QuestionID: questionID,
			Answer:     answer.AnswerSelection,
		})
	}

	if err := h.svc.SubmitAnswers(r.Context(), id, answers); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteOK(w, "Answers submitted successfully", nil)
}

type verifyQRRequest struct {
	DeviceID     string `json:"device_id"`
	DeviceSecret string `json:"device_secret"`
}

func (h *Handler) handleVerifyQR(w http.ResponseWriter, r *http.Request) {
	var req verifyQRRequest
	if !h.decode(w, r, &req) {
		return
	}
	deviceID, err := domain.ParseDeviceID(req.DeviceID)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid device secret"))
		return
	}

	record, err := h.svc.VerifyQR(r.Context(), chi.URLParam(r, "token"), deviceID, req.DeviceSecret)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteOK(w, "QR verified successfully.", shared.Fields{
		"VisitorID": record.ID.String(),
	})
}

// handleDownloadBadge serves the badge PDF. This endpoint speaks plain HTTP
// because the link is opened in a browser, not by the kiosk client.
func (h *Handler) handleDownloadBadge(w http.ResponseWriter, r *http.Request) {
	attachment, err := h.svc.DownloadBadge(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		http.Error(w, dErrors.MessageOf(err), dErrors.ToHTTPStatus(dErrors.CodeOf(err)))
		return
	}
	w.Header().Set("Content-Type", attachment.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(attachment.Content)))
	w.Header().Set("Content-Disposition", `inline; filename="`+attachment.Name+`"`)
	_, _ = w.Write(attachment.Content)
}

// handleGetImage serves a stored NDA or photo image inline.
func (h *Handler) handleGetImage(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseVisitID(chi.URLParam(r, "visitorID"))
	if err != nil {
		http.Error(w, "Visitor ID is not valid.", http.StatusBadRequest)
		return
	}

	image, err := h.svc.GetImage(r.Context(), id, chi.URLParam(r, "kind"))
	if err != nil {
		http.Error(w, dErrors.MessageOf(err), dErrors.ToHTTPStatus(dErrors.CodeOf(err)))
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(image))
	_, _ = w.Write(image)
}
