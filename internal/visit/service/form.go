package service

import (
	"context"
	"fmt"
	"time"

	"visitgate/internal/audit"
	"visitgate/internal/location"
	"visitgate/internal/notify"
	"visitgate/internal/visit"
	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
	"visitgate/pkg/requestcontext"

	"github.com/google/uuid"
)

// SubmitForm upserts today's visit for the phone from a loose field map.
// Unknown keys are ignored; the company is always derived from the host
// employee and never taken from the caller.
func (s *Service) SubmitForm(ctx context.Context, fields map[string]any) (*visit.Record, error) {
	ctx, span := s.tracer.Start(ctx, "visit.SubmitForm")
	defer span.End()

	phone := stringField(fields, "phone")
	if phone == "" {
		phone = stringField(fields, "mobileNumber")
	}
	if !visit.ValidPhone(phone) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "Phone number must be exactly 10 digits.")
	}

	now := requestcontext.Now(ctx)
	record, err := s.findTodayByPhone(ctx, phone)
	created := false
	switch {
	case err == nil:
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		created = true
		record = &visit.Record{
			ID:        domain.NewVisitID(),
			Phone:     phone,
			Status:    visit.StatusPending,
			VisitType: visit.TypeWalkIn,
			QRToken:   uuid.NewString(),
			CreatedAt: now,
		}
	default:
		return nil, err
	}

	if err := s.applyFormFields(ctx, record, fields); err != nil {
		return nil, err
	}
	if record.VisitingDate.IsZero() {
		record.VisitingDate = now
	}
	record.UpdatedAt = now
	if err := record.Validate(); err != nil {
		return nil, err
	}

	if created {
		if err := s.deps.Visits.Create(ctx, record); err != nil {
			return nil, err
		}
		s.deps.Metrics.VisitsCreated.Inc()
		s.deps.Audit.Emit(ctx, audit.Event{
			Action: audit.ActionVisitCreated, VisitID: &record.ID, Phone: record.Phone,
		})
		if record.VisitType == visit.TypeWalkIn {
			s.seedNotebook(ctx, record)
		}
	} else {
		if err := s.deps.Visits.Update(ctx, record); err != nil {
			return nil, err
		}
	}
	s.deps.Audit.Emit(ctx, audit.Event{
		Action: audit.ActionFormSubmitted, VisitID: &record.ID, Phone: record.Phone,
	})
	return record, nil
}

// applyFormFields copies the recognized fields onto the record. Associations
// accept a bare id string, an {"id": ...} object or, for escorts, a list of
// either.
func (s *Service) applyFormFields(ctx context.Context, record *visit.Record, fields map[string]any) error {
	if v := stringField(fields, "name"); v != "" {
		record.Name = v
	}
	if v := stringField(fields, "email"); v != "" {
		record.Email = v
	}
	if v := stringField(fields, "purpose"); v != "" {
		record.Purpose = v
	}
	if v := stringField(fields, "instructions"); v != "" {
		record.Instructions = v
	}
	if v := stringField(fields, "visit_type"); v != "" {
		visitType, err := visit.ParseVisitType(v)
		if err != nil {
			return err
		}
		record.VisitType = visitType
	}
	if v := stringField(fields, "visiting_date"); v != "" {
		when, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "visiting_date must be RFC 3339")
		}
		record.VisitingDate = when
	}

	employeeRaw := idField(fields, "employee")
	if employeeRaw == "" {
		employeeRaw = idField(fields, "employee_id")
	}
	if employeeRaw != "" {
		employeeID, err := domain.ParseEmployeeID(employeeRaw)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "employee id is not valid")
		}
		host, err := s.deps.Employees.GetByID(ctx, employeeID)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return dErrors.New(dErrors.CodeInvalidInput, "employee not found")
			}
			return err
		}
		record.EmployeeID = &host.ID
		companyID := host.CompanyID
		record.CompanyID = &companyID
	}

	if raw := idField(fields, "location_id"); raw != "" {
		locationID, err := domain.ParseLocationID(raw)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "location id is not valid")
		}
		if _, err := s.deps.Locations.GetByID(ctx, locationID); err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return dErrors.New(dErrors.CodeInvalidInput, "location not found")
			}
			return err
		}
		record.LocationID = &locationID
	}

	if raws, ok := idListField(fields, "escorts"); ok {
		escorts := make([]domain.EmployeeID, 0, len(raws))
		for _, raw := range raws {
			escortID, err := domain.ParseEmployeeID(raw)
			if err != nil {
				return dErrors.New(dErrors.CodeInvalidInput, "escort id is not valid")
			}
			escorts = append(escorts, escortID)
		}
		record.Escorts = escorts
	}
	return nil
}

// seedNotebook creates one blank entry per configured location question so
// the kiosk questionnaire starts fully materialized.
func (s *Service) seedNotebook(ctx context.Context, record *visit.Record) {
	if record.LocationID == nil {
		return
	}
	questions, err := s.deps.Locations.ListQuestions(ctx, *record.LocationID)
	if err != nil {
		s.deps.Logger.WarnContext(ctx, "notebook seed failed",
			"visit_id", record.ID.String(), "error", err)
		return
	}
	now := requestcontext.Now(ctx)
	for _, question := range questions {
		entry := visit.NotebookEntry{
			VisitID:    record.ID,
			QuestionID: question.ID,
			AnsweredAt: now,
		}
		if err := s.deps.Visits.UpsertEntry(ctx, entry); err != nil {
			s.deps.Logger.WarnContext(ctx, "notebook seed failed",
				"visit_id", record.ID.String(), "error", err)
			return
		}
	}
}

func stringField(fields map[string]any, key string) string {
	v, _ := fields[key].(string)
	return v
}

// idField reads an association value given as "uuid" or {"id": "uuid"}.
func idField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case map[string]any:
		id, _ := v["id"].(string)
		return id
	}
	return ""
}

func idListField(fields map[string]any, key string) ([]string, bool) {
	raw, ok := fields[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			if id, ok := v["id"].(string); ok {
				out = append(out, id)
			}
		}
	}
	return out, true
}

// ImageURLs are the retrieval links for the images a visit has on file.
type ImageURLs struct {
	NDA   string
	Photo string
}

// SubmitNdaPhoto stores the signed NDA image and the visitor photo. Either
// may be absent; present images overwrite, absent ones are left alone.
func (s *Service) SubmitNdaPhoto(ctx context.Context, id domain.VisitID, ndaImage, photoImage []byte) (*ImageURLs, error) {
	ctx, span := s.tracer.Start(ctx, "visit.SubmitNdaPhoto")
	defer span.End()

	record, err := s.deps.Visits.GetByID(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Visitor not found")
		}
		return nil, err
	}

	if len(ndaImage) > 0 {
		record.NDAImage = ndaImage
	}
	if len(photoImage) > 0 {
		record.PhotoImage = photoImage
	}
	record.UpdatedAt = requestcontext.Now(ctx)
	if err := s.deps.Visits.Update(ctx, record); err != nil {
		return nil, err
	}
	s.deps.Audit.Emit(ctx, audit.Event{
		Action: audit.ActionNDASubmitted, VisitID: &record.ID, Phone: record.Phone,
	})

	urls := &ImageURLs{}
	if len(record.NDAImage) > 0 {
		urls.NDA = fmt.Sprintf("%s/visitor/image/%s/nda", s.deps.BaseURL, record.ID)
	}
	if len(record.PhotoImage) > 0 {
		urls.Photo = fmt.Sprintf("%s/visitor/image/%s/photo", s.deps.BaseURL, record.ID)
	}
	return urls, nil
}

// Image kinds servable from GetImage.
const (
	ImageNDA   = "nda"
	ImagePhoto = "photo"
)

// GetImage returns a stored visit image for inline serving.
func (s *Service) GetImage(ctx context.Context, id domain.VisitID, kind string) ([]byte, error) {
	record, err := s.deps.Visits.GetByID(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Visitor not found")
		}
		return nil, err
	}

	var image []byte
	switch kind {
	case ImageNDA:
		image = record.NDAImage
	case ImagePhoto:
		image = record.PhotoImage
	default:
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown image kind: "+kind)
	}
	if len(image) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "no image on file")
	}
	return image, nil
}

// AnswerSubmission is one questionnaire answer from the kiosk.
type AnswerSubmission struct {
	QuestionID domain.QuestionID
	Answer     string
}

// SubmitAnswers upserts questionnaire answers. Pairs with a missing question
// or an answer other than yes/no are skipped silently, matching the lenient
// kiosk contract.
func (s *Service) SubmitAnswers(ctx context.Context, id domain.VisitID, answers []AnswerSubmission) error {
	ctx, span := s.tracer.Start(ctx, "visit.SubmitAnswers")
	defer span.End()

	record, err := s.deps.Visits.GetByID(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Visitor not found")
		}
		return err
	}

	now := requestcontext.Now(ctx)
	for _, answer := range answers {
		if answer.QuestionID.IsNil() || !visit.ValidAnswer(answer.Answer) {
			continue
		}
		entry := visit.NotebookEntry{
			VisitID:    record.ID,
			QuestionID: answer.QuestionID,
			Answer:     answer.Answer,
			AnsweredAt: now,
		}
		if err := s.deps.Visits.UpsertEntry(ctx, entry); err != nil {
			return err
		}
	}
	s.deps.Audit.Emit(ctx, audit.Event{
		Action: audit.ActionAnswersSubmitted, VisitID: &record.ID, Phone: record.Phone,
	})
	return nil
}

// RequirementSet is what the kiosk must collect before check-in at the
// visit's location. A visit without a location has no extra requirements.
type RequirementSet struct {
	VisitID   domain.VisitID
	NDA       location.Capability
	Photo     location.Capability
	Questions location.Capability
}

// Requirements reports the capability flags of the visit's location.
func (s *Service) Requirements(ctx context.Context, id domain.VisitID) (*RequirementSet, error) {
	ctx, span := s.tracer.Start(ctx, "visit.Requirements")
	defer span.End()

	record, err := s.deps.Visits.GetByID(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Visitor not found.")
		}
		return nil, err
	}

	set := &RequirementSet{VisitID: record.ID}
	if record.LocationID == nil {
		return set, nil
	}
	loc, err := s.deps.Locations.GetByID(ctx, *record.LocationID)
	if err != nil {
		return nil, err
	}
	set.NDA = loc.NDA
	set.Photo = loc.Photo
	set.Questions = loc.Questions
	return set, nil
}

// VisitQuestions are the questionnaire items for a visit's location.
type VisitQuestions struct {
	VisitID    domain.VisitID
	CompanyID  domain.CompanyID
	LocationID domain.LocationID
	Questions  []location.Question
}

// Questions lists the questionnaire for the visit. The visit must already
// have a company and a location.
func (s *Service) Questions(ctx context.Context, id domain.VisitID) (*VisitQuestions, error) {
	ctx, span := s.tracer.Start(ctx, "visit.Questions")
	defer span.End()

	record, err := s.deps.Visits.GetByID(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Visitor not found")
		}
		return nil, err
	}
	if record.CompanyID == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "Company not found for this visitor")
	}
	if record.LocationID == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "Location not set for this visitor")
	}

	questions, err := s.deps.Locations.ListQuestions(ctx, *record.LocationID)
	if err != nil {
		return nil, err
	}
	return &VisitQuestions{
		VisitID:    record.ID,
		CompanyID:  *record.CompanyID,
		LocationID: *record.LocationID,
		Questions:  questions,
	}, nil
}

// NotifyEmployee emails the host employee a visit request.
func (s *Service) NotifyEmployee(ctx context.Context, id domain.VisitID) error {
	ctx, span := s.tracer.Start(ctx, "visit.NotifyEmployee")
	defer span.End()

	record, err := s.deps.Visits.GetByID(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Visitor not found.")
		}
		return err
	}
	if record.EmployeeID == nil {
		return dErrors.New(dErrors.CodeNotFound, "No employee assigned to this visitor.")
	}
	host, err := s.deps.Employees.GetByID(ctx, *record.EmployeeID)
	if err != nil {
		return err
	}
	if host.Email == "" {
		return dErrors.New(dErrors.CodeNotFound, "Employee has no work email.")
	}

	email := notify.VisitRequestEmail(host.Email, host.Name, record.Name, record.Purpose, record.VisitingDate)
	if err := s.deps.Email.SendEmail(ctx, email); err != nil {
		s.deps.Metrics.NotificationFailures.WithLabelValues("email").Inc()
		return dErrors.Wrap(dErrors.CodeUnavailable, "Failed to send notification email", err)
	}
	return nil
}
