package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitgate/internal/location"
	"visitgate/internal/visit"
	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

func TestSubmitFormCreatesRecord(t *testing.T) {
	h := newHarness(t)
	host := h.seedHost("Ravi Menon")

	record, err := h.svc.SubmitForm(h.ctx(), map[string]any{
		"name":       "Meera Nair",
		"phone":      "9123456780",
		"email":      "meera@example.com",
		"purpose":    "Interview",
		"employee":   host.ID.String(),
		"unexpected": 42,
	})
	require.NoError(t, err)
	assert.Equal(t, "Meera Nair", record.Name)
	assert.Equal(t, visit.StatusPending, record.Status)
	require.NotNil(t, record.EmployeeID)
	assert.Equal(t, host.ID, *record.EmployeeID)
	require.NotNil(t, record.CompanyID)
	assert.Equal(t, host.CompanyID, *record.CompanyID)
	assert.False(t, record.VisitingDate.IsZero())
	assert.NotEmpty(t, record.QRToken)
}

func TestSubmitFormNeverTrustsCompanyFromCaller(t *testing.T) {
	h := newHarness(t)

	record, err := h.svc.SubmitForm(h.ctx(), map[string]any{
		"name":       "Meera Nair",
		"phone":      "9123456780",
		"company_id": domain.NewVisitID().String(),
	})
	require.NoError(t, err)
	assert.Nil(t, record.CompanyID)
}

func TestSubmitFormUpsertsSameDay(t *testing.T) {
	h := newHarness(t)
	seeded := h.seedVisit(t, nil)

	record, err := h.svc.SubmitForm(h.ctx(), map[string]any{
		"phone":   seeded.Phone,
		"name":    "Asha P",
		"purpose": "Changed purpose",
	})
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, record.ID)
	assert.Equal(t, "Asha P", record.Name)
	assert.Equal(t, "Changed purpose", record.Purpose)
	assert.Equal(t, seeded.QRToken, record.QRToken)
	// Existing fields are kept unless the form replaces them.
	assert.Equal(t, seeded.Email, record.Email)
}

func TestSubmitFormAcceptsAssociationObject(t *testing.T) {
	h := newHarness(t)
	host := h.seedHost("Ravi Menon")

	record, err := h.svc.SubmitForm(h.ctx(), map[string]any{
		"name":     "Meera Nair",
		"phone":    "9123456780",
		"employee": map[string]any{"id": host.ID.String()},
	})
	require.NoError(t, err)
	require.NotNil(t, record.EmployeeID)
	assert.Equal(t, host.ID, *record.EmployeeID)
}

func TestSubmitFormReplacesEscorts(t *testing.T) {
	h := newHarness(t)
	first := h.seedHost("First Escort")
	second := h.seedHost("Second Escort")
	seeded := h.seedVisit(t, func(r *visit.Record) {
		r.Escorts = []domain.EmployeeID{first.ID}
	})

	record, err := h.svc.SubmitForm(h.ctx(), map[string]any{
		"phone":   seeded.Phone,
		"escorts": []any{second.ID.String()},
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.EmployeeID{second.ID}, record.Escorts)
}

func TestSubmitFormRejectsUnknownEmployee(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.SubmitForm(h.ctx(), map[string]any{
		"name":     "Meera Nair",
		"phone":    "9123456780",
		"employee": domain.NewVisitID().String(),
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestSubmitFormRejectsBadPhone(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.SubmitForm(h.ctx(), map[string]any{"name": "X", "phone": "123"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestSubmitFormSeedsNotebookForWalkIn(t *testing.T) {
	h := newHarness(t)
	loc := &location.Location{
		ID:        domain.LocationID(uuid.New()),
		Name:      "HQ",
		Questions: location.Capability{Enabled: true, Required: true},
	}
	questions := []location.Question{
		{ID: domain.NewQuestionID(), LocationID: loc.ID, Text: "Carrying a laptop?", Sequence: 1},
		{ID: domain.NewQuestionID(), LocationID: loc.ID, Text: "First visit?", Sequence: 2},
	}
	h.locations.Seed(loc, questions...)

	record, err := h.svc.SubmitForm(h.ctx(), map[string]any{
		"name":        "Meera Nair",
		"phone":       "9123456780",
		"location_id": loc.ID.String(),
	})
	require.NoError(t, err)

	entries, err := h.visits.ListEntries(h.ctx(), record.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.Empty(t, entry.Answer)
	}
}

func TestSubmitNdaPhotoPartialWrite(t *testing.T) {
	h := newHarness(t)
	seeded := h.seedVisit(t, func(r *visit.Record) { r.PhotoImage = []byte("old-photo") })

	urls, err := h.svc.SubmitNdaPhoto(h.ctx(), seeded.ID, []byte("nda-bytes"), nil)
	require.NoError(t, err)
	assert.Contains(t, urls.NDA, "/visitor/image/"+seeded.ID.String()+"/nda")
	assert.Contains(t, urls.Photo, "/visitor/image/"+seeded.ID.String()+"/photo")

	record, err := h.visits.GetByID(h.ctx(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("nda-bytes"), record.NDAImage)
	// Absent photo leaves the stored one alone.
	assert.Equal(t, []byte("old-photo"), record.PhotoImage)
}

func TestSubmitNdaPhotoNoImages(t *testing.T) {
	h := newHarness(t)
	seeded := h.seedVisit(t, nil)

	urls, err := h.svc.SubmitNdaPhoto(h.ctx(), seeded.ID, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, urls.NDA)
	assert.Empty(t, urls.Photo)
}

func TestGetImage(t *testing.T) {
	h := newHarness(t)
	seeded := h.seedVisit(t, func(r *visit.Record) { r.NDAImage = []byte("nda-bytes") })

	image, err := h.svc.GetImage(h.ctx(), seeded.ID, ImageNDA)
	require.NoError(t, err)
	assert.Equal(t, []byte("nda-bytes"), image)

	_, err = h.svc.GetImage(h.ctx(), seeded.ID, ImagePhoto)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = h.svc.GetImage(h.ctx(), seeded.ID, "selfie")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestSubmitAnswersSkipsInvalidPairs(t *testing.T) {
	h := newHarness(t)
	seeded := h.seedVisit(t, nil)
	good := domain.NewQuestionID()
	other := domain.NewQuestionID()

	err := h.svc.SubmitAnswers(h.ctx(), seeded.ID, []AnswerSubmission{
		{QuestionID: good, Answer: "yes"},
		{QuestionID: other, Answer: "maybe"},
		{Answer: "no"},
	})
	require.NoError(t, err)

	entries, err := h.visits.ListEntries(h.ctx(), seeded.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, good, entries[0].QuestionID)
	assert.Equal(t, "yes", entries[0].Answer)
}

func TestSubmitAnswersOverwrites(t *testing.T) {
	h := newHarness(t)
	seeded := h.seedVisit(t, nil)
	question := domain.NewQuestionID()

	require.NoError(t, h.svc.SubmitAnswers(h.ctx(), seeded.ID, []AnswerSubmission{
		{QuestionID: question, Answer: "yes"},
	}))
	require.NoError(t, h.svc.SubmitAnswers(h.ctx(), seeded.ID, []AnswerSubmission{
		{QuestionID: question, Answer: "no"},
	}))

	entries, err := h.visits.ListEntries(h.ctx(), seeded.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "no", entries[0].Answer)
}

func TestRequirementsWithoutLocation(t *testing.T) {
	h := newHarness(t)
	seeded := h.seedVisit(t, nil)

	set, err := h.svc.Requirements(h.ctx(), seeded.ID)
	require.NoError(t, err)
	assert.False(t, set.NDA.Enabled)
	assert.False(t, set.Photo.Enabled)
	assert.False(t, set.Questions.Enabled)
}

func TestRequirementsReflectLocation(t *testing.T) {
	h := newHarness(t)
	loc := &location.Location{
		ID:    domain.LocationID(uuid.New()),
		Name:  "HQ",
		NDA:   location.Capability{Enabled: true, Required: true},
		Photo: location.Capability{Enabled: true},
	}
	h.locations.Seed(loc)
	seeded := h.seedVisit(t, func(r *visit.Record) { r.LocationID = &loc.ID })

	set, err := h.svc.Requirements(h.ctx(), seeded.ID)
	require.NoError(t, err)
	assert.True(t, set.NDA.Enabled)
	assert.True(t, set.NDA.Required)
	assert.True(t, set.Photo.Enabled)
	assert.False(t, set.Photo.Required)
	assert.False(t, set.Questions.Enabled)
}

func TestQuestionsRequireCompanyAndLocation(t *testing.T) {
	h := newHarness(t)
	seeded := h.seedVisit(t, nil)

	_, err := h.svc.Questions(h.ctx(), seeded.ID)
	require.Error(t, err)
	assert.Equal(t, "Company not found for this visitor", dErrors.MessageOf(err))
}

func TestQuestionsListsLocationQuestionnaire(t *testing.T) {
	h := newHarness(t)
	host := h.seedHost("Ravi Menon")
	loc := &location.Location{
		ID:        domain.LocationID(uuid.New()),
		CompanyID: host.CompanyID,
		Name:      "HQ",
	}
	h.locations.Seed(loc, location.Question{
		ID: domain.NewQuestionID(), LocationID: loc.ID, Text: "Carrying a laptop?", Sequence: 1,
	})
	seeded := h.seedVisit(t, func(r *visit.Record) {
		r.EmployeeID = &host.ID
		companyID := host.CompanyID
		r.CompanyID = &companyID
		r.LocationID = &loc.ID
	})

	result, err := h.svc.Questions(h.ctx(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, result.VisitID)
	assert.Equal(t, loc.ID, result.LocationID)
	require.Len(t, result.Questions, 1)
	assert.Equal(t, "Carrying a laptop?", result.Questions[0].Text)
}

func TestNotifyEmployee(t *testing.T) {
	h := newHarness(t)
	host := h.seedHost("Ravi Menon")
	seeded := h.seedVisit(t, func(r *visit.Record) { r.EmployeeID = &host.ID })

	require.NoError(t, h.svc.NotifyEmployee(h.ctx(), seeded.ID))

	emails := h.email.all()
	require.Len(t, emails, 1)
	assert.Equal(t, []string{host.Email}, emails[0].To)
	assert.Contains(t, emails[0].Subject, seeded.Name)
}

func TestNotifyEmployeeWithoutHost(t *testing.T) {
	h := newHarness(t)
	seeded := h.seedVisit(t, nil)

	err := h.svc.NotifyEmployee(h.ctx(), seeded.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestNotifyEmployeeEmailFailure(t *testing.T) {
	h := newHarness(t)
	h.email.err = errors.New("smtp down")
	host := h.seedHost("Ravi Menon")
	seeded := h.seedVisit(t, func(r *visit.Record) { r.EmployeeID = &host.ID })

	err := h.svc.NotifyEmployee(h.ctx(), seeded.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}
