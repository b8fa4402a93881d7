package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crestwood-digital/school-admin-api/internal/models"
	appErrors "github.com/crestwood-digital/school-admin-api/pkg/errors"
	"github.com/crestwood-digital/school-admin-api/pkg/export"
)

type examRepoStub struct {
	exams   map[int64]*models.Exam
	results []models.ExamResultRow

	created       *models.Exam
	createdResult *models.ExamResult
}

func newExamRepoStub() *examRepoStub {
	return &examRepoStub{exams: make(map[int64]*models.Exam)}
}

func (s *examRepoStub) Create(ctx context.Context, exam *models.Exam) error {
	exam.ID = 1
	s.created = exam
	s.exams[exam.ID] = exam
	return nil
}

func (s *examRepoStub) FindByID(ctx context.Context, id int64) (*models.Exam, error) {
	exam, ok := s.exams[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return exam, nil
}

func (s *examRepoStub) ListByClass(ctx context.Context, classID int64) ([]models.Exam, error) {
	var out []models.Exam
	for _, e := range s.exams {
		if e.ClassID == classID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *examRepoStub) CreateResult(ctx context.Context, result *models.ExamResult) error {
	s.createdResult = result
	return nil
}

func (s *examRepoStub) ListResults(ctx context.Context, examID int64) ([]models.ExamResultRow, error) {
	return s.results, nil
}

func newExamServiceForTest(repo *examRepoStub) *ExamService {
	return NewExamService(repo, export.NewCSVExporter(), export.NewPDFExporter(), nil, nil)
}

func TestExamServiceCreate(t *testing.T) {
	repo := newExamRepoStub()
	svc := newExamServiceForTest(repo)

	exam, err := svc.Create(context.Background(), 9, ExamRequest{
		Name:            "Midterm",
		ExamType:        "written",
		SubjectID:       2,
		ClassID:         3,
		ExamDate:        "2026-03-15",
		DurationMinutes: 90,
		MaxMarks:        100,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), exam.CreatedBy)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), exam.ExamDate)
}

func TestExamServiceRecordResultGrades(t *testing.T) {
	repo := newExamRepoStub()
	repo.exams[1] = &models.Exam{ID: 1, MaxMarks: 100}
	svc := newExamServiceForTest(repo)

	cases := []struct {
		marks int
		grade string
	}{
		{95, "A+"},
		{85, "A"},
		{72, "B"},
		{65, "C"},
		{51, "D"},
		{30, "F"},
	}
	for _, tc := range cases {
		result, err := svc.RecordResult(context.Background(), 1, ExamResultRequest{StudentID: 4, MarksObtained: tc.marks})
		require.NoError(t, err)
		assert.Equal(t, tc.grade, result.Grade, "marks %d", tc.marks)
	}
}

func TestExamServiceRecordResultExceedsMax(t *testing.T) {
	repo := newExamRepoStub()
	repo.exams[1] = &models.Exam{ID: 1, MaxMarks: 50}
	svc := newExamServiceForTest(repo)

	_, err := svc.RecordResult(context.Background(), 1, ExamResultRequest{StudentID: 4, MarksObtained: 60})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
	assert.Nil(t, repo.createdResult)
}

func TestExamServiceExportResultsCSV(t *testing.T) {
	repo := newExamRepoStub()
	repo.exams[1] = &models.Exam{ID: 1, Name: "Midterm", ExamType: "written", MaxMarks: 100}
	repo.results = []models.ExamResultRow{
		{ExamResult: models.ExamResult{MarksObtained: 88, Grade: "A"}, StudentCode: "STU000004", FirstName: "Ada", LastName: "Byron"},
	}
	svc := newExamServiceForTest(repo)

	payload, contentType, err := svc.ExportResults(context.Background(), 1, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	body := string(payload)
	assert.True(t, strings.HasPrefix(body, "student_code,first_name,last_name,marks_obtained,grade,remarks"))
	assert.Contains(t, body, "STU000004,Ada,Byron,88,A,")
}

func TestExamServiceExportResultsPDF(t *testing.T) {
	repo := newExamRepoStub()
	repo.exams[1] = &models.Exam{ID: 1, Name: "Midterm", ExamType: "written", MaxMarks: 100}
	svc := newExamServiceForTest(repo)

	payload, contentType, err := svc.ExportResults(context.Background(), 1, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestExamServiceExportResultsUnknownFormat(t *testing.T) {
	repo := newExamRepoStub()
	repo.exams[1] = &models.Exam{ID: 1}
	svc := newExamServiceForTest(repo)

	_, _, err := svc.ExportResults(context.Background(), 1, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestExamServiceExportResultsExamNotFound(t *testing.T) {
	svc := newExamServiceForTest(newExamRepoStub())

	_, _, err := svc.ExportResults(context.Background(), 404, "csv")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}
