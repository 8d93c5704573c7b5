package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mstanek/rollcall/internal/attendance"
)

func TestSaveAttendance_CreatesRecord(t *testing.T) {
	attLog := attendance.NewLog()
	h := NewAttendanceHandler(attLog)

	students := []string{"s001", "s002"}
	req := postJSON(t, "/api/v1/attendance", SaveAttendanceRequest{
		Course:   "math101",
		Students: &students,
	})
	recorder := httptest.NewRecorder()

	h.Save(recorder, req)

	assertStatusCode(t, recorder, 201)

	var record attendance.Record
	parseJSONResponse(t, recorder, &record)
	if record.Course != "math101" {
		t.Errorf("course = %q, want math101", record.Course)
	}
	if !strings.HasPrefix(record.ID, "math101_") {
		t.Errorf("record id %q should start with the course", record.ID)
	}
	if len(record.Students) != 2 {
		t.Errorf("students = %v, want 2 entries", record.Students)
	}
	if attLog.Count() != 1 {
		t.Errorf("log count = %d, want 1", attLog.Count())
	}
}

func TestSaveAttendance_EmptyClassAllowed(t *testing.T) {
	h := NewAttendanceHandler(attendance.NewLog())

	students := []string{}
	req := postJSON(t, "/api/v1/attendance", SaveAttendanceRequest{
		Course:   "math101",
		Students: &students,
	})
	recorder := httptest.NewRecorder()

	h.Save(recorder, req)

	assertStatusCode(t, recorder, 201)
	if !strings.Contains(recorder.Body.String(), `"students":[]`) {
		t.Errorf("students should encode as an empty array, got %s", recorder.Body.String())
	}
}

func TestSaveAttendance_MissingStudentsKey(t *testing.T) {
	h := NewAttendanceHandler(attendance.NewLog())

	req := postJSON(t, "/api/v1/attendance", map[string]string{"course": "math101"})
	recorder := httptest.NewRecorder()

	h.Save(recorder, req)

	assertStatusCode(t, recorder, 400)
	assertJSONError(t, recorder, "students is required")
}

func TestSaveAttendance_MissingCourse(t *testing.T) {
	h := NewAttendanceHandler(attendance.NewLog())

	students := []string{"s001"}
	req := postJSON(t, "/api/v1/attendance", SaveAttendanceRequest{Students: &students})
	recorder := httptest.NewRecorder()

	h.Save(recorder, req)

	assertStatusCode(t, recorder, 400)
	assertJSONError(t, recorder, "course is required")
}

func TestSaveAttendance_InvalidBody(t *testing.T) {
	h := NewAttendanceHandler(attendance.NewLog())

	req := httptest.NewRequest("POST", "/api/v1/attendance", strings.NewReader("]["))
	recorder := httptest.NewRecorder()

	h.Save(recorder, req)

	assertStatusCode(t, recorder, 400)
	assertJSONError(t, recorder, errInvalidRequestBody)
}

func TestListAttendance_FiltersByCourse(t *testing.T) {
	attLog := attendance.NewLog()
	if _, err := attLog.Save("math101", []string{"s001"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := attLog.Save("bio202", []string{"s002"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := attLog.Save("math101", []string{"s003"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	h := NewAttendanceHandler(attLog)

	recorder := httptest.NewRecorder()
	h.List(recorder, httptest.NewRequest("GET", "/api/v1/attendance?course=math101", nil))

	assertStatusCode(t, recorder, 200)

	var resp AttendanceListResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2 math101 records", resp.Count)
	}
	for _, r := range resp.Records {
		if r.Course != "math101" {
			t.Errorf("unexpected course %q in filtered listing", r.Course)
		}
	}
}

func TestListAttendance_Empty(t *testing.T) {
	h := NewAttendanceHandler(attendance.NewLog())

	recorder := httptest.NewRecorder()
	h.List(recorder, httptest.NewRequest("GET", "/api/v1/attendance", nil))

	assertStatusCode(t, recorder, 200)
	if !strings.Contains(recorder.Body.String(), `"records":[]`) {
		t.Errorf("records should encode as an empty array, got %s", recorder.Body.String())
	}
}
