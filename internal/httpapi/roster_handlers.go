package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"classtrack.org/internal/audit"
	"classtrack.org/internal/roster"
	"classtrack.org/internal/stream"
)

type studentRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type assignmentRequest struct {
	StudentID   string     `json:"student_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueAt       *time.Time `json:"due_at"`
	Status      string     `json:"status"`
}

type listStudentsResponse struct {
	Items []roster.Student `json:"items"`
	AsOf  time.Time        `json:"as_of"`
}

type listAssignmentsResponse struct {
	Items []roster.Assignment `json:"items"`
	AsOf  time.Time           `json:"as_of"`
}

func (a *API) handleStudentsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createStudent(w, r)
	case http.MethodGet:
		a.listStudents(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) handleStudentResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/students/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if strings.HasSuffix(path, "/assignments") {
		id := strings.TrimSuffix(path, "/assignments")
		id = strings.TrimSuffix(id, "/")
		if id == "" || strings.Contains(id, "/") {
			writeError(w, r, http.StatusNotFound, "student not found")
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.listStudentAssignments(w, r, id)
		return
	}

	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getStudent(w, r, path)
	case http.MethodPut:
		a.updateStudent(w, r, path)
	case http.MethodDelete:
		a.deleteStudent(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) handleAssignmentsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createAssignment(w, r)
	case http.MethodGet:
		a.listAssignments(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) handleAssignmentResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/assignments/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getAssignment(w, r, path)
	case http.MethodPut:
		a.updateAssignment(w, r, path)
	case http.MethodDelete:
		a.deleteAssignment(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) createStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateStudentRequest(req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	st, err := a.roster.CreateStudent(r.Context(), roster.Student{
		Name:  req.Name,
		Email: strings.TrimSpace(req.Email),
	})
	if err != nil {
		handleRosterError(w, r, err)
		return
	}

	a.publish("student.created", "student", st.ID, "")
	a.audit(r.Context(), "roster.student.create", st.ID, map[string]any{"name": st.Name})

	w.Header().Set("Location", "/v1/students/"+st.ID)
	writeJSON(w, http.StatusCreated, st)
}

func (a *API) getStudent(w http.ResponseWriter, r *http.Request, id string) {
	st, err := a.roster.GetStudent(r.Context(), id)
	if err != nil {
		handleRosterError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *API) listStudents(w http.ResponseWriter, r *http.Request) {
	items, err := a.roster.ListStudents(r.Context())
	if err != nil {
		handleRosterError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listStudentsResponse{
		Items: items,
		AsOf:  time.Now().UTC(),
	})
}

func (a *API) updateStudent(w http.ResponseWriter, r *http.Request, id string) {
	var req studentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateStudentRequest(req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	st, err := a.roster.UpdateStudent(r.Context(), roster.Student{
		ID:    id,
		Name:  req.Name,
		Email: strings.TrimSpace(req.Email),
	})
	if err != nil {
		handleRosterError(w, r, err)
		return
	}

	a.publish("student.updated", "student", st.ID, "")
	a.audit(r.Context(), "roster.student.update", st.ID, map[string]any{"name": st.Name})

	writeJSON(w, http.StatusOK, st)
}

func (a *API) deleteStudent(w http.ResponseWriter, r *http.Request, id string) {
	if err := a.roster.DeleteStudent(r.Context(), id); err != nil {
		handleRosterError(w, r, err)
		return
	}
	a.publish("student.deleted", "student", id, "")
	a.audit(r.Context(), "roster.student.delete", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listStudentAssignments(w http.ResponseWriter, r *http.Request, studentID string) {
	// Distinguish an unknown student from one with no assignments.
	if _, err := a.roster.GetStudent(r.Context(), studentID); err != nil {
		handleRosterError(w, r, err)
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	items, err := a.roster.ListAssignments(r.Context(), studentID, limit)
	if err != nil {
		handleRosterError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listAssignmentsResponse{
		Items: items,
		AsOf:  time.Now().UTC(),
	})
}

func (a *API) createAssignment(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateAssignmentRequest(req, true); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	asg, err := a.roster.CreateAssignment(r.Context(), roster.Assignment{
		StudentID:   strings.TrimSpace(req.StudentID),
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
		Status:      normalizeStatus(req.Status),
	})
	if err != nil {
		handleRosterError(w, r, err)
		return
	}

	a.publish("assignment.created", "assignment", asg.ID, asg.StudentID)
	a.audit(r.Context(), "roster.assignment.create", asg.ID, map[string]any{
		"student_id": asg.StudentID,
		"title":      asg.Title,
	})

	w.Header().Set("Location", "/v1/assignments/"+asg.ID)
	writeJSON(w, http.StatusCreated, asg)
}

func (a *API) getAssignment(w http.ResponseWriter, r *http.Request, id string) {
	asg, err := a.roster.GetAssignment(r.Context(), id)
	if err != nil {
		handleRosterError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, asg)
}

func (a *API) listAssignments(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	studentID := strings.TrimSpace(r.URL.Query().Get("student_id"))

	items, err := a.roster.ListAssignments(r.Context(), studentID, limit)
	if err != nil {
		handleRosterError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listAssignmentsResponse{
		Items: items,
		AsOf:  time.Now().UTC(),
	})
}

func (a *API) updateAssignment(w http.ResponseWriter, r *http.Request, id string) {
	var req assignmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateAssignmentRequest(req, false); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	asg, err := a.roster.UpdateAssignment(r.Context(), roster.Assignment{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
		Status:      normalizeStatus(req.Status),
	})
	if err != nil {
		handleRosterError(w, r, err)
		return
	}

	a.publish("assignment.updated", "assignment", asg.ID, asg.StudentID)
	a.audit(r.Context(), "roster.assignment.update", asg.ID, map[string]any{
		"status": asg.Status,
	})

	writeJSON(w, http.StatusOK, asg)
}

func (a *API) deleteAssignment(w http.ResponseWriter, r *http.Request, id string) {
	if err := a.roster.DeleteAssignment(r.Context(), id); err != nil {
		handleRosterError(w, r, err)
		return
	}
	a.publish("assignment.deleted", "assignment", id, "")
	a.audit(r.Context(), "roster.assignment.delete", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// --- validation & shared helpers ---

func validateStudentRequest(req studentRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return errors.New("name is required")
	}
	if len(name) > 200 {
		return errors.New("name too long")
	}
	if len(req.Email) > 320 {
		return errors.New("email too long")
	}
	return nil
}

func validateAssignmentRequest(req assignmentRequest, requireStudent bool) error {
	if requireStudent && strings.TrimSpace(req.StudentID) == "" {
		return errors.New("student_id is required")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return errors.New("title is required")
	}
	if len(title) > 200 {
		return errors.New("title too long")
	}
	if len(req.Description) > 4000 {
		return errors.New("description too long")
	}
	if len(req.Status) > 32 {
		return errors.New("status too long")
	}
	return nil
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

func parseLimit(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return 100, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("limit must be an integer")
	}
	if val < 1 || val > 1000 {
		return 0, errors.New("limit must be between 1 and 1000")
	}
	return val, nil
}

func (a *API) publish(kind, entity, id, studentID string) {
	if a.stream == nil {
		return
	}
	a.stream.Publish(stream.Event{
		Kind:      kind,
		Entity:    entity,
		ID:        id,
		StudentID: studentID,
		Timestamp: time.Now().UTC(),
	})
}

func (a *API) audit(ctx context.Context, event, resourceID string, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["resource_id"] = resourceID
	_ = audit.LogEvent(ctx, event, fields)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func handleRosterError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, roster.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, roster.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
