package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/service"
)

type startTimerRequest struct {
	TaskID    string `json:"taskId"`
	ProjectID string `json:"projectId"`
}

func (s *Server) handleTimerStart(w http.ResponseWriter, r *http.Request, userID string) {
	var req startTimerRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.TaskID == "" {
		s.writeError(w, r, fmt.Errorf("%w: taskId is required", domain.ErrValidation))
		return
	}
	timer, err := s.svc.Timers.Start(r.Context(), userID, req.TaskID, req.ProjectID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTimerView(timer, 0, false))
}

func (s *Server) handleTimerActive(w http.ResponseWriter, r *http.Request, userID string) {
	view, err := s.svc.Timers.GetActive(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if view == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, newTimerView(view.Timer, view.ElapsedSeconds, view.Expired))
}

func (s *Server) handleTimerStop(w http.ResponseWriter, r *http.Request, userID string) {
	log, err := s.svc.Timers.Stop(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTimeLogView(log))
}

func (s *Server) handleTimerDiscard(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.svc.Timers.Discard(r.Context(), userID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createLogRequest struct {
	TaskID      string `json:"taskId"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Description string `json:"description"`
	IsManual    *bool  `json:"isManual"`
}

// parseClock accepts an RFC3339 timestamp or an HH:MM time on date.
func parseClock(date time.Time, field, v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("15:04", v); err == nil {
		return date.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), nil
	}
	return time.Time{}, fmt.Errorf("%w: %s %q must be HH:MM or RFC3339", domain.ErrValidation, field, v)
}

func (s *Server) handleCreateLog(w http.ResponseWriter, r *http.Request, userID string) {
	var req createLogRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.IsManual != nil && !*req.IsManual {
		s.writeError(w, r, fmt.Errorf("%w: timer entries are created by stopping a timer", domain.ErrValidation))
		return
	}
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	start, err := parseClock(date, "startTime", req.StartTime)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	end, err := parseClock(date, "endTime", req.EndTime)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	log, err := s.svc.Logs.CreateManual(r.Context(), service.ManualLogInput{
		UserID:      userID,
		TaskID:      req.TaskID,
		Date:        date,
		Start:       start,
		End:         end,
		Description: req.Description,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTimeLogView(log))
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request, userID string) {
	q := r.URL.Query()
	from, err := domain.ParseDate(q.Get("from"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := domain.ParseDate(q.Get("to"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	logs, err := s.svc.Logs.ListLogs(r.Context(), userID, from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTimeLogViews(logs))
}

func (s *Server) handleGetWeek(w http.ResponseWriter, r *http.Request, viewerID string) {
	view, err := s.svc.Timesheets.GetWeek(r.Context(), viewerID, r.PathValue("userId"), r.PathValue("weekId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newWeekView(view))
}

type saveEntriesRequest struct {
	TimesheetID string      `json:"timesheetId"`
	Entries     []entryView `json:"entries"`
}

func (s *Server) handleSaveEntries(w http.ResponseWriter, r *http.Request, userID string) {
	var req saveEntriesRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.TimesheetID == "" {
		s.writeError(w, r, fmt.Errorf("%w: timesheetId is required", domain.ErrValidation))
		return
	}
	cells := make([]service.CellInput, 0, len(req.Entries))
	for _, e := range req.Entries {
		cells = append(cells, service.CellInput{
			TaskID:    e.TaskID,
			ProjectID: e.ProjectID,
			DayIndex:  e.DayIndex,
			Hours:     e.Duration,
		})
	}
	ts, err := s.svc.Timesheets.SaveEntries(r.Context(), userID, req.TimesheetID, cells)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTimesheetView(ts))
}

type submitRequest struct {
	TimesheetID string `json:"timesheetId"`
	WeekID      string `json:"weekId"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request, userID string) {
	var req submitRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var (
		ts  *domain.Timesheet
		err error
	)
	switch {
	case req.TimesheetID != "":
		ts, err = s.svc.Approvals.Submit(r.Context(), userID, req.TimesheetID)
	case req.WeekID != "":
		ts, err = s.svc.Approvals.SubmitWeek(r.Context(), userID, req.WeekID)
	default:
		err = fmt.Errorf("%w: timesheetId or weekId is required", domain.ErrValidation)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTimesheetView(ts))
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request, userID string) {
	sheets, err := s.svc.Approvals.ListPending(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]timesheetView, 0, len(sheets))
	for _, ts := range sheets {
		views = append(views, newTimesheetView(ts))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request, userID string) {
	ts, err := s.svc.Approvals.Approve(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTimesheetView(ts))
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request, userID string) {
	var req rejectRequest
	// An empty body is a missing reason, which the workflow reports.
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	ts, err := s.svc.Approvals.Reject(r.Context(), userID, r.PathValue("id"), strings.TrimSpace(req.Reason))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTimesheetView(ts))
}
