package route

import (
	"net/http"
	"time"

	"calendar/src-server/model"
	"calendar/src-server/utils"
)

// attendanceReqBody refers to the event and person by id.
type attendanceReqBody struct {
	ID                 int64      `json:"id"`
	EventID            int64      `json:"event_id"`
	PersonID           int64      `json:"person_id"`
	PlannedArrivalTime *time.Time `json:"planned_arrival_time,omitempty"`
	Version            int64      `json:"version"`
}

func (b attendanceReqBody) toAttendance() *model.Attendance {
	a := &model.Attendance{
		ID:                 b.ID,
		PlannedArrivalTime: b.PlannedArrivalTime,
		Version:            b.Version,
	}
	if b.EventID != 0 {
		a.Event = &model.Event{ID: b.EventID}
	}
	if b.PersonID != 0 {
		a.Person = &model.Person{ID: b.PersonID}
	}
	return a
}

func Attendances(muxer *http.ServeMux, as *utils.AppState) {
	// all attendances, or those of one event or one person
	muxer.HandleFunc("GET /attendances", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		rawEvent, rawPerson := query.Get("event"), query.Get("person")

		var attendances []model.Attendance
		var err error
		switch {
		case rawEvent != "" && rawPerson != "":
			writeMessage(w, http.StatusBadRequest, "filter by event or by person, not both")
			return
		case rawEvent != "":
			id, ok := parseID(w, "event", rawEvent)
			if !ok {
				return
			}
			attendances, err = as.Attendances.FindByEvent(r.Context(), &model.Event{ID: id})
		case rawPerson != "":
			id, ok := parseID(w, "person", rawPerson)
			if !ok {
				return
			}
			attendances, err = as.Attendances.FindByPerson(r.Context(), &model.Person{ID: id})
		default:
			attendances, err = as.Attendances.FindAll(r.Context())
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, attendances)
	})

	muxer.HandleFunc("POST /attendances", func(w http.ResponseWriter, r *http.Request) {
		var body attendanceReqBody
		if !decodeBody(w, r, &body) {
			return
		}
		attendance := body.toAttendance()
		if err := as.Attendances.Create(r.Context(), attendance); err != nil {
			writeError(w, err)
			return
		}
		respondAttendance(w, r, as, attendance.ID, http.StatusCreated)
	})

	muxer.HandleFunc("GET /attendances/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		respondAttendance(w, r, as, id, http.StatusOK)
	})

	muxer.HandleFunc("PUT /attendances/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var body attendanceReqBody
		if !decodeBody(w, r, &body) || !checkBodyID(w, body.ID, id) {
			return
		}
		body.ID = id
		if err := as.Attendances.Update(r.Context(), body.toAttendance()); err != nil {
			writeError(w, err)
			return
		}
		respondAttendance(w, r, as, id, http.StatusOK)
	})

	muxer.HandleFunc("DELETE /attendances/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var body versionReqBody
		if !decodeBody(w, r, &body) {
			return
		}
		if err := as.Attendances.Delete(r.Context(), &model.Attendance{ID: id, Version: body.Version}); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// respondAttendance re-reads the attendance so the response carries the
// referenced event and person.
func respondAttendance(w http.ResponseWriter, r *http.Request, as *utils.AppState, id int64, status int) {
	attendance, err := as.Attendances.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, attendance)
}
