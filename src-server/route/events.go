package route

import (
	"net/http"
	"time"

	"calendar/src-server/model"
	"calendar/src-server/utils"
)

func Events(muxer *http.ServeMux, as *utils.AppState) {
	// all events, or those overlapping [from, to] when both are given
	muxer.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		rawFrom, rawTo := query.Get("from"), query.Get("to")
		if rawFrom == "" && rawTo == "" {
			events, err := as.Events.FindAll(r.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, events)
			return
		}

		var from, to time.Time
		var err error
		if from, err = time.Parse(time.RFC3339Nano, rawFrom); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid from %q: expected RFC 3339", rawFrom)
			return
		}
		if to, err = time.Parse(time.RFC3339Nano, rawTo); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid to %q: expected RFC 3339", rawTo)
			return
		}
		events, err := as.Events.FindByDateRange(r.Context(), from, to)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, events)
	})

	muxer.HandleFunc("POST /events", func(w http.ResponseWriter, r *http.Request) {
		var event model.Event
		if !decodeBody(w, r, &event) {
			return
		}
		if err := as.Events.Create(r.Context(), &event); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, event)
	})

	muxer.HandleFunc("GET /events/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		event, err := as.Events.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, event)
	})

	muxer.HandleFunc("PUT /events/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var event model.Event
		if !decodeBody(w, r, &event) || !checkBodyID(w, event.ID, id) {
			return
		}
		event.ID = id
		if err := as.Events.Update(r.Context(), &event); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, event)
	})

	muxer.HandleFunc("DELETE /events/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var body versionReqBody
		if !decodeBody(w, r, &body) {
			return
		}
		if err := as.Events.Delete(r.Context(), &model.Event{ID: id, Version: body.Version}); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
