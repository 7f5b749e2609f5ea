package route

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"calendar/src-server/ical"
	"calendar/src-server/model"
	"calendar/src-server/utils"
)

// Ical serves every event, or those overlapping [from, to], as an
// iCalendar file with attendees.
func Ical(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /calendar.ics", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		rawFrom, rawTo := query.Get("from"), query.Get("to")

		var events []model.Event
		var err error
		if rawFrom == "" && rawTo == "" {
			events, err = as.Events.FindAll(r.Context())
		} else {
			var from, to time.Time
			if from, err = time.Parse(time.RFC3339Nano, rawFrom); err != nil {
				writeMessage(w, http.StatusBadRequest, "invalid from %q: expected RFC 3339", rawFrom)
				return
			}
			if to, err = time.Parse(time.RFC3339Nano, rawTo); err != nil {
				writeMessage(w, http.StatusBadRequest, "invalid to %q: expected RFC 3339", rawTo)
				return
			}
			events, err = as.Events.FindByDateRange(r.Context(), from, to)
		}
		if err != nil {
			writeError(w, err)
			return
		}

		cal, err := ical.Export(r.Context(), "calendar", events, as.Attendances)
		if err != nil {
			writeError(w, err)
			return
		}
		var buf bytes.Buffer
		if err := cal.Marshal(&buf, time.Now()); err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
		if _, err := w.Write(buf.Bytes()); err != nil {
			slog.Warn("can't write calendar", "error", err)
		}
	})
}
