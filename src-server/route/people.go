package route

import (
	"net/http"

	"calendar/src-server/model"
	"calendar/src-server/utils"
)

func People(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /people", func(w http.ResponseWriter, r *http.Request) {
		people, err := as.People.FindAll(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, people)
	})

	muxer.HandleFunc("POST /people", func(w http.ResponseWriter, r *http.Request) {
		var person model.Person
		if !decodeBody(w, r, &person) {
			return
		}
		if err := as.People.Create(r.Context(), &person); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, person)
	})

	muxer.HandleFunc("GET /people/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		person, err := as.People.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, person)
	})

	muxer.HandleFunc("PUT /people/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var person model.Person
		if !decodeBody(w, r, &person) || !checkBodyID(w, person.ID, id) {
			return
		}
		person.ID = id
		if err := as.People.Update(r.Context(), &person); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, person)
	})

	muxer.HandleFunc("DELETE /people/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var body versionReqBody
		if !decodeBody(w, r, &body) {
			return
		}
		if err := as.People.Delete(r.Context(), &model.Person{ID: id, Version: body.Version}); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
