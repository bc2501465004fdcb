package http

import (
	"net/http"

	"plenio/internal/core"
	"plenio/internal/services"
)

// Payment methods, categories and budgets share one set of handlers.

func createResource[T any, In core.Input](svc *services.ResourceService[T, In]) authenticated {
	return func(w http.ResponseWriter, r *http.Request, subject string) {
		var in In
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(r.Context(), w, r, err)
			return
		}
		doc, err := svc.Create(r.Context(), subject, in)
		if err != nil {
			writeError(r.Context(), w, r, err)
			return
		}
		writeJSON(w, doc)
	}
}

func listResources[T any, In core.Input](svc *services.ResourceService[T, In]) authenticated {
	return func(w http.ResponseWriter, r *http.Request, subject string) {
		docs, err := svc.List(r.Context(), subject)
		if err != nil {
			writeError(r.Context(), w, r, err)
			return
		}
		if docs == nil {
			docs = []T{}
		}
		writeJSON(w, docs)
	}
}

func updateResource[T any, In core.Input](svc *services.ResourceService[T, In]) authenticated {
	return func(w http.ResponseWriter, r *http.Request, subject string) {
		var in In
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(r.Context(), w, r, err)
			return
		}
		doc, err := svc.Update(r.Context(), subject, r.PathValue("id"), in)
		if err != nil {
			writeError(r.Context(), w, r, err)
			return
		}
		writeJSON(w, doc)
	}
}

func deleteResource[T any, In core.Input](svc *services.ResourceService[T, In]) authenticated {
	return func(w http.ResponseWriter, r *http.Request, subject string) {
		if err := svc.Delete(r.Context(), subject, r.PathValue("id")); err != nil {
			writeError(r.Context(), w, r, err)
			return
		}
		MessageResponse(svc.Name() + " deleted").Write(w)
	}
}
