package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/patric-chuzhbe/contactsapi/internal/models"
)

const contactDeletedMessage = "contact deleted"

// GetApicontacts lists every contact.
func (router *Router) GetApicontacts(response http.ResponseWriter, request *http.Request) {
	contacts, err := router.contacts.List(request.Context())
	if err != nil {
		writeContactError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, models.ContactEnvelope{
		Status: http.StatusOK,
		Data:   map[string]any{"contacts": contacts},
	})
}

func (router *Router) GetApicontactsByID(response http.ResponseWriter, request *http.Request) {
	contact, err := router.contacts.GetByID(request.Context(), chi.URLParam(request, "contactId"))
	if err != nil {
		writeContactError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, models.ContactEnvelope{
		Status: http.StatusOK,
		Data:   map[string]any{"contact": contact},
	})
}

// PostApicontacts creates a contact. The HTTP status is 200 while the
// envelope carries 201; existing clients depend on that.
func (router *Router) PostApicontacts(response http.ResponseWriter, request *http.Request) {
	var fields models.ContactRequest
	if err := decodeJSON(request, &fields); err != nil {
		writeContactError(response, request, err)
		return
	}

	contact, err := router.contacts.Create(request.Context(), fields)
	if err != nil {
		writeContactError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, models.ContactEnvelope{
		Status: http.StatusCreated,
		Data:   map[string]any{"newContact": contact},
	})
}

// PutApicontacts replaces name, email and phone. It serves PUT and PATCH.
func (router *Router) PutApicontacts(response http.ResponseWriter, request *http.Request) {
	var fields models.ContactRequest
	if err := decodeJSON(request, &fields); err != nil {
		writeContactError(response, request, err)
		return
	}

	contact, err := router.contacts.Update(request.Context(), chi.URLParam(request, "contactId"), fields)
	if err != nil {
		writeContactError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, models.ContactEnvelope{
		Status: http.StatusOK,
		Data:   map[string]any{"updatedContact": contact},
	})
}

func (router *Router) PatchApicontactsFavorite(response http.ResponseWriter, request *http.Request) {
	var fields models.FavoriteRequest
	if err := decodeJSONFields(request, &fields); err != nil {
		writeContactError(response, request, err)
		return
	}

	contact, err := router.contacts.UpdateFavorite(request.Context(), chi.URLParam(request, "contactId"), fields)
	if err != nil {
		writeContactError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, models.ContactEnvelope{
		Status: http.StatusOK,
		Data:   map[string]any{"updatedContact": contact},
	})
}

func (router *Router) DeleteApicontacts(response http.ResponseWriter, request *http.Request) {
	if err := router.contacts.Remove(request.Context(), chi.URLParam(request, "contactId")); err != nil {
		writeContactError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, models.ContactEnvelope{
		Status:  http.StatusOK,
		Message: contactDeletedMessage,
	})
}
