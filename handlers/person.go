package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/torvik/lumengallery/models"
	"github.com/torvik/lumengallery/repository"
)

type PersonHandler struct {
	PersonRepo repository.PersonRepositoryInterface
}

func parsePersonID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "person_id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid person_id")
	}
	return uint(id), nil
}

func (ph *PersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		WriteAPIError(w, http.StatusBadRequest, "missing_name", "name is required")
		return
	}

	person := models.Person{Name: req.Name, Confirmed: true}
	if err := ph.PersonRepo.Create(&person); err != nil {
		log.Printf("Error creating person %s: %v", req.Name, err)
		WriteAPIError(w, http.StatusInternalServerError, "create_failed", "Failed to create person")
		return
	}
	writeJSON(w, http.StatusCreated, person)
}

func (ph *PersonHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := ph.PersonRepo.ListAll()
	if err != nil {
		log.Printf("Error listing people: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "list_failed", "Failed to list people")
		return
	}
	writeJSON(w, http.StatusOK, people)
}

func (ph *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	personID, err := parsePersonID(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}

	person, err := ph.PersonRepo.GetByID(personID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Person not found")
			return
		}
		log.Printf("Error fetching person %d: %v", personID, err)
		WriteAPIError(w, http.StatusInternalServerError, "get_failed", "Failed to fetch person")
		return
	}
	writeJSON(w, http.StatusOK, person)
}

// UpdatePerson renames a person and/or flips the human-verified flag.
func (ph *PersonHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	personID, err := parsePersonID(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}

	var req struct {
		Name      *string `json:"name"`
		Confirmed *bool   `json:"confirmed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}

	person, err := ph.PersonRepo.GetByID(personID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Person not found")
			return
		}
		log.Printf("Error fetching person %d for update: %v", personID, err)
		WriteAPIError(w, http.StatusInternalServerError, "get_failed", "Failed to fetch person")
		return
	}

	if req.Name != nil && *req.Name != "" {
		person.Name = *req.Name
	}
	if req.Confirmed != nil {
		person.Confirmed = *req.Confirmed
	}

	if err := ph.PersonRepo.Update(person); err != nil {
		log.Printf("Error updating person %d: %v", personID, err)
		WriteAPIError(w, http.StatusInternalServerError, "update_failed", "Failed to update person")
		return
	}
	writeJSON(w, http.StatusOK, person)
}

func (ph *PersonHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	personID, err := parsePersonID(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}

	if err := ph.PersonRepo.Delete(personID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Person not found")
			return
		}
		log.Printf("Error deleting person %d: %v", personID, err)
		WriteAPIError(w, http.StatusInternalServerError, "delete_failed", "Failed to delete person")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
