package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/torvik/lumengallery/repository"
	"github.com/torvik/lumengallery/services"
)

type FaceHandler struct {
	FaceRepo   repository.FaceRepositoryInterface
	PersonRepo repository.PersonRepositoryInterface
	Centroids  *services.CentroidService
}

func parseFaceID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "face_id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid face_id")
	}
	return uint(id), nil
}

func (fh *FaceHandler) GetFace(w http.ResponseWriter, r *http.Request) {
	faceID, err := parseFaceID(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}

	face, err := fh.FaceRepo.GetByID(faceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Face not found")
			return
		}
		log.Printf("Error fetching face %d: %v", faceID, err)
		WriteAPIError(w, http.StatusInternalServerError, "get_failed", "Failed to fetch face")
		return
	}
	writeJSON(w, http.StatusOK, face)
}

// TagFace manually assigns a face to a person and refreshes the person's
// centroid so the next automatic run sees the correction.
func (fh *FaceHandler) TagFace(w http.ResponseWriter, r *http.Request) {
	faceID, err := parseFaceID(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}

	var req struct {
		PersonID uint `json:"person_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}
	if req.PersonID == 0 {
		WriteAPIError(w, http.StatusBadRequest, "missing_person_id", "person_id is required")
		return
	}

	if _, err := fh.PersonRepo.GetByID(req.PersonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusBadRequest, "person_not_found", "Person with provided person_id not found")
			return
		}
		log.Printf("Error checking person %d before tagging face: %v", req.PersonID, err)
		WriteAPIError(w, http.StatusInternalServerError, "verify_failed", "Failed to verify person")
		return
	}

	if err := fh.FaceRepo.AssignPerson(faceID, req.PersonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Face not found")
			return
		}
		log.Printf("Error tagging face %d with person %d: %v", faceID, req.PersonID, err)
		WriteAPIError(w, http.StatusInternalServerError, "tag_failed", "Failed to tag face")
		return
	}

	if err := fh.Centroids.UpdateCentroid(req.PersonID); err != nil {
		log.Printf("Warning: centroid update after tagging face %d failed: %v", faceID, err)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"face_id": faceID, "person_id": req.PersonID})
}

// UntagFace clears a face's person assignment and refreshes the previous
// person's centroid.
func (fh *FaceHandler) UntagFace(w http.ResponseWriter, r *http.Request) {
	faceID, err := parseFaceID(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}

	face, err := fh.FaceRepo.GetByID(faceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Face not found")
			return
		}
		log.Printf("Error fetching face %d before untagging: %v", faceID, err)
		WriteAPIError(w, http.StatusInternalServerError, "get_failed", "Failed to fetch face")
		return
	}

	if err := fh.FaceRepo.UnassignPerson(faceID); err != nil {
		log.Printf("Error untagging face %d: %v", faceID, err)
		WriteAPIError(w, http.StatusInternalServerError, "untag_failed", "Failed to untag face")
		return
	}

	if face.PersonID != nil {
		if err := fh.Centroids.UpdateCentroid(*face.PersonID); err != nil {
			log.Printf("Warning: centroid update after untagging face %d failed: %v", faceID, err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// IgnoreFace permanently excludes one face from matching and clustering.
func (fh *FaceHandler) IgnoreFace(w http.ResponseWriter, r *http.Request) {
	faceID, err := parseFaceID(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}

	face, err := fh.FaceRepo.GetByID(faceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Face not found")
			return
		}
		log.Printf("Error fetching face %d before ignoring: %v", faceID, err)
		WriteAPIError(w, http.StatusInternalServerError, "get_failed", "Failed to fetch face")
		return
	}

	if err := fh.FaceRepo.SetIgnored(faceID, true); err != nil {
		log.Printf("Error ignoring face %d: %v", faceID, err)
		WriteAPIError(w, http.StatusInternalServerError, "ignore_failed", "Failed to ignore face")
		return
	}

	if face.PersonID != nil {
		if err := fh.Centroids.UpdateCentroid(*face.PersonID); err != nil {
			log.Printf("Warning: centroid update after ignoring face %d failed: %v", faceID, err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"face_id": faceID, "ignored": true})
}
