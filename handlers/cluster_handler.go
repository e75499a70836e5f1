package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/torvik/lumengallery/facecluster"
	"github.com/torvik/lumengallery/repository"
	"github.com/torvik/lumengallery/services"
	"github.com/torvik/lumengallery/workers"
)

// ClusterHandler exposes the face clustering pipeline: one-shot runs,
// continuous jobs with progress/cancellation, and bulk face disablement.
type ClusterHandler struct {
	ClusterService *services.ClusterService
	JobRunner      *workers.ClusterJobRunner
	FaceRepo       repository.FaceRepositoryInterface
}

type oneShotResponse struct {
	Message string `json:"message"`
	services.RunResult
}

type continuousResponse struct {
	JobID            string `json:"jobId"`
	Message          string `json:"message"`
	InitialFaceCount int    `json:"initialFaceCount"`
	TargetFaceCount  int    `json:"targetFaceCount"`
}

// Run starts either a one-shot clustering run (responding with its counts)
// or a continuous job (responding immediately with a job handle).
func (ch *ClusterHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req facecluster.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}

	opts, err := req.Normalize(ch.ClusterService.DefaultThreshold())
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_options", err.Error())
		return
	}

	if opts.Continuous {
		progress, err := ch.JobRunner.StartContinuous(opts)
		if err != nil {
			if errors.Is(err, workers.ErrJobAlreadyRunning) {
				WriteAPIError(w, http.StatusConflict, "job_running", err.Error())
				return
			}
			log.Printf("Error starting continuous clustering job: %v", err)
			WriteAPIError(w, http.StatusInternalServerError, "job_start_failed", "Failed to start clustering job")
			return
		}
		writeJSON(w, http.StatusAccepted, continuousResponse{
			JobID:            progress.JobID,
			Message:          "continuous clustering started",
			InitialFaceCount: progress.TotalFaces,
			TargetFaceCount:  progress.TargetFaceCount,
		})
		return
	}

	result, err := ch.ClusterService.RunBatch(opts)
	if err != nil {
		log.Printf("Error running clustering batch: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "run_failed", "Clustering run failed")
		return
	}

	message := "clustering run completed"
	if result.TotalUnassigned == 0 {
		message = "no unassigned faces to process"
	}
	writeJSON(w, http.StatusOK, oneShotResponse{Message: message, RunResult: result})
}

// GetJobProgress reports the state of a continuous job.
func (ch *ClusterHandler) GetJobProgress(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	progress, err := ch.JobRunner.Progress(jobID)
	if err != nil {
		if errors.Is(err, workers.ErrJobNotFound) {
			WriteAPIError(w, http.StatusNotFound, "job_not_found", "Unknown job ID: "+jobID)
			return
		}
		log.Printf("Error fetching progress for job %s: %v", jobID, err)
		WriteAPIError(w, http.StatusInternalServerError, "progress_failed", "Failed to fetch job progress")
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// CancelJob marks a continuous job inactive. The response acknowledges the
// request regardless of whether the job was actually running; an in-flight
// batch always finishes before the job observes cancellation.
func (ch *ClusterHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	ch.JobRunner.Cancel(jobID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "cancellation requested", "jobId": jobID})
}

// BulkDisableFaces marks the given faces ignored and clears their person
// assignments, permanently excluding them from future runs. Used to
// correct false-positive detections.
func (ch *ClusterHandler) BulkDisableFaces(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FaceIDs []uint `json:"faceIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}
	if len(req.FaceIDs) == 0 {
		WriteAPIError(w, http.StatusBadRequest, "missing_face_ids", "faceIds must be a non-empty list")
		return
	}

	affected, err := ch.FaceRepo.BulkDisable(req.FaceIDs)
	if err != nil {
		log.Printf("Error bulk-disabling %d faces: %v", len(req.FaceIDs), err)
		WriteAPIError(w, http.StatusInternalServerError, "bulk_disable_failed", "Failed to disable faces")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"disabled": affected})
}
