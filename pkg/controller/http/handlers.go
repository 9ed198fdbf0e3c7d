package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model/auth"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
	"github.com/mnemo-lab/mnemosyne/pkg/usecase"
	"github.com/mnemo-lab/mnemosyne/pkg/utils/errutil"
	"github.com/mnemo-lab/mnemosyne/pkg/utils/safe"
)

func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

// handleError maps use case sentinels to HTTP status codes. Access denial
// deliberately produces the same generic body regardless of whether the
// project exists.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, usecase.ErrFragmentTooShort):
		// The reason is user-facing: the client must know to send a more
		// specific fragment.
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidInput):
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
	case errors.Is(err, usecase.ErrAccessDenied):
		errutil.HandleHTTP(ctx, w, errors.New("access denied"), http.StatusForbidden)
	case errors.Is(err, usecase.ErrProjectNotFound),
		errors.Is(err, usecase.ErrMemoryNotFound),
		errors.Is(err, usecase.ErrNoMemories):
		errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)
	default:
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
	}
}

func requestUserID(r *http.Request) types.UserID {
	return auth.TokenFromContext(r.Context()).UserID
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return goerr.Wrap(usecase.ErrInvalidInput, "invalid request body")
	}
	return nil
}

type projectResponse struct {
	ID        types.ProjectID `json:"id"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"created_at"`
}

func toProjectResponse(p *model.Project) projectResponse {
	return projectResponse{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt}
}

func createProjectHandler(uc *usecase.UseCases) http.HandlerFunc {
	type request struct {
		Name string `json:"name"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		project, err := uc.CreateProject(r.Context(), requestUserID(r), req.Name)
		if err != nil {
			handleError(w, r, err)
			return
		}

		respondJSON(w, r, http.StatusCreated, toProjectResponse(project))
	}
}

func listProjectsHandler(uc *usecase.UseCases) http.HandlerFunc {
	type response struct {
		Projects []projectResponse `json:"projects"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := uc.ListProjects(r.Context(), requestUserID(r))
		if err != nil {
			handleError(w, r, err)
			return
		}

		resp := response{Projects: make([]projectResponse, len(projects))}
		for i, p := range projects {
			resp.Projects[i] = toProjectResponse(p)
		}
		respondJSON(w, r, http.StatusOK, resp)
	}
}

func getProjectHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := types.ProjectID(chi.URLParam(r, "projectID"))

		project, err := uc.GetProject(r.Context(), requestUserID(r), projectID)
		if err != nil {
			handleError(w, r, err)
			return
		}

		respondJSON(w, r, http.StatusOK, toProjectResponse(project))
	}
}

func deleteProjectHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := types.ProjectID(chi.URLParam(r, "projectID"))

		if err := uc.DeleteProject(r.Context(), requestUserID(r), projectID); err != nil {
			handleError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func ingestHandler(uc *usecase.UseCases) http.HandlerFunc {
	type request struct {
		ProjectID    types.ProjectID `json:"project_id"`
		Conversation string          `json:"conversation"`
	}
	type ignoredResponse struct {
		Text     string  `json:"text"`
		Reason   string  `json:"reason"`
		Distance float64 `json:"distance,omitempty"`
	}
	type savedResponse struct {
		ID       types.MemoryID `json:"id"`
		Text     string         `json:"text"`
		Tags     []string       `json:"tags"`
		Category types.Category `json:"category"`
	}
	type response struct {
		Saved   []savedResponse   `json:"saved"`
		Ignored []ignoredResponse `json:"ignored"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		result, err := uc.Ingest(r.Context(), requestUserID(r), req.ProjectID, req.Conversation)
		if err != nil {
			handleError(w, r, err)
			return
		}

		resp := response{
			Saved:   make([]savedResponse, len(result.Saved)),
			Ignored: make([]ignoredResponse, len(result.Ignored)),
		}
		for i, m := range result.Saved {
			resp.Saved[i] = savedResponse{ID: m.ID, Text: m.Text, Tags: m.Tags, Category: m.Category}
		}
		for i, ig := range result.Ignored {
			resp.Ignored[i] = ignoredResponse{Text: ig.Text, Reason: ig.Reason, Distance: ig.Distance}
		}
		respondJSON(w, r, http.StatusOK, resp)
	}
}

func recallHandler(uc *usecase.UseCases) http.HandlerFunc {
	type request struct {
		ProjectID types.ProjectID `json:"project_id"`
		Query     string          `json:"query"`
	}
	type memoryResponse struct {
		ID        types.MemoryID `json:"id"`
		Text      string         `json:"text"`
		Rendered  string         `json:"rendered"`
		Tags      []string       `json:"tags"`
		Category  types.Category `json:"category"`
		CreatedAt time.Time      `json:"created_at"`
	}
	type response struct {
		Memories []memoryResponse `json:"memories"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		memories, err := uc.Recall(r.Context(), requestUserID(r), req.ProjectID, req.Query)
		if err != nil {
			handleError(w, r, err)
			return
		}

		resp := response{Memories: make([]memoryResponse, len(memories))}
		for i, m := range memories {
			resp.Memories[i] = memoryResponse{
				ID:        m.ID,
				Text:      m.Text,
				Rendered:  m.RecallLine(),
				Tags:      m.Tags,
				Category:  m.Category,
				CreatedAt: m.CreatedAt,
			}
		}
		respondJSON(w, r, http.StatusOK, resp)
	}
}

func resolveHandler(uc *usecase.UseCases) http.HandlerFunc {
	type request struct {
		ProjectID types.ProjectID `json:"project_id"`
		MemoryID  types.MemoryID  `json:"memory_id,omitempty"`
		Fragment  string          `json:"fragment,omitempty"`
	}
	type response struct {
		DeletedID types.MemoryID `json:"deleted_id"`
		Preview   string         `json:"preview"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		result, err := uc.Resolve(r.Context(), requestUserID(r), req.ProjectID, usecase.ResolveInput{
			MemoryID: req.MemoryID,
			Fragment: req.Fragment,
		})
		if err != nil {
			handleError(w, r, err)
			return
		}

		respondJSON(w, r, http.StatusOK, response{
			DeletedID: result.Deleted.ID,
			Preview:   result.Preview,
		})
	}
}

func exportHandler(uc *usecase.UseCases) http.HandlerFunc {
	type request struct {
		ProjectID types.ProjectID `json:"project_id"`
	}
	type response struct {
		ID        types.ReportID `json:"id"`
		Content   string         `json:"content"`
		Cached    bool           `json:"cached"`
		CreatedAt time.Time      `json:"created_at"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		result, err := uc.Export(r.Context(), requestUserID(r), req.ProjectID)
		if err != nil {
			handleError(w, r, err)
			return
		}

		respondJSON(w, r, http.StatusOK, response{
			ID:        result.Report.ID,
			Content:   result.Report.Content,
			Cached:    result.Cached,
			CreatedAt: result.Report.CreatedAt,
		})
	}
}
