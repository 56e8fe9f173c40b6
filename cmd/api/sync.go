package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/response"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/store"
	syncer "github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/sync"
)

type GetSyncRunsResponse = response.APIResponse[[]store.SyncRun]
type GetSyncRunResponse = response.APIResponse[*store.SyncRun]
type TriggerSyncResponse = response.APIResponse[map[string]string]

// @Summary		Trigger a synchronization run
// @Description	Starts an asynchronous sync for one source over a date window. A source only runs one sync at a time.
// @Tags			Sync
// @Accept			json
// @Produce		json
// @Param			sync	body		object{source:string,from:string,to:string,development_ids:[]int64,skip_recent_hours:int}	true	"Run parameters"
// @Success		202		{object}	TriggerSyncResponse		"Sync run accepted"
// @Failure		400		{object}	response.ErrorResponse	"Invalid request payload"
// @Failure		409		{object}	response.ErrorResponse	"A run for this source is already in flight"
// @Router			/sync [post]
func (app *application) handleTriggerSync(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Source          string  `json:"source"`
		From            string  `json:"from"`
		To              string  `json:"to"`
		DevelopmentIDs  []int64 `json:"development_ids"`
		SkipRecentHours int     `json:"skip_recent_hours"`
	}

	if err := readJSON(w, r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if input.Source == "" {
		writeJSONError(w, http.StatusBadRequest, "missing required field: source")
		return
	}

	now := time.Now()
	defaultFrom := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	defaultTo := defaultFrom.AddDate(0, app.config.windowMonths, -1)

	from, err := parseTime(parseDateOrDefault(input.From, defaultFrom.Format("2006-01-02")))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid from date (YYYY-MM-DD expected)")
		return
	}
	to, err := parseTime(parseDateOrDefault(input.To, defaultTo.Format("2006-01-02")))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid to date (YYYY-MM-DD expected)")
		return
	}
	if to.Before(from) {
		writeJSONError(w, http.StatusBadRequest, "to must not be before from")
		return
	}

	if !app.tryAcquire(input.Source) {
		writeJSONError(w, http.StatusConflict, "a sync run for this source is already in progress")
		return
	}

	opts := syncer.RunOptions{
		Source:          input.Source,
		From:            from,
		To:              to,
		DevelopmentIDs:  input.DevelopmentIDs,
		SkipRecentHours: input.SkipRecentHours,
		TriggeredBy:     store.TriggerTypeManual,
	}

	// The run outlives the request; progress is exposed through /sync/runs.
	go func() {
		defer app.release(opts.Source)
		report, err := app.orchestrator.Run(context.Background(), opts)
		if err != nil {
			app.log.Error("API", "Sync run failed: source=%s err=%v", opts.Source, err)
			return
		}
		app.log.Info("API", "Sync run completed: source=%s run=%d status=%s", opts.Source, report.RunID, report.Status)
	}()

	resp := &TriggerSyncResponse{
		Success: true,
		Message: "Sync run accepted",
		Data: map[string]string{
			"source": input.Source,
			"from":   from.Format("2006-01-02"),
			"to":     to.Format("2006-01-02"),
		},
	}

	if err := writeJSON(w, http.StatusAccepted, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Get sync run history
// @Description	Get a list of the latest sync runs.
// @Tags			Sync
// @Produce		json
// @Param			limit	query		int						false	"Limit the number of results"	default(10)
// @Success		200		{object}	GetSyncRunsResponse		"Successfully retrieved latest sync runs"
// @Failure		500		{object}	response.ErrorResponse	"Failed to get sync run history"
// @Router			/sync/runs [get]
func (app *application) handleListSyncRuns(w http.ResponseWriter, r *http.Request) {
	limitParam := r.URL.Query().Get("limit")
	limit := 10
	if limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil {
			limit = l
		}
	}

	ctx := r.Context()
	data, err := app.store.SyncRuns.GetLatest(ctx, limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get sync run history: "+err.Error())
		return
	}

	resp := &GetSyncRunsResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved latest sync runs",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Get one sync run
// @Description	Get a single sync run with its metrics by id.
// @Tags			Sync
// @Produce		json
// @Param			id	path		int						true	"Sync run id"
// @Success		200	{object}	GetSyncRunResponse		"Successfully retrieved sync run"
// @Failure		404	{object}	response.ErrorResponse	"Sync run not found"
// @Failure		500	{object}	response.ErrorResponse	"Failed to get sync run"
// @Router			/sync/runs/{id} [get]
func (app *application) handleGetSyncRun(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid sync run id")
		return
	}

	ctx := r.Context()
	run, err := app.store.SyncRuns.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "sync run not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "failed to get sync run: "+err.Error())
		return
	}

	resp := &GetSyncRunResponse{
		Success: true,
		Data:    run,
		Message: "Successfully retrieved sync run",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
