package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/receivable"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/response"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/store"
)

type GetDevelopmentsResponse = response.APIResponse[[]store.Development]
type GetSnapshotResponse = response.APIResponse[*store.PortfolioSnapshot]
type GetAgingResponse = response.APIResponse[*store.DelinquencyReport]
type GetCashInResponse = response.APIResponse[[]store.MonthlyCashIn]

// @Summary		List developments
// @Description	Get the canonical developments synced from one source.
// @Tags			Portfolio
// @Produce		json
// @Param			source	query		string					true	"Source system (uau or sienge)"
// @Success		200		{object}	GetDevelopmentsResponse	"Successfully retrieved developments"
// @Failure		400		{object}	response.ErrorResponse	"Missing source parameter"
// @Failure		500		{object}	response.ErrorResponse	"Failed to list developments"
// @Router			/developments [get]
func (app *application) handleListDevelopments(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	if source == "" {
		writeJSONError(w, http.StatusBadRequest, "missing required parameter: source")
		return
	}

	ctx := r.Context()
	data, err := app.store.Developments.List(ctx, source)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list developments: "+err.Error())
		return
	}

	resp := &GetDevelopmentsResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved developments",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Get portfolio snapshot
// @Description	Get the portfolio snapshot of one development for a reference month.
// @Tags			Portfolio
// @Produce		json
// @Param			developmentID	path		int						true	"Development id"
// @Param			month			query		string					false	"Reference month (YYYY-MM), defaults to the current month"
// @Success		200				{object}	GetSnapshotResponse		"Successfully retrieved portfolio snapshot"
// @Failure		404				{object}	response.ErrorResponse	"No snapshot for this development and month"
// @Failure		500				{object}	response.ErrorResponse	"Failed to get portfolio snapshot"
// @Router			/developments/{developmentID}/snapshot [get]
func (app *application) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	devID, err := strconv.ParseInt(chi.URLParam(r, "developmentID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid development id")
		return
	}
	month, ok := parseMonthOrNow(r.URL.Query().Get("month"))
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid month (YYYY-MM expected)")
		return
	}

	ctx := r.Context()
	snap, err := app.store.Snapshots.Get(ctx, devID, month)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "no snapshot for this development and month")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "failed to get portfolio snapshot: "+err.Error())
		return
	}

	resp := &GetSnapshotResponse{
		Success: true,
		Data:    snap,
		Message: "Successfully retrieved portfolio snapshot",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Get delinquency aging report
// @Description	Get the aging buckets of one development for a reference month.
// @Tags			Portfolio
// @Produce		json
// @Param			developmentID	path		int						true	"Development id"
// @Param			month			query		string					false	"Reference month (YYYY-MM), defaults to the current month"
// @Success		200				{object}	GetAgingResponse		"Successfully retrieved aging report"
// @Failure		404				{object}	response.ErrorResponse	"No aging report for this development and month"
// @Failure		500				{object}	response.ErrorResponse	"Failed to get aging report"
// @Router			/developments/{developmentID}/aging [get]
func (app *application) handleGetAging(w http.ResponseWriter, r *http.Request) {
	devID, err := strconv.ParseInt(chi.URLParam(r, "developmentID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid development id")
		return
	}
	month, ok := parseMonthOrNow(r.URL.Query().Get("month"))
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid month (YYYY-MM expected)")
		return
	}

	ctx := r.Context()
	report, err := app.store.Delinquency.Get(ctx, devID, month)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "no aging report for this development and month")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "failed to get aging report: "+err.Error())
		return
	}

	resp := &GetAgingResponse{
		Success: true,
		Data:    report,
		Message: "Successfully retrieved aging report",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Get monthly cash-in aggregates
// @Description	Get the forecast/actual cash-in rows of one development over a month range.
// @Tags			Portfolio
// @Produce		json
// @Param			developmentID	path		int						true	"Development id"
// @Param			from			query		string					false	"First month (YYYY-MM), defaults to the current month"
// @Param			to				query		string					false	"Last month (YYYY-MM), defaults to from + 11 months"
// @Success		200				{object}	GetCashInResponse		"Successfully retrieved cash-in aggregates"
// @Failure		500				{object}	response.ErrorResponse	"Failed to get cash-in aggregates"
// @Router			/developments/{developmentID}/cash-in [get]
func (app *application) handleGetCashIn(w http.ResponseWriter, r *http.Request) {
	devID, err := strconv.ParseInt(chi.URLParam(r, "developmentID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid development id")
		return
	}

	from, ok := parseMonthOrNow(r.URL.Query().Get("from"))
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid from month (YYYY-MM expected)")
		return
	}
	to := r.URL.Query().Get("to")
	if to == "" {
		start, _ := time.Parse("2006-01", from)
		to = receivable.MonthOf(start.AddDate(0, 11, 0))
	} else if _, err := time.Parse("2006-01", to); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid to month (YYYY-MM expected)")
		return
	}

	ctx := r.Context()
	data, err := app.store.CashIn.ListForDevelopment(ctx, devID, from, to)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get cash-in aggregates: "+err.Error())
		return
	}

	resp := &GetCashInResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved cash-in aggregates",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
