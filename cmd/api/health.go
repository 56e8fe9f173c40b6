package main

import (
	"net/http"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/db"
)

// @Summary		Health check
// @Description	returns the status of the service and its storage connection
// @Tags			Health
// @Produce		json
// @Success		200	{object}	map[string]string
// @Failure		503	{object}	response.ErrorResponse
// @Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {

	data := map[string]string{
		"status":  "available",
		"version": version,
	}

	if err := db.Probe(r.Context(), app.db); err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "storage unavailable: "+err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, data); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
