// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/lintgate/services/gate"
)

// HandleAfterEdit handles POST /v1/hooks/after-edit.
//
// Description:
//
//	Decodes an edit event and runs it through the gate. The gate's
//	failure message is returned verbatim in the error field.
//
// Responses:
//
//	200 - HookResponse, gate finished in "done".
//	422 - HookResponse, gate finished in "failed".
//	400 - ErrorResponse, body is not an edit event.
func (s *Server) HandleAfterEdit(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := s.logger.With("request_id", requestID, "handler", "HandleAfterEdit")

	var ev gate.EditEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		logger.Warn("invalid request body", "error", err.Error())
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	out, err := s.handler.Handle(c.Request.Context(), ev)
	resp := HookResponse{
		InvocationID: out.InvocationID,
		State:        out.State,
		Reason:       out.Reason,
	}
	if err != nil {
		var lerr *gate.LintError
		if !errors.As(err, &lerr) {
			logger.Error("gate returned unexpected error", "error", err.Error())
		}
		resp.State = gate.StateFailed
		resp.Error = err.Error()
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleHealth handles GET /v1/health.
func (s *Server) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
