/*
Copyright 2024 Tonlage Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tonlage/tonlage/internal/apierror"
)

const (
	defaultPlayLimit = 50
	maxWorkflowWait  = 30 * time.Second
)

// GetWorkflow reads one workflow record. With ?wait=<duration> the call
// blocks until the workflow is ready or the wait elapses, so a caller can
// hold a request open while enrichment runs.
func (a Api) GetWorkflow(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	if waitRaw := c.Query("wait"); waitRaw != "" {
		wait, err := time.ParseDuration(waitRaw)
		if err != nil || wait <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "wait must be a positive duration such as 5s"})
			return
		}
		if wait > maxWorkflowWait {
			wait = maxWorkflowWait
		}

		workflow, ready, err := a.tonlage.AwaitWorkflow(c.Request.Context(), id, wait)
		if err != nil {
			c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"workflow": workflow, "ready": ready})
		return
	}

	workflow, err := a.tonlage.Workflow(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflow": workflow, "ready": workflow.Ready()})
}

func (a Api) GetRecentPlays(c *gin.Context) {
	limit := defaultPlayLimit
	if limitRaw := c.Query("limit"); limitRaw != "" {
		parsed, err := strconv.Atoi(limitRaw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	plays, err := a.tonlage.RecentPlays(c.Request.Context(), limit)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, plays)
}

func (a Api) GetPlayDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return
	}

	detail, err := a.tonlage.PlayDetail(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, detail)
}
