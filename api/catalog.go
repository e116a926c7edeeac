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

	"github.com/gin-gonic/gin"
	"github.com/tonlage/tonlage/internal/apierror"
)

type importAlbumRequest struct {
	Mbid string `json:"mbid" binding:"required"`
}

// ImportAlbum pulls a MusicBrainz release into the catalogue by MBID.
func (a Api) ImportAlbum(c *gin.Context) {
	var req importAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mbid is required"})
		return
	}

	result, err := a.tonlage.ImportAlbum(c.Request.Context(), req.Mbid)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, result)
}

type importTrackRequest struct {
	Mbid string `json:"mbid" binding:"required"`
}

// ImportTrack pulls a single MusicBrainz recording into the catalogue by MBID.
func (a Api) ImportTrack(c *gin.Context) {
	var req importTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mbid is required"})
		return
	}

	result, err := a.tonlage.ImportTrack(c.Request.Context(), req.Mbid)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (a Api) GetArtist(c *gin.Context) {
	name, passed := c.Params.Get("name")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required. pass name in the route /:name"})
		return
	}

	artist, err := a.tonlage.ArtistByName(c.Request.Context(), name)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, artist)
}

func (a Api) GetTrack(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return
	}

	track, err := a.tonlage.TrackByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, track)
}

func (a Api) BackfillGenres(c *gin.Context) {
	processed, err := a.tonlage.BackfillGenres(c.Request.Context())
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"processed": processed})
}

func (a Api) BackfillVideos(c *gin.Context) {
	processed, err := a.tonlage.BackfillYoutube(c.Request.Context())
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"processed": processed})
}
