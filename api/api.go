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
	"github.com/gin-gonic/gin"
	"github.com/tonlage/tonlage"
)

type Api struct {
	tonlage *tonlage.Tonlage
	router  *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router

	router.POST("/albums", a.ImportAlbum)
	router.POST("/tracks", a.ImportTrack)
	router.GET("/artists/:name", a.GetArtist)
	router.GET("/tracks/:id", a.GetTrack)

	router.GET("/workflows/:id", a.GetWorkflow)

	router.GET("/plays", a.GetRecentPlays)
	router.GET("/plays/:id", a.GetPlayDetail)

	router.POST("/backfill/genres", a.BackfillGenres)
	router.POST("/backfill/videos", a.BackfillVideos)

	return a.router
}

func NewAPI(t *tonlage.Tonlage) *Api {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{
		tonlage: t,
		router:  r,
	}
}
