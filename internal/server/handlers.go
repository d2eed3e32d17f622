package server

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/keagan/interviewlens/internal/media"
	"github.com/keagan/interviewlens/internal/scoring"
	"github.com/keagan/interviewlens/pkg/util"
)

// ResultRefHeader carries the sink reference of a saved result.
const ResultRefHeader = "X-Result-Ref"

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"strategies": scoring.Names(),
	})
}

// analyze handles POST /api/analyze.
func (s *Server) analyze(c *gin.Context) {
	if s.cfg.MaxUploadMB > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadMB<<20)
	}

	file, err := c.FormFile("video")
	if err != nil {
		respondError(c, http.StatusBadRequest, "video file is required", err.Error())
		return
	}
	userID := c.PostForm("user_id")

	if err := util.EnsureDir(s.cfg.UploadDir); err != nil {
		s.logger.Error().Err(err).Msg("create upload dir")
		respondError(c, http.StatusInternalServerError, "upload failed", err.Error())
		return
	}
	name := uuid.NewString() + "_" + filepath.Base(file.Filename)
	path := filepath.Join(s.cfg.UploadDir, name)
	if err := c.SaveUploadedFile(file, path); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("save upload")
		respondError(c, http.StatusInternalServerError, "upload failed", err.Error())
		return
	}

	guest := userID == ""
	if guest {
		s.expire(name, path)
	}

	ctx := c.Request.Context()
	if err := s.slots.Acquire(ctx, 1); err != nil {
		respondError(c, http.StatusServiceUnavailable, "request cancelled", err.Error())
		return
	}
	res, err := s.analyzer.Run(ctx, path, userID)
	s.slots.Release(1)

	if err != nil {
		var de *media.DemuxError
		if errors.As(err, &de) {
			s.logger.Warn().Err(err).Str("video", path).Msg("unprocessable upload")
			respondError(c, http.StatusUnprocessableEntity, "audio extraction failed", de.Output)
			return
		}
		s.logger.Error().Err(err).Str("video", path).Msg("analysis failed")
		respondError(c, http.StatusInternalServerError, "analysis failed", err.Error())
		return
	}

	if guest && s.keepAudio {
		s.expire(name+":audio", res.AudioFile)
	}

	if s.sink != nil {
		ref, err := s.sink.Save(ctx, res)
		if err != nil {
			s.logger.Warn().Err(err).Msg("result not saved")
		} else {
			c.Header(ResultRefHeader, ref)
		}
	}

	c.JSON(http.StatusOK, res)
}

func (s *Server) expire(key, path string) {
	if s.retention == nil || s.guestTTL <= 0 || path == "" {
		return
	}
	s.retention.Schedule(key, path, s.guestTTL)
}

func respondError(c *gin.Context, status int, msg, detail string) {
	c.JSON(status, gin.H{
		"error":  msg,
		"detail": detail,
	})
}
