package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Desarso/fitcoach/gateway"
	"github.com/Desarso/fitcoach/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// profile loads the stored profile or writes the error response.
func (s *Server) profile(c *gin.Context) (*models.Profile, bool) {
	p, err := s.coach.Profile(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return p, true
}

func (s *Server) getProfile(c *gin.Context) {
	p, ok := s.profile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) putProfile(c *gin.Context) {
	var p models.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	if err := p.Validate(); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.coach.SaveProfile(c.Request.Context(), &p); err != nil {
		s.fail(c, err)
		return
	}
	if s.tips != nil {
		s.tips.Invalidate()
	}
	c.JSON(http.StatusOK, &p)
}

func (s *Server) deleteProfile(c *gin.Context) {
	if err := s.coach.ResetProfile(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	if s.tips != nil {
		s.tips.Invalidate()
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) tip(c *gin.Context) {
	p, ok := s.profile(c)
	if !ok {
		return
	}
	var (
		tip string
		err error
	)
	if s.tips != nil {
		tip, err = s.tips.Tip(c.Request.Context())
	} else {
		tip, err = s.coach.Gateway.QuickTip(c.Request.Context(), p)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tip": tip})
}

func (s *Server) recovery(c *gin.Context) {
	p, ok := s.profile(c)
	if !ok {
		return
	}
	plan, err := s.coach.Gateway.RecoveryPlan(c.Request.Context(), p)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

func (s *Server) dietPlan(c *gin.Context) {
	period, err := models.ParseDietPeriod(c.Query("period"))
	if err != nil {
		badRequest(c, err)
		return
	}
	p, ok := s.profile(c)
	if !ok {
		return
	}
	plans, err := s.coach.Gateway.DietPlan(c.Request.Context(), p, period)
	if err != nil {
		s.fail(c, err)
		return
	}
	// null plans means the model's answer could not be used
	c.JSON(http.StatusOK, gin.H{"period": period, "plans": plans})
}

func (s *Server) workoutPlan(c *gin.Context) {
	period, err := models.ParseWorkoutPeriod(c.Query("period"))
	if err != nil {
		badRequest(c, err)
		return
	}
	p, ok := s.profile(c)
	if !ok {
		return
	}
	routine, err := s.coach.Gateway.WorkoutPlan(c.Request.Context(), p, period)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": period, "routine": routine})
}

func (s *Server) mealImage(c *gin.Context) {
	var req models.MealImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	img, err := s.coach.Gateway.MealImage(c.Request.Context(), req.Meal, req.Size)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, imageResponse(img))
}

func (s *Server) editImage(c *gin.Context) {
	var req models.ImageEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	media, err := models.ParseImageInput(req.Image)
	if err != nil {
		badRequest(c, err)
		return
	}
	img, err := s.coach.Gateway.EditImage(c.Request.Context(), media, req.Instruction)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, imageResponse(img))
}

func imageResponse(img *models.InlineImage) models.ImageResponse {
	if img == nil {
		return models.ImageResponse{}
	}
	url := img.DataURL()
	return models.ImageResponse{Image: &url}
}

// video answers 200 with a null video on any generation failure; the client
// shows "no demo available" rather than an error.
func (s *Server) video(c *gin.Context) {
	var req models.VideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	prompt := req.Prompt
	if strings.TrimSpace(prompt) == "" {
		prompt = req.Exercise
	}
	ref, err := s.coach.Gateway.GenerateVideo(c.Request.Context(), prompt)
	if errors.Is(err, gateway.ErrInvalidInput) {
		badRequest(c, err)
		return
	}
	if err != nil {
		s.logger.Warn("Video generation failed", zap.Error(err))
		ref = nil
	}
	c.JSON(http.StatusOK, models.VideoResponse{Video: ref})
}

func (s *Server) analysis(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, fmt.Errorf("file is required: %w", err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		badRequest(c, err)
		return
	}

	media := models.NewMedia(data, fh.Header.Get("Content-Type"))
	text, err := s.coach.Gateway.AnalyzeMedia(c.Request.Context(), media)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": text, "mimeType": media.MIMEType})
}

func (s *Server) places(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		query = c.Query("type")
	}
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		badRequest(c, errors.New("lat and lng are required numbers"))
		return
	}

	results, err := s.coach.Gateway.NearbyPlaces(c.Request.Context(), query, models.GeoPoint{Latitude: lat, Longitude: lng})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"places": results})
}

func (s *Server) generations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	var (
		traces any
		err    error
	)
	if op := c.Query("op"); op != "" {
		traces, err = s.coach.Store.TracesByOperation(op, limit)
	} else {
		traces, err = s.coach.Store.RecentTraces(limit)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"generations": traces})
}
