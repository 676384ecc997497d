package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/prepdash/backend/internal/models"
	"github.com/prepdash/backend/internal/service"
)

// The data and send-email endpoints answer with a flat {"error": "..."}
// body, which the dashboard clients read as is.

// @Summary Directory data
// @Description Nationwide listing (optionally by state) or people around a zip code
// @Tags data
// @Produce json
// @Param nationwide query string false "any value selects nationwide mode"
// @Param states query []string false "state codes" collectionFormat(multi)
// @Param zip_code query string false "five digit zip code"
// @Param radius query number false "radius in miles" default(50)
// @Success 200 {object} models.DataResponse
// @Failure 400 {object} map[string]string
// @Router /api/data/ [get]
func (h *Handler) Data(c *gin.Context) {
	ctx := c.Request.Context()
	if c.Query("nationwide") != "" {
		resp, err := h.Directory.Nationwide(ctx, queryStates(c))
		if err != nil {
			h.Logger.Error().Err(err).Msg("nationwide query failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	zip := strings.TrimSpace(c.Query("zip_code"))
	radius := service.ParseRadius(c.Query("radius"))
	resp, err := h.Directory.Nearby(ctx, zip, radius)
	if err != nil {
		if errors.Is(err, service.ErrInvalidZip) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid zip code"})
			return
		}
		h.Logger.Error().Err(err).Str("zip_code", zip).Msg("zip query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Send email
// @Tags email
// @Accept json
// @Produce json
// @Param payload body models.EmailRequest true "email"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/send-email/ [post]
func (h *Handler) SendEmail(c *gin.Context) {
	var req models.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	req.Subject = strings.TrimSpace(req.Subject)
	req.Recipient = strings.TrimSpace(req.Recipient)
	if err := h.Validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": emailValidationMessage(err)})
		return
	}

	if err := h.Mailer.Send(c.Request.Context(), req); err != nil {
		h.Logger.Error().Err(err).Str("recipient", req.Recipient).Msg("send email failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "Email sent successfully"})
}

func emailValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				return "Missing required fields"
			}
		}
		return "Invalid recipient email"
	}
	return "Missing required fields"
}
