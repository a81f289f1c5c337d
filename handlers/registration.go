package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"pitchinvest/middleware"
	"pitchinvest/models"
	"pitchinvest/services/registration"
	"pitchinvest/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegistrationHandler exposes the multi-step registration wizard.
type RegistrationHandler struct {
	Service registration.Service
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(svc registration.Service) *RegistrationHandler {
	return &RegistrationHandler{Service: svc}
}

// RegistrationRequest is the composite request payload for the multi-step
// flow. The client includes the "step" field to indicate which part of the
// flow is being executed.
type RegistrationRequest struct {
	Step      string                     `json:"step" binding:"required"`
	SessionID string                     `json:"sessionId,omitempty"`
	OTP       string                     `json:"otp,omitempty"`
	From      string                     `json:"from,omitempty"`
	Start     *registration.StartRequest `json:"start,omitempty"`
	Update    *registration.StepUpdate   `json:"update,omitempty"`
}

// StepHandler executes one wizard operation: starting a session, saving a
// step, back-navigation, or the OTP sub-flow.
func (h *RegistrationHandler) StepHandler(c *gin.Context) {
	logger := getLogger(c)

	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	ctx := c.Request.Context()
	switch req.Step {
	case "start":
		if req.Start == nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid request", "start payload is required")
			return
		}
		resp, err := h.Service.Start(ctx, *req.Start)
		if err != nil {
			utils.JSONError(c, http.StatusUnprocessableEntity, "Could not start registration", err.Error())
			return
		}
		c.JSON(http.StatusOK, resp)

	case "usertype", "company", "personal", "pitch":
		if req.SessionID == "" {
			utils.JSONError(c, http.StatusBadRequest, "Invalid request", "sessionId is required")
			return
		}
		var update registration.StepUpdate
		if req.Update != nil {
			update = *req.Update
		}
		resp, err := h.Service.SaveStep(ctx, req.SessionID, registration.WizardStep(req.Step), update)
		if err != nil {
			h.stepError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)

	case "back":
		resp, err := h.Service.Back(ctx, req.SessionID, registration.WizardStep(req.From))
		if err != nil {
			h.stepError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)

	case "request-otp":
		if err := h.Service.RequestOTP(ctx, req.SessionID); err != nil {
			h.stepError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Verification code sent", "expiresInSeconds": int(registration.OTPTTL.Seconds())})

	case "verify-otp":
		if err := h.Service.VerifyOTP(ctx, req.SessionID, req.OTP); err != nil {
			h.stepError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Email verified"})

	case "dismiss-otp":
		if err := h.Service.DismissOTP(ctx, req.SessionID); err != nil {
			h.stepError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Verification dismissed"})

	default:
		logger.Warn("Unknown registration step", zap.String("step", req.Step))
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", "unknown step "+req.Step)
	}
}

// SubmitHandler runs the submission pipeline. Binary payloads arrive as a
// multipart form alongside the session id; form state itself lives in the
// server-held session.
func (h *RegistrationHandler) SubmitHandler(c *gin.Context) {
	logger := getLogger(c)

	sessionID := c.PostForm("sessionId")
	if sessionID == "" {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", "sessionId is required")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", "multipart form expected")
		return
	}

	files, err := fileSetFromForm(form)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid upload", err.Error())
		return
	}

	result, err := h.Service.Submit(c.Request.Context(), sessionID, files)
	if err != nil {
		if errors.Is(err, registration.ErrSubmissionInFlight) {
			utils.JSONError(c, http.StatusConflict, "Submission already in progress", err.Error())
			return
		}
		logger.Error("Registration submission failed", zap.String("sessionId", sessionID), zap.Error(err))
		h.stepError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GeoPrefillHandler returns the detected country and dialing code so the
// client can prefill the personal step.
func (h *RegistrationHandler) GeoPrefillHandler(c *gin.Context) {
	if geo, exists := c.Get("geoLocation"); exists {
		if g, ok := geo.(*middleware.GeoLocation); ok {
			c.JSON(http.StatusOK, gin.H{
				"country":          g.Country,
				"city":             g.City,
				"phoneCountryCode": g.CountryCallingCode,
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"country": "Unknown"})
}

func (h *RegistrationHandler) stepError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, registration.ErrSessionNotFound):
		utils.JSONError(c, http.StatusNotFound, "Registration session not found", err.Error())
	case errors.Is(err, registration.ErrOTPExpired),
		errors.Is(err, registration.ErrOTPMalformed),
		errors.Is(err, registration.ErrOTPMismatch),
		errors.Is(err, registration.ErrOTPNotFound):
		utils.JSONError(c, http.StatusUnauthorized, "Verification failed", err.Error())
	case errors.Is(err, registration.ErrOTPSendInFlight):
		utils.JSONError(c, http.StatusConflict, "Verification code already sent", err.Error())
	default:
		utils.JSONError(c, http.StatusUnprocessableEntity, "Registration error", err.Error())
	}
}

func fileSetFromForm(form *multipart.Form) (models.FileSet, error) {
	var files models.FileSet
	var err error

	if files.CoverImage, err = readSingle(form, "coverImage"); err != nil {
		return files, err
	}
	if files.Photo, err = readSingle(form, "photo"); err != nil {
		return files, err
	}
	if files.PitchVideo, err = readSingle(form, "pitchVideo"); err != nil {
		return files, err
	}
	if files.Photos, err = readMulti(form, "photos", 9); err != nil {
		return files, err
	}
	if files.PitchVideos, err = readMulti(form, "pitchVideos", 2); err != nil {
		return files, err
	}
	return files, nil
}

func readSingle(form *multipart.Form, field string) ([]byte, error) {
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, nil
	}
	return readFileHeader(headers[0])
}

func readMulti(form *multipart.Form, field string, limit int) ([][]byte, error) {
	headers := form.File[field]
	if len(headers) > limit {
		headers = headers[:limit]
	}
	var out [][]byte
	for _, header := range headers {
		data, err := readFileHeader(header)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

func readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
