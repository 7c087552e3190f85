package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crystaldolphin/msgscheduler/internal/logx"
	"github.com/crystaldolphin/msgscheduler/internal/schedule"
)

const (
	msgSendRequired     = "chatId and message are required"
	msgScheduleRequired = "chatId, message and dateTime are required"
	msgInvalidDate      = "Invalid date format. Use ISO format (YYYY-MM-DDTHH:mm:ss)"
	msgInvalidBody      = "request body must be a JSON object"
	msgSent             = "Message sent"
	msgSendFailed       = "Failed to send message"
	msgScheduled        = "Message scheduled"
	msgNotFound         = "Scheduled message not found"
	msgDeleted          = "Scheduled message deleted"
	msgUnavailable      = "Scheduler is shutting down"
)

func (s *Server) handleSendMessage(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidBody, Details: err.Error()})
		return
	}
	chat := req.ChatID.String()
	if chat == "" || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgSendRequired})
		return
	}

	if err := s.sender.Deliver(c.Request.Context(), chat, req.Message); err != nil {
		s.log.Error("api: send failed", logx.String("chat_id", chat), logx.Err(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: msgSendFailed, Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, statusResponse{Status: "success", Message: msgSent})
}

func (s *Server) handleScheduleMessage(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidBody, Details: err.Error()})
		return
	}
	chat := req.ChatID.String()
	if chat == "" || strings.TrimSpace(req.Message) == "" || strings.TrimSpace(req.DateTime) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgScheduleRequired})
		return
	}

	id, err := s.jobs.Schedule(chat, req.Message, req.DateTime)
	switch {
	case err == nil:
	case errors.Is(err, schedule.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidDate, Details: err.Error()})
		return
	case errors.Is(err, schedule.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, schedule.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: msgUnavailable})
		return
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, statusResponse{Status: "success", Message: msgScheduled, ID: id})
}

func (s *Server) handleListScheduled(c *gin.Context) {
	jobs := s.jobs.List()
	out := make([]ScheduledMessage, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, ScheduledMessage{
			ID:        j.ID,
			ChatID:    j.Destination,
			Message:   j.Text,
			DateTime:  j.FireAt,
			CreatedAt: j.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCancelScheduled(c *gin.Context) {
	if err := s.jobs.Cancel(c.Param("id")); err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorResponse{Error: msgNotFound})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, statusResponse{Status: "success", Message: msgDeleted})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:  "ok",
		Sender:  s.sender.SenderChannel(),
		Ready:   s.sender.Ready(),
		Pending: s.jobs.Len(),
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	})
}
