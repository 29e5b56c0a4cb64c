package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/im-delivery/internal/api/middleware"
	"github.com/d60-Lab/im-delivery/internal/service"
)

type Handler struct {
	msgService   service.MessageService
	notifService service.NotificationService
	relService   service.RelationshipService
}

func NewHandler(msgService service.MessageService, notifService service.NotificationService, relService service.RelationshipService) *Handler {
	return &Handler{msgService: msgService, notifService: notifService, relService: relService}
}

func currentUser(c *gin.Context) string { return middleware.UserID(c) }
