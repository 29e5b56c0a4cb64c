package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/im-delivery/internal/model"
	"github.com/d60-Lab/im-delivery/internal/service"
	"github.com/d60-Lab/im-delivery/pkg/response"
)

type notificationEventRequest struct {
	RecipientID string                 `json:"recipientId" binding:"required,ident"`
	Type        string                 `json:"type" binding:"required,oneof=like comment follow"`
	Text        string                 `json:"text" binding:"max=500"`
	Entity      *model.EntityRef       `json:"entity"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// ListNotifications 通知列表
// @Summary 通知分页（附未读数）
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=service.NotificationPage}
// @Router /notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	res, err := h.notifService.List(c.Request.Context(), currentUser(c), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// UnreadCount 未读数
// @Summary 未读通知数
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=service.UnreadEvent}
// @Router /notifications/unread-count [get]
func (h *Handler) UnreadCount(c *gin.Context) {
	n, err := h.notifService.UnreadCount(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, service.UnreadEvent{UnreadCount: n})
}

// MarkRead 标记单条已读（幂等）
// @Summary 标记已读
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param id path string true "通知ID"
// @Success 200 {object} response.Response{data=service.UnreadEvent}
// @Failure 404 {object} response.Response
// @Router /notifications/{id}/read [post]
func (h *Handler) MarkRead(c *gin.Context) {
	unread, err := h.notifService.MarkRead(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, service.UnreadEvent{UnreadCount: unread})
}

// MarkAllRead 全部已读（幂等）
// @Summary 全部标记已读
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /notifications/read-all [post]
func (h *Handler) MarkAllRead(c *gin.Context) {
	updated, unread, err := h.notifService.MarkAllRead(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"updated": updated, "unreadCount": unread})
}

// CreateEvent 其他子系统（点赞、评论）触发通知
// @Summary 上报通知事件
// @Tags 通知
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body notificationEventRequest true "事件"
// @Success 201 {object} response.Response{data=model.Notification}
// @Success 200 {object} response.Response "自己通知自己，忽略"
// @Failure 400 {object} response.Response
// @Router /notifications/events [post]
func (h *Handler) CreateEvent(c *gin.Context) {
	var req notificationEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	n := h.notifService.Notify(c.Request.Context(), service.NotifyInput{
		RecipientID: req.RecipientID,
		SenderID:    currentUser(c),
		Type:        model.NotificationType(req.Type),
		Text:        req.Text,
		Entity:      req.Entity,
		Metadata:    req.Metadata,
	})
	if n == nil {
		response.Success(c, nil)
		return
	}
	response.Created(c, n)
}
