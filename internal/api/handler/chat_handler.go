package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/im-delivery/internal/message"
	"github.com/d60-Lab/im-delivery/pkg/apperr"
	"github.com/d60-Lab/im-delivery/pkg/response"
)

var errMalformedBody = apperr.Validation(apperr.ReasonInvalidPayload, "malformed JSON body")

// SendMessage 发送私信
// @Summary 发送私信（clientId 幂等）
// @Tags 私信
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body message.Incoming true "消息"
// @Success 201 {object} response.Response{data=message.Wire} "新消息"
// @Success 200 {object} response.Response{data=message.Wire} "幂等重放"
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /chat/messages [post]
func (h *Handler) SendMessage(c *gin.Context) {
	var in message.Incoming
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, errMalformedBody)
		return
	}
	if other := c.Param("otherUserId"); other != "" {
		in.ReceiverID = other
	}
	res, err := h.msgService.Send(c.Request.Context(), currentUser(c), &in)
	if err != nil {
		response.Error(c, err)
		return
	}
	if res.Existed {
		response.Success(c, res.Message)
		return
	}
	response.Created(c, res.Message)
}

// History 会话历史，按时间升序
// @Summary 会话历史
// @Tags 私信
// @Produce json
// @Security BearerAuth
// @Param otherUserId path string true "对方用户ID"
// @Param limit query int false "条数" default(50)
// @Param before query string false "RFC3339 时间，只返回更早的消息"
// @Success 200 {object} response.Response{data=[]message.Wire}
// @Router /messages/{otherUserId} [get]
func (h *Handler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	var before time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			response.Error(c, apperr.Validation(apperr.ReasonInvalidPayload, "before must be an RFC3339 timestamp"))
			return
		}
		before = t
	}
	list, err := h.msgService.History(c.Request.Context(), currentUser(c), c.Param("otherUserId"), before, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// Contacts 联系人列表
// @Summary 联系人（最近消息优先）
// @Tags 私信
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]service.Contact}
// @Router /messages/contacts [get]
func (h *Handler) Contacts(c *gin.Context) {
	list, err := h.msgService.Contacts(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// ShareToFollowers 分享给全部粉丝
// @Summary 分享给粉丝（单个失败跳过）
// @Tags 私信
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body message.Incoming true "消息（receiverId 忽略）"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /messages/share/followers [post]
func (h *Handler) ShareToFollowers(c *gin.Context) {
	var in message.Incoming
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, errMalformedBody)
		return
	}
	sent, err := h.msgService.ShareToFollowers(c.Request.Context(), currentUser(c), &in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"success": true, "sent": sent})
}
