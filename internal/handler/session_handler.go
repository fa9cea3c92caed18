package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	repoimpl "FriendMap-App/internal/repository"
)

// SessionHandler サインインセッションに関するHTTPハンドラー
type SessionHandler struct {
	identityProvider *repoimpl.SessionIdentityProvider
}

// NewSessionHandler SessionHandlerの新しいインスタンスを作成
func NewSessionHandler(identityProvider *repoimpl.SessionIdentityProvider) *SessionHandler {
	return &SessionHandler{
		identityProvider: identityProvider,
	}
}

// identityRequest アイデンティティ切り替えリクエスト（空文字でサインアウト）
type identityRequest struct {
	Identity string `json:"identity"`
}

// SetIdentity POST /session/identity - サインイン中のアイデンティティを切り替える
// パイプラインはアカウント購読を張り直し、依存ストリームを再起動する
func (h *SessionHandler) SetIdentity(c *gin.Context) {
	var req identityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON format: " + err.Error(),
		})
		return
	}

	h.identityProvider.SetIdentity(req.Identity)

	c.JSON(http.StatusOK, gin.H{
		"identity": h.identityProvider.Current(),
	})
}

// GetIdentity GET /session/identity - 現在のアイデンティティを取得する
func (h *SessionHandler) GetIdentity(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"identity": h.identityProvider.Current(),
	})
}
