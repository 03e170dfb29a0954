package request

// SendMessageRequest 发送消息
type SendMessageRequest struct {
	RecipientId    string         `json:"recipientId" binding:"required"`
	Content        string         `json:"content" binding:"required,max=5000"`
	Type           string         `json:"type" binding:"omitempty,oneof=text image file voice video"`
	ReplyTo        string         `json:"replyTo" binding:"omitempty,max=32"`
	Metadata       map[string]any `json:"metadata"`
	RecipientModel string         `json:"recipientModel" binding:"omitempty,oneof=User Group"`
}

// PageQuery 分页参数
type PageQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
	Skip  int `form:"skip" binding:"omitempty,min=0"`
}
