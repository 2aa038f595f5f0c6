package dto

// TimeSeriesRequest represents an on-demand aggregation query
type TimeSeriesRequest struct {
	EventType string `form:"event_type" binding:"required" example:"page_view"`
	From      int64  `form:"from" binding:"required" example:"1723475612"`
	To        int64  `form:"to" binding:"required" example:"1723562012"`
	Period    string `form:"period" example:"hour"`
}

// ListAnomaliesRequest represents an anomaly listing query
type ListAnomaliesRequest struct {
	EventType    string `form:"event_type" example:"page_view"`
	Acknowledged *bool  `form:"acknowledged" example:"false"`
	From         int64  `form:"from" example:"1723475612"`
	To           int64  `form:"to" example:"1723562012"`
}

// AcknowledgeAnomalyRequest carries the acknowledging actor
type AcknowledgeAnomalyRequest struct {
	AcknowledgedBy string `json:"acknowledged_by" binding:"required" example:"user_123"`
}
