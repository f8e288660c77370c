package dto

// AnalyticsQuery selects the reference month and chart window.
type AnalyticsQuery struct {
	Month string `form:"month" binding:"omitempty,datetime=2006-01"`
	Days  int    `form:"days" binding:"omitempty,min=1,max=366"`
}
