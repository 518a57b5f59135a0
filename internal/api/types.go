package api

import "encoding/json"

// Feedback is one forum post collected by the crawler.
type Feedback struct {
	ID            string   `json:"id,omitempty"`
	PostID        string   `json:"post_id"`
	Title         string   `json:"title"`
	Username      string   `json:"username"`
	Category      string   `json:"category"`
	Status        string   `json:"status"`
	HasAttachment bool     `json:"has_attachment"`
	CreatedAt     string   `json:"created_at"`
	ViewCount     int      `json:"view_count"`
	ReplyCount    int      `json:"reply_count"`
	URL           string   `json:"url"`
	Content       string   `json:"content"`
	Images        []string `json:"images"`
	Tags          []string `json:"tags"`
	CrawlTime     *string  `json:"crawl_time,omitempty"`
}

// TrendData is a per-day series; all slices are aligned with Dates.
type TrendData struct {
	Dates     []string `json:"dates"`
	Feedbacks []int    `json:"feedbacks"`
	Processed []int    `json:"processed,omitempty"`
	Urgent    []int    `json:"urgent,omitempty"`
}

// KeywordTrigger counts feedbacks matching a monitored keyword.
type KeywordTrigger struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
	Trend   string `json:"trend"` // up, down or stable
}

// CategoryStat is one slice of a category or tag breakdown.
type CategoryStat struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DashboardStats is the headline block of the dashboard page.
type DashboardStats struct {
	TotalFeedbacks     int `json:"total_feedbacks"`
	PendingFeedbacks   int `json:"pending_feedbacks"`
	ProcessedFeedbacks int `json:"processed_feedbacks"`
	UrgentFeedbacks    int `json:"urgent_feedbacks"`

	TodayFeedbacks int `json:"today_feedbacks"`
	TodayProcessed int `json:"today_processed"`
	TodayUrgent    int `json:"today_urgent"`
	TodayPending   int `json:"today_pending"`

	YesterdayFeedbacks int `json:"yesterday_feedbacks"`
	YesterdayProcessed int `json:"yesterday_processed"`
	YesterdayUrgent    int `json:"yesterday_urgent"`
	YesterdayPending   int `json:"yesterday_pending"`

	FeedbackGrowthRate float64 `json:"feedback_growth_rate"`
	FeedbackDifference int     `json:"feedback_difference"`
	PendingDifference  int     `json:"pending_difference"`
	UrgentDifference   int     `json:"urgent_difference"`

	RecentKeywordTriggers []KeywordTrigger `json:"recent_keyword_triggers"`
	RecentTrend           TrendData        `json:"recent_trend"`
	CategoryStats         map[string]int   `json:"category_stats"`
	TagStats              map[string]int   `json:"tag_stats"`
}

// DashboardSummary bundles stats with the latest feedbacks and top
// categories and tags.
type DashboardSummary struct {
	Stats           DashboardStats `json:"stats"`
	RecentFeedbacks []Feedback     `json:"recent_feedbacks"`
	TopCategories   []CategoryStat `json:"top_categories"`
	TopTags         []CategoryStat `json:"top_tags"`
}

// NamedValue is one pie-chart slice.
type NamedValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ChartData feeds the dashboard charts for the last N days.
type ChartData struct {
	TotalFeedbacks  int              `json:"total_feedbacks"`
	CategoryData    []NamedValue     `json:"category_data"`
	TrendData       TrendData        `json:"trend_data"`
	KeywordTriggers []KeywordTrigger `json:"keyword_triggers,omitempty"`
}

// AIAnalysis is the model verdict attached to one feedback post. AIResult is
// kept raw because its schema follows the prompt in use.
type AIAnalysis struct {
	ID         string          `json:"_id"`
	PostID     string          `json:"post_id"`
	Title      string          `json:"title,omitempty"`
	AnalyzedAt string          `json:"analyzed_at,omitempty"`
	AIResult   json.RawMessage `json:"ai_result"`
}

// KeywordMutation is the backend reply to add, delete and rename.
type KeywordMutation struct {
	Message  string   `json:"message"`
	Keywords []string `json:"keywords"`
}

// Blob is a binary response body, such as the generated weekly report.
type Blob struct {
	ContentType string
	Filename    string
	Data        []byte
}

// Document is an analytics payload whose shape is owned by the backend.
// Decode it into a caller-defined type with json.Unmarshal.
type Document = json.RawMessage
