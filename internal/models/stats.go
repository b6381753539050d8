package models

// DashboardStats summarises the caller's own activity.
type DashboardStats struct {
	TotalUploads int `json:"totalUploads"`
	Approved     int `json:"approved"`
	Pending      int `json:"pending"`
	Charts       int `json:"charts"`
}

// AdminStats summarises platform activity for the approval queue view.
type AdminStats struct {
	ActiveUsers      int    `json:"activeUsers"`
	MonthlyFiles     int    `json:"monthlyFiles"`
	ChartsGenerated  int    `json:"chartsGenerated"`
	StorageUsed      string `json:"storageUsed"`
	PendingApprovals int    `json:"pendingApprovals"`
}

// SuperadminStats summarises the whole platform.
type SuperadminStats struct {
	TotalUsers       int `json:"totalUsers"`
	PendingApprovals int `json:"pendingApprovals"`
	FilesProcessed   int `json:"filesProcessed"`
	AdminRequests    int `json:"adminRequests"`
}
