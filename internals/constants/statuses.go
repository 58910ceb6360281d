package constants

const (
	BillStatusUnpaid   = "unpaid"
	BillStatusPending  = "pending"
	BillStatusPaid     = "paid"
	BillStatusExpired  = "expired"
	BillStatusCanceled = "canceled"
)

var BillStatuses = []string{
	BillStatusUnpaid,
	BillStatusPending,
	BillStatusPaid,
	BillStatusExpired,
	BillStatusCanceled,
}

const (
	ReportTypeDaily   = "daily"
	ReportTypeWeekly  = "weekly"
	ReportTypeMonthly = "monthly"
)

// Realtime topics
const (
	TopicChildren      = "children"
	TopicClasses       = "classes"
	TopicBills         = "bills"
	TopicReports       = "reports"
	TopicNotifications = "notifications"
	TopicMessages      = "messages"
	TopicUsers         = "users"
)

var AllTopics = []string{
	TopicChildren,
	TopicClasses,
	TopicBills,
	TopicReports,
	TopicNotifications,
	TopicMessages,
	TopicUsers,
}

const RecipientAll = "all"
