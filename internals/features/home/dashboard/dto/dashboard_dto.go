package dto

import "time"

type StatsResponse struct {
	Children      int64     `json:"children"`
	Parents       int64     `json:"parents"`
	Teachers      int64     `json:"teachers"`
	Classes       int64     `json:"classes"`
	BillsPaid     int64     `json:"billsPaid"`
	BillsUnpaid   int64     `json:"billsUnpaid"`
	UnpaidAmount  float64   `json:"unpaidAmount"`
	Notifications int64     `json:"notifications"`
	Messages      int64     `json:"messages"`
	GeneratedAt   time.Time `json:"generatedAt"`
}
