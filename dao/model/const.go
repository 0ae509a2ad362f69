// 定义与数据库表字段对应的常量
// 状态值与前端保持一致，直接以字符串存储
package model

// ClientRequestStatus is the review state of a client request.
// A request is terminal once it leaves Pending.
type ClientRequestStatus string

const (
	ClientRequestStatusPending  ClientRequestStatus = "pending"
	ClientRequestStatusApproved ClientRequestStatus = "approved"
	ClientRequestStatusRejected ClientRequestStatus = "rejected"
)

func (s ClientRequestStatus) IsValid() bool {
	switch s {
	case ClientRequestStatusPending, ClientRequestStatusApproved, ClientRequestStatusRejected:
		return true
	}
	return false
}

func (s ClientRequestStatus) IsTerminal() bool {
	return s == ClientRequestStatusApproved || s == ClientRequestStatusRejected
}
