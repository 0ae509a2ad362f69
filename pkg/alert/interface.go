package alert

import (
	"context"
	"errors"

	"github.com/b0ase/portal/dao/model"
)

// ErrNotConfigured is returned when no mail relay has been set up.
var ErrNotConfigured = errors.New("notification channel not configured")

// AlertInterface 是封装好的通知组件，支持以下场景：
//  1. 项目申请通过后通知申请人
//  2. 邀请客户设置密码
//  3. 新申请提交后通知站长
//  4. 定时汇总待审批的申请
type AlertInterface interface {
	ClientApproved(ctx context.Context, req *model.ClientRequest) error
	ClientInvited(ctx context.Context, email, link string) error
	NewClientRequest(ctx context.Context, req *model.ClientRequest) error
	PendingDigest(ctx context.Context, reqs []*model.ClientRequest, total int64) error
}

// Receiver is the addressee of a message.
type Receiver struct {
	Name  string
	Email string
}

// alertHandlerInterface 是具体的通知组件对外部提供的接口，SMTP 邮件和 Webhook 都应该实现该接口
type alertHandlerInterface interface {
	SendMessageTo(ctx context.Context, receiver *Receiver, subject, body string) error
}
