package query

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/b0ase/portal/dao/model"
)

type clientRequestDao struct {
	db *gorm.DB
}

// ReviewResult describes the outcome of an approve or reject call.
// Changed is false when the request was already in the requested state.
type ReviewResult struct {
	Request       *model.ClientRequest
	Changed       bool
	ClientCreated bool
}

func (d *clientRequestDao) Create(ctx context.Context, r *model.ClientRequest) error {
	r.Status = model.ClientRequestStatusPending
	return translate(d.db.WithContext(ctx).Create(r).Error, "create client request")
}

func (d *clientRequestDao) Get(ctx context.Context, id string) (*model.ClientRequest, error) {
	var r model.ClientRequest
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, translate(err, "get client request "+id)
	}
	return &r, nil
}

// List returns requests newest first, optionally filtered by status, with the total count.
func (d *clientRequestDao) List(
	ctx context.Context,
	status model.ClientRequestStatus,
	page Page,
) ([]*model.ClientRequest, int64, error) {
	if status != "" && !status.IsValid() {
		return nil, 0, fmt.Errorf("unknown status %q", status)
	}
	db := d.db.WithContext(ctx).Model(&model.ClientRequest{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	// new session so Count does not leak into the Find below
	db = db.Session(&gorm.Session{})
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return nil, 0, translate(err, "count client requests")
	}
	var rows []*model.ClientRequest
	if err := page.apply(db.Order("created_at DESC")).Find(&rows).Error; err != nil {
		return nil, 0, translate(err, "list client requests")
	}
	return rows, count, nil
}

func (d *clientRequestDao) CountByStatus(ctx context.Context, status model.ClientRequestStatus) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&model.ClientRequest{}).Where("status = ?", status).Count(&count).Error
	return count, translate(err, "count client requests")
}

// Approve marks a pending request approved and provisions a Client for its email
// in the same transaction. Approving an approved request only re-checks the Client row.
func (d *clientRequestDao) Approve(
	ctx context.Context,
	id string,
	notes *string,
	reviewer string,
	at time.Time,
) (*ReviewResult, error) {
	var result *ReviewResult
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := Use(tx)
		req, changed, err := q.ClientRequest.transition(ctx, id, model.ClientRequestStatusApproved, map[string]any{
			"review_notes": notes,
			"reviewed_by":  reviewer,
			"reviewed_at":  at,
		})
		if err != nil {
			return err
		}
		created, err := q.Client.CreateIfAbsent(ctx, model.NewClientFromRequest(req))
		if err != nil {
			return err
		}
		result = &ReviewResult{Request: req, Changed: changed, ClientCreated: created}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reject marks a pending request rejected. No Client row is touched.
func (d *clientRequestDao) Reject(
	ctx context.Context,
	id string,
	reason string,
	reviewer string,
	at time.Time,
) (*ReviewResult, error) {
	var result *ReviewResult
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, changed, err := Use(tx).ClientRequest.transition(ctx, id, model.ClientRequestStatusRejected, map[string]any{
			"rejection_reason": reason,
			"reviewed_by":      reviewer,
			"reviewed_at":      at,
		})
		if err != nil {
			return err
		}
		result = &ReviewResult{Request: req, Changed: changed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// transition moves a request from pending to target. The update is guarded by
// status = pending, so of two concurrent reviews only one changes the row.
func (d *clientRequestDao) transition(
	ctx context.Context,
	id string,
	target model.ClientRequestStatus,
	fields map[string]any,
) (*model.ClientRequest, bool, error) {
	req, err := d.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if req.Status == target {
		return req, false, nil
	}
	if req.Status.IsTerminal() {
		return req, false, fmt.Errorf("client request %s is %s: %w", id, req.Status, ErrStatusConflict)
	}

	fields["status"] = target
	res := d.db.WithContext(ctx).
		Model(&model.ClientRequest{}).
		Where("id = ? AND status = ?", id, model.ClientRequestStatusPending).
		Updates(fields)
	if res.Error != nil {
		return nil, false, translate(res.Error, "update client request "+id)
	}

	req, err = d.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if res.RowsAffected == 0 {
		// someone else reviewed it between the read and the update
		if req.Status == target {
			return req, false, nil
		}
		return req, false, fmt.Errorf("client request %s is %s: %w", id, req.Status, ErrStatusConflict)
	}
	return req, true, nil
}
