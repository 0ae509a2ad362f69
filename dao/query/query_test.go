package query_test

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b0ase/portal/dao/dbtest"
	"github.com/b0ase/portal/dao/model"
	"github.com/b0ase/portal/dao/query"
)

func newQuery(t *testing.T) *query.Query {
	t.Helper()
	return query.Use(dbtest.Open(t))
}

func newRequest(t *testing.T, q *query.Query, name, email string) *model.ClientRequest {
	t.Helper()
	r := &model.ClientRequest{Name: name, Email: email, ProjectBrief: "site"}
	require.NoError(t, q.ClientRequest.Create(context.Background(), r))
	return r
}

func TestClientRequestCreateIsPending(t *testing.T) {
	q := newQuery(t)
	ctx := context.Background()

	r := &model.ClientRequest{
		Name:         "Ann",
		Email:        "a@x.com",
		ProjectBrief: "site",
		Status:       model.ClientRequestStatusApproved,
		ProjectTypes: []string{"web", "brand"},
	}
	require.NoError(t, q.ClientRequest.Create(ctx, r))
	assert.NotEmpty(t, r.ID)

	got, err := q.ClientRequest.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ClientRequestStatusPending, got.Status)
	assert.Equal(t, "Ann", got.Name)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, "site", got.ProjectBrief)
	assert.Equal(t, []string{"web", "brand"}, []string(got.ProjectTypes))
	assert.Nil(t, got.ReviewedBy)
}

func TestClientRequestGetNotFound(t *testing.T) {
	q := newQuery(t)
	_, err := q.ClientRequest.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, query.ErrNotFound)
}

func TestClientRequestListFiltersAndPages(t *testing.T) {
	q := newQuery(t)
	ctx := context.Background()
	for i := range 5 {
		newRequest(t, q, "user", lo.Ternary(i%2 == 0, "even@x.com", "odd@x.com"))
	}
	first := newRequest(t, q, "Zed", "z@x.com")
	_, err := q.ClientRequest.Reject(ctx, first.ID, "no", "admin@x.com", time.Now())
	require.NoError(t, err)

	rows, count, err := q.ClientRequest.List(ctx, model.ClientRequestStatusPending, query.Page{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
	assert.Len(t, rows, 2)

	rows, count, err = q.ClientRequest.List(ctx, "", query.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(6), count)
	assert.Len(t, rows, 6)

	pending, err := q.ClientRequest.CountByStatus(ctx, model.ClientRequestStatusPending)
	require.NoError(t, err)
	assert.Equal(t, int64(5), pending)
}

func TestApproveIsIdempotent(t *testing.T) {
	q := newQuery(t)
	ctx := context.Background()
	r := newRequest(t, q, "Ann", "a@x.com")
	at := time.Now().UTC().Truncate(time.Second)

	res, err := q.ClientRequest.Approve(ctx, r.ID, lo.ToPtr("looks good"), "admin@x.com", at)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.True(t, res.ClientCreated)
	assert.Equal(t, model.ClientRequestStatusApproved, res.Request.Status)
	assert.Equal(t, "admin@x.com", lo.FromPtr(res.Request.ReviewedBy))
	assert.Equal(t, "looks good", lo.FromPtr(res.Request.ReviewNotes))
	require.NotNil(t, res.Request.ReviewedAt)

	res, err = q.ClientRequest.Approve(ctx, r.ID, nil, "other@x.com", at.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.False(t, res.ClientCreated)
	assert.Equal(t, "admin@x.com", lo.FromPtr(res.Request.ReviewedBy))

	clients, count, err := q.Client.List(ctx, query.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, "Ann", clients[0].Name)
	assert.Equal(t, "a@x.com", clients[0].Email)
}

func TestApproveSecondRequestSameEmailKeepsOneClient(t *testing.T) {
	q := newQuery(t)
	ctx := context.Background()
	a := newRequest(t, q, "Ann", "a@x.com")
	b := newRequest(t, q, "Ann again", "a@x.com")

	res, err := q.ClientRequest.Approve(ctx, a.ID, nil, "admin", time.Now())
	require.NoError(t, err)
	assert.True(t, res.ClientCreated)

	res, err = q.ClientRequest.Approve(ctx, b.ID, nil, "admin", time.Now())
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.False(t, res.ClientCreated)

	c, err := q.Client.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", c.Name)
}

func TestApproveMatchesClientEmailIgnoringCase(t *testing.T) {
	q := newQuery(t)
	ctx := context.Background()
	a := newRequest(t, q, "Ann", "Ann@X.com")
	b := newRequest(t, q, "Ann", "ann@x.com")

	res, err := q.ClientRequest.Approve(ctx, a.ID, nil, "admin", time.Now())
	require.NoError(t, err)
	assert.True(t, res.ClientCreated)
	assert.Equal(t, "Ann@X.com", res.Request.Email)

	res, err = q.ClientRequest.Approve(ctx, b.ID, nil, "admin", time.Now())
	require.NoError(t, err)
	assert.False(t, res.ClientCreated)

	c, err := q.Client.GetByEmail(ctx, "ANN@x.com")
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", c.Email)
	_, count, err := q.Client.List(ctx, query.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRejectSetsReviewerAndCreatesNoClient(t *testing.T) {
	q := newQuery(t)
	ctx := context.Background()
	r := newRequest(t, q, "Ann", "a@x.com")

	res, err := q.ClientRequest.Reject(ctx, r.ID, "out of scope", "admin@x.com", time.Now())
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, model.ClientRequestStatusRejected, res.Request.Status)
	assert.Equal(t, "out of scope", lo.FromPtr(res.Request.RejectionReason))
	assert.Equal(t, "admin@x.com", lo.FromPtr(res.Request.ReviewedBy))
	assert.NotNil(t, res.Request.ReviewedAt)

	_, count, err := q.Client.List(ctx, query.Page{})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReviewConflicts(t *testing.T) {
	q := newQuery(t)
	ctx := context.Background()

	rejected := newRequest(t, q, "Ann", "a@x.com")
	_, err := q.ClientRequest.Reject(ctx, rejected.ID, "no", "admin", time.Now())
	require.NoError(t, err)
	_, err = q.ClientRequest.Approve(ctx, rejected.ID, nil, "admin", time.Now())
	assert.ErrorIs(t, err, query.ErrStatusConflict)

	approved := newRequest(t, q, "Bob", "b@x.com")
	_, err = q.ClientRequest.Approve(ctx, approved.ID, nil, "admin", time.Now())
	require.NoError(t, err)
	_, err = q.ClientRequest.Reject(ctx, approved.ID, "no", "admin", time.Now())
	assert.ErrorIs(t, err, query.ErrStatusConflict)

	_, err = q.ClientRequest.Approve(ctx, "missing", nil, "admin", time.Now())
	assert.ErrorIs(t, err, query.ErrNotFound)
	_, err = q.ClientRequest.Reject(ctx, "missing", "no", "admin", time.Now())
	assert.ErrorIs(t, err, query.ErrNotFound)

	// the conflicting call leaves the row as it was
	got, err := q.ClientRequest.Get(ctx, rejected.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ClientRequestStatusRejected, got.Status)
	_, count, err := q.Client.List(ctx, query.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTransactionRollsBack(t *testing.T) {
	q := newQuery(t)
	ctx := context.Background()

	err := q.Transaction(ctx, func(tx *query.Query) error {
		if err := tx.ClientRequest.Create(ctx, &model.ClientRequest{Name: "A", Email: "a@x.com"}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, count, err := q.ClientRequest.List(ctx, "", query.Page{})
	require.NoError(t, err)
	assert.Zero(t, count)
}
