package cronjob

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"k8s.io/klog/v2"

	"github.com/b0ase/portal/dao/model"
	"github.com/b0ase/portal/dao/query"
	"github.com/b0ase/portal/pkg/alert"
)

const (
	PendingDigestJob = "pending-digest"

	// digestPageSize caps how many requests one digest lists
	digestPageSize = 50
	jobTimeout     = 2 * time.Minute
)

type CronJobManager struct {
	query     *query.Query
	alert     alert.AlertInterface
	cron      *cron.Cron
	cronMutex sync.RWMutex
	entries   map[string]cron.EntryID
}

func NewCronJobManager(q *query.Query, alerter alert.AlertInterface) *CronJobManager {
	return &CronJobManager{
		query:   q,
		alert:   alerter,
		cron:    cron.New(cron.WithLocation(time.Local)),
		entries: make(map[string]cron.EntryID),
	}
}

// AddCronJob schedules jobName with spec, replacing an earlier entry of the same name.
func (cm *CronJobManager) AddCronJob(jobName, jobSpec string) (cron.EntryID, error) {
	f, err := cm.newCronJobFunc(jobName)
	if err != nil {
		klog.Error(err)
		return -1, err
	}

	cm.cronMutex.Lock()
	defer cm.cronMutex.Unlock()
	entryID, err := cm.cron.AddFunc(jobSpec, f)
	if err != nil {
		err = fmt.Errorf("CronJobManager.AddCronJob: invalid spec %q for %s: %w", jobSpec, jobName, err)
		klog.Error(err)
		return -1, err
	}
	if old, ok := cm.entries[jobName]; ok {
		cm.cron.Remove(old)
	}
	cm.entries[jobName] = entryID
	return entryID, nil
}

// newCronJobFunc creates the cron job function for jobName
func (cm *CronJobManager) newCronJobFunc(jobName string) (cron.FuncJob, error) {
	switch jobName {
	case PendingDigestJob:
		return func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			if err := cm.RunPendingDigest(ctx); err != nil {
				klog.Errorf("CronJobManager: %s failed: %v", jobName, err)
			}
		}, nil
	default:
		return nil, fmt.Errorf("unsupported cron job: %s", jobName)
	}
}

// RunPendingDigest mails the owner the newest-first page of pending requests.
// Nothing is sent when the queue is empty.
func (cm *CronJobManager) RunPendingDigest(ctx context.Context) error {
	rows, total, err := cm.query.ClientRequest.List(ctx, model.ClientRequestStatusPending,
		query.Page{Limit: digestPageSize})
	if err != nil {
		return fmt.Errorf("list pending requests: %w", err)
	}
	if total == 0 {
		klog.V(2).Info("CronJobManager: no pending requests, digest skipped")
		return nil
	}
	if err := cm.alert.PendingDigest(ctx, rows, total); err != nil {
		return fmt.Errorf("send pending digest: %w", err)
	}
	klog.Infof("CronJobManager: pending digest sent for %d request(s)", total)
	return nil
}

// Start registers the configured jobs and starts the scheduler. An empty digestSpec
// disables the digest.
func (cm *CronJobManager) Start(digestSpec string) error {
	if digestSpec != "" {
		if _, err := cm.AddCronJob(PendingDigestJob, digestSpec); err != nil {
			return err
		}
	}
	cm.cron.Start()
	klog.Info("CronJobManager: cron scheduler started")
	return nil
}

// Entries returns the names of the scheduled jobs.
func (cm *CronJobManager) Entries() []string {
	cm.cronMutex.RLock()
	defer cm.cronMutex.RUnlock()
	names := make([]string, 0, len(cm.entries))
	for name := range cm.entries {
		names = append(names, name)
	}
	return names
}

// StopCron stops the scheduler and waits for running jobs.
func (cm *CronJobManager) StopCron() {
	cm.cronMutex.Lock()
	defer cm.cronMutex.Unlock()
	<-cm.cron.Stop().Done()
}
