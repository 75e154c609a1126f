/*
scheduler.go - Automated ISO document review scheduler

PURPOSE:
  Periodically finds approved documents whose review date has passed and
  moves them back to review, so they show up in the owners' queue.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on start
  - Uses the same lifecycle rule as the status endpoint (approved -> review)
  - Records an activity entry per document and updates the due gauge

CONFIGURATION:
  - CheckInterval: How often to check (REVIEW_CHECK_INTERVAL, default 1h)
  - Enabled: Whether scheduler is active (REVIEW_SCHEDULER_ENABLED)

USAGE:
  scheduler := NewReviewScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - documents.go: SetDocumentStatus (manual transition)
  - quality/document.go: Transition, ReviewDue
*/
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/business-admin/generic"
	"github.com/warp/business-admin/quality"
)

// ReviewScheduler handles automated document review checks.
type ReviewScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	log    logrus.FieldLogger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewReviewScheduler creates a new scheduler.
func NewReviewScheduler(handler *Handler) *ReviewScheduler {
	return &ReviewScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		log:           handler.Logger.WithField("component", "review_scheduler"),
	}
}

// Start begins the scheduler.
func (rs *ReviewScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.log.Info("disabled, not starting")
		return
	}
	if rs.ticker != nil {
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.stop = make(chan struct{})
	rs.wg.Add(1)

	go rs.run(rs.ticker, rs.stop)

	rs.log.WithField("interval", rs.CheckInterval).Info("started")
}

// Stop stops the scheduler and waits for a running check to finish.
func (rs *ReviewScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.ticker = nil
		rs.log.Info("stopped")
	}
}

func (rs *ReviewScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer rs.wg.Done()

	// Run immediately on start
	rs.checkAndProcess()

	for {
		select {
		case <-ticker.C:
			rs.checkAndProcess()
		case <-stop:
			return
		}
	}
}

func (rs *ReviewScheduler) checkAndProcess() {
	if _, err := rs.RunNow(context.Background()); err != nil {
		rs.log.WithError(err).Error("review check failed")
	}
}

// RunNow moves every overdue approved document to review and returns how
// many were moved. A failing document is logged and skipped.
func (rs *ReviewScheduler) RunNow(ctx context.Context) (int, error) {
	h := rs.Handler
	today := h.today()

	due, err := h.Store.ListDocumentsDue(ctx, today)
	if err != nil {
		return 0, err
	}

	moved := 0
	for i := range due {
		doc := &due[i]
		entry := rs.log.WithFields(logrus.Fields{"document_id": doc.ID, "code": doc.Code})
		if err := doc.Transition(quality.StatusReview, h.now()); err != nil {
			entry.WithError(err).Warn("cannot start review")
			continue
		}
		if err := h.Store.SaveDocument(ctx, doc); err != nil {
			entry.WithError(err).Error("failed to save document")
			continue
		}
		h.record(ctx, generic.TableDocuments, doc.ID, generic.ActionUpdated, map[string]any{
			"from":   string(quality.StatusApproved),
			"to":     string(quality.StatusReview),
			"reason": "review date reached",
		})
		h.Metrics.reviewsStarted.Inc()
		moved++
		entry.Info("document moved to review")
	}

	h.Metrics.documentsDue.Set(float64(len(due) - moved))
	rs.log.WithFields(logrus.Fields{"due": len(due), "moved": moved, "as_of": generic.FormatDate(today)}).
		Info("review check finished")
	return moved, nil
}

// NextRunTime returns when the next scheduled check will occur.
func (rs *ReviewScheduler) NextRunTime() time.Time {
	return time.Now().Add(rs.CheckInterval)
}

// TriggerReviewCheck runs the review check now (admin endpoint).
func (rs *ReviewScheduler) TriggerReviewCheck(w http.ResponseWriter, r *http.Request) {
	moved, err := rs.RunNow(r.Context())
	if err != nil {
		rs.Handler.fail(w, r, "review check", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"moved":    moved,
		"next_run": rs.NextRunTime().UTC().Format(time.RFC3339),
	})
}
