/*
Package quality manages controlled ISO documents and their review cycle.

LIFECYCLE:

	draft --> review --> approved --> obsolete
	            ^  |        |
	            |  v        |
	           draft <------+ (back to review)

  - draft    -> review
  - review   -> approved | draft
  - approved -> review | obsolete
  - obsolete is terminal

  Approving a document without a future review date schedules the next
  review one year out. Approved documents whose review date has arrived are
  "review due"; the scheduler in api/scheduler.go reports them.

SEE ALSO:
  - blob/: storage of the document attachment
*/
package quality

import (
	"time"

	"github.com/warp/business-admin/generic"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusReview   Status = "review"
	StatusApproved Status = "approved"
	StatusObsolete Status = "obsolete"
)

var transitions = map[Status][]Status{
	StatusDraft:    {StatusReview},
	StatusReview:   {StatusApproved, StatusDraft},
	StatusApproved: {StatusReview, StatusObsolete},
	StatusObsolete: nil,
}

// ReviewInterval is added to the approval date when no future review date is set.
const ReviewInterval = 1 // years

type Attachment struct {
	Key         string
	Name        string
	Size        int64
	ContentType string
}

func (a Attachment) IsZero() bool { return a.Key == "" }

type IsoDocument struct {
	ID         string
	Code       string
	Title      string
	Standard   string
	Version    string
	Status     Status
	OwnerID    string
	ReviewDate *time.Time
	Attachment Attachment
	generic.Timestamps
}

func (d IsoDocument) Validate() error {
	verr := generic.NewValidationError()
	verr.Require("code", d.Code)
	verr.Require("title", d.Title)
	verr.OneOf("status", string(d.Status),
		string(StatusDraft), string(StatusReview), string(StatusApproved), string(StatusObsolete))
	return verr.OrNil()
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Allowed lists the statuses reachable from s.
func Allowed(s Status) []Status {
	return append([]Status(nil), transitions[s]...)
}

// Transition moves the document to status to. now is used to schedule
// the next review on approval.
func (d *IsoDocument) Transition(to Status, now time.Time) error {
	from := d.Status
	if from == "" {
		from = StatusDraft
	}
	if !CanTransition(from, to) {
		return &generic.TransitionError{From: string(from), To: string(to)}
	}
	d.Status = to
	if to == StatusApproved && (d.ReviewDate == nil || !generic.TruncateDay(*d.ReviewDate).After(generic.TruncateDay(now))) {
		next := generic.TruncateDay(now).AddDate(ReviewInterval, 0, 0)
		d.ReviewDate = &next
	}
	return nil
}

// ReviewDue reports whether an approved document's review date is on or
// before today.
func ReviewDue(d IsoDocument, today time.Time) bool {
	if d.Status != StatusApproved || d.ReviewDate == nil {
		return false
	}
	return !generic.TruncateDay(*d.ReviewDate).After(generic.TruncateDay(today))
}

// DueForReview filters docs to those with ReviewDue, oldest review first.
func DueForReview(docs []IsoDocument, today time.Time) []IsoDocument {
	out := generic.Filter(docs, func(d IsoDocument) bool { return ReviewDue(d, today) })
	_ = generic.Sort(out, generic.SortKey{Field: "review_date"}, comparators)
	return out
}

// =============================================================================
// QUERY & SUMMARY
// =============================================================================

type Query struct {
	Search   string
	Status   string
	Standard string
	OwnerID  string
	Sort     string
}

var comparators = generic.Comparators[IsoDocument]{
	"code":  func(a, b IsoDocument) int { return generic.CompareFold(a.Code, b.Code) },
	"title": func(a, b IsoDocument) int { return generic.CompareFold(a.Title, b.Title) },
	"review_date": func(a, b IsoDocument) int {
		switch {
		case a.ReviewDate == nil && b.ReviewDate == nil:
			return 0
		case a.ReviewDate == nil:
			return 1
		case b.ReviewDate == nil:
			return -1
		}
		return a.ReviewDate.Compare(*b.ReviewDate)
	},
	"updated_at": func(a, b IsoDocument) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
}

func (q Query) Apply(items []IsoDocument) ([]IsoDocument, error) {
	out := generic.Filter(items,
		generic.Search(q.Search, func(d IsoDocument) []string { return []string{d.Code, d.Title, d.Standard} }),
		generic.Match(q.Status, func(d IsoDocument) string { return string(d.Status) }),
		generic.Match(q.Standard, func(d IsoDocument) string { return d.Standard }),
		generic.Match(q.OwnerID, func(d IsoDocument) string { return d.OwnerID }),
	)
	err := generic.Sort(out, generic.ParseSort(q.Sort, "code"), comparators)
	return out, err
}

type Summary struct {
	Total      int            `json:"total"`
	ByStatus   map[Status]int `json:"by_status"`
	ByStandard map[string]int `json:"by_standard"`
	ReviewDue  int            `json:"review_due"`
}

func Summarize(docs []IsoDocument, today time.Time) Summary {
	s := Summary{
		Total:      len(docs),
		ByStatus:   make(map[Status]int),
		ByStandard: generic.CountBy(docs, func(d IsoDocument) string { return d.Standard }),
	}
	for _, d := range docs {
		s.ByStatus[d.Status]++
		if ReviewDue(d, today) {
			s.ReviewDue++
		}
	}
	return s
}
