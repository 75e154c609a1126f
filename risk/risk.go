/*
Package risk manages the risk register and its probability/impact matrix.

SCORING:
  Probability and impact take three levels (low=0, medium=1, high=2).
  Score = (probability+1) * (impact+1), so scores are 1, 2, 3, 4, 6 or 9.

      score 1-2  -> low
      score 3-4  -> medium
      score 6    -> high
      score 9    -> critical

MATRIX:
  A fixed 3x3 grid. Columns are probability (low on the left), rows are
  impact (low on the top row, y growing with impact). See matrix.go.

SEE ALSO:
  - matrix.go: Layout, plotting and hit testing
  - api/risks.go: HTTP endpoints
*/
package risk

import (
	"time"

	"github.com/warp/business-admin/generic"
)

// Level is a probability or impact rating.
type Level string

const (
	Low    Level = "low"
	Medium Level = "medium"
	High   Level = "high"
)

// Levels lists the ratings in ascending order.
var Levels = []Level{Low, Medium, High}

// Index returns 0, 1 or 2, or -1 for an unknown level.
func (l Level) Index() int {
	switch l {
	case Low:
		return 0
	case Medium:
		return 1
	case High:
		return 2
	}
	return -1
}

func (l Level) Valid() bool { return l.Index() >= 0 }

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists severities from least to most severe.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

type Status string

const (
	StatusIdentified Status = "identified"
	StatusAssessed   Status = "assessed"
	StatusMitigating Status = "mitigating"
	StatusClosed     Status = "closed"
)

type Risk struct {
	ID          string
	Title       string
	Description string
	Category    string
	Probability Level
	Impact      Level
	Status      Status
	OwnerID     string
	Mitigation  string
	ReviewDate  *time.Time
	generic.Timestamps
}

// Score returns (p+1)*(i+1), or 0 when either level is unknown.
func Score(probability, impact Level) int {
	p, i := probability.Index(), impact.Index()
	if p < 0 || i < 0 {
		return 0
	}
	return (p + 1) * (i + 1)
}

// SeverityOf maps a score to its band.
func SeverityOf(score int) Severity {
	switch {
	case score >= 9:
		return SeverityCritical
	case score >= 6:
		return SeverityHigh
	case score >= 3:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (r Risk) Score() int         { return Score(r.Probability, r.Impact) }
func (r Risk) Severity() Severity { return SeverityOf(r.Score()) }

func (r Risk) Validate() error {
	verr := generic.NewValidationError()
	verr.Require("title", r.Title)
	verr.Require("probability", string(r.Probability))
	verr.OneOf("probability", string(r.Probability), string(Low), string(Medium), string(High))
	verr.Require("impact", string(r.Impact))
	verr.OneOf("impact", string(r.Impact), string(Low), string(Medium), string(High))
	verr.OneOf("status", string(r.Status),
		string(StatusIdentified), string(StatusAssessed), string(StatusMitigating), string(StatusClosed))
	if r.Status == StatusMitigating && r.Mitigation == "" {
		verr.Add("mitigation", "is required while mitigating")
	}
	return verr.OrNil()
}

// =============================================================================
// QUERY
// =============================================================================

type Query struct {
	Search   string
	Status   string
	Category string
	OwnerID  string
	Severity string
	Sort     string
}

func (q Query) Apply(items []Risk) ([]Risk, error) {
	out := generic.Filter(items,
		generic.Search(q.Search, func(r Risk) []string { return []string{r.Title, r.Description, r.Category} }),
		generic.Match(q.Status, func(r Risk) string { return string(r.Status) }),
		generic.Match(q.Category, func(r Risk) string { return r.Category }),
		generic.Match(q.OwnerID, func(r Risk) string { return r.OwnerID }),
		generic.Match(q.Severity, func(r Risk) string { return string(r.Severity()) }),
	)
	err := generic.Sort(out, generic.ParseSort(q.Sort, "-score"), generic.Comparators[Risk]{
		"score":       func(a, b Risk) int { return a.Score() - b.Score() },
		"title":       func(a, b Risk) int { return generic.CompareFold(a.Title, b.Title) },
		"created_at":  func(a, b Risk) int { return a.CreatedAt.Compare(b.CreatedAt) },
		"review_date": func(a, b Risk) int { return compareOptionalTime(a.ReviewDate, b.ReviewDate) },
	})
	return out, err
}

// compareOptionalTime orders missing dates last.
func compareOptionalTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}

// =============================================================================
// SUMMARY
// =============================================================================

type Summary struct {
	Total        int              `json:"total"`
	Open         int              `json:"open"`
	AverageScore float64          `json:"average_score"`
	BySeverity   map[Severity]int `json:"by_severity"`
	ByStatus     map[Status]int   `json:"by_status"`
	// Cells[impact][probability] counts open risks.
	Cells [3][3]int `json:"cells"`
}

// Summarize counts risks. Closed risks count toward Total and ByStatus
// only.
func Summarize(items []Risk) Summary {
	s := Summary{
		BySeverity: make(map[Severity]int, len(Severities)),
		ByStatus:   make(map[Status]int),
	}
	for _, sev := range Severities {
		s.BySeverity[sev] = 0
	}
	var scores []int
	for _, r := range items {
		s.Total++
		s.ByStatus[r.Status]++
		if r.Status == StatusClosed {
			continue
		}
		s.Open++
		if r.Score() == 0 {
			continue
		}
		scores = append(scores, r.Score())
		s.BySeverity[r.Severity()]++
		row, col := cellOf(r)
		s.Cells[row][col]++
	}
	s.AverageScore = generic.AverageInts(scores)
	return s
}
