package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/warp/business-admin/generic"
)

// =============================================================================
// GENERATOR CONTRACT
// =============================================================================

// IdentityDraft is generated identity text, before it is stored.
type IdentityDraft struct {
	Mission string   `json:"mission"`
	Vision  string   `json:"vision"`
	Values  []string `json:"values"`
	Purpose string   `json:"purpose"`
}

// IndicatorDraft is one generated indicator.
type IndicatorDraft struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Perspective string `json:"perspective"`
	Target      string `json:"target"`
	Unit        string `json:"unit"`
	Frequency   string `json:"frequency"`
}

// Generator produces identity and indicator drafts.
type Generator interface {
	GenerateIdentity(ctx context.Context, in IdentityInput) (IdentityDraft, error)
	GenerateIndicators(ctx context.Context, in IndicatorInput) ([]IndicatorDraft, error)
}

// ToIdentity turns a draft into a storable identity for companyID.
func (d IdentityDraft) ToIdentity(companyID string) StrategicIdentity {
	values := make([]string, 0, len(d.Values))
	for _, v := range d.Values {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return StrategicIdentity{
		CompanyID: companyID,
		Mission:   strings.TrimSpace(d.Mission),
		Vision:    strings.TrimSpace(d.Vision),
		Values:    values,
		Purpose:   strings.TrimSpace(d.Purpose),
		Generated: true,
	}
}

// ToIndicator turns a draft into a storable indicator. Unknown
// perspectives and frequencies fall back to process/quarterly so a
// loosely formatted generator reply still validates.
func (d IndicatorDraft) ToIndicator(companyID string) StrategicIndicator {
	p := Perspective(strings.ToLower(strings.TrimSpace(d.Perspective)))
	if perspectiveRank(p) == len(Perspectives) {
		p = PerspectiveProcess
	}
	f := Frequency(strings.ToLower(strings.TrimSpace(d.Frequency)))
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
	default:
		f = FrequencyQuarterly
	}
	return StrategicIndicator{
		CompanyID:   companyID,
		Name:        strings.TrimSpace(d.Name),
		Description: strings.TrimSpace(d.Description),
		Perspective: p,
		Target:      d.Target,
		Unit:        d.Unit,
		Frequency:   f,
	}
}

func (in IndicatorInput) count() int {
	if in.Count <= 0 {
		return DefaultIndicatorCount
	}
	return in.Count
}

// decodeDraft parses a JSON reply, tolerating a fenced ```json block.
func decodeDraft(raw string, v any) error {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), v); err != nil {
		return fmt.Errorf("%w: malformed reply: %v", generic.ErrGeneratorUnavailable, err)
	}
	return nil
}

// =============================================================================
// FALLBACK - demo mode
// =============================================================================

// Fallback tries Primary and, when it fails, logs the failure and
// answers from Secondary instead.
type Fallback struct {
	Primary   Generator
	Secondary Generator
	Logger    logrus.FieldLogger
}

func (f Fallback) GenerateIdentity(ctx context.Context, in IdentityInput) (IdentityDraft, error) {
	draft, err := f.Primary.GenerateIdentity(ctx, in)
	if err == nil {
		return draft, nil
	}
	f.log(err, "identity", in.CompanyID)
	return f.Secondary.GenerateIdentity(ctx, in)
}

func (f Fallback) GenerateIndicators(ctx context.Context, in IndicatorInput) ([]IndicatorDraft, error) {
	drafts, err := f.Primary.GenerateIndicators(ctx, in)
	if err == nil {
		return drafts, nil
	}
	f.log(err, "indicators", in.CompanyID)
	return f.Secondary.GenerateIndicators(ctx, in)
}

func (f Fallback) log(err error, kind, companyID string) {
	if f.Logger == nil {
		return
	}
	f.Logger.WithFields(logrus.Fields{
		"component":  "generator",
		"kind":       kind,
		"company_id": companyID,
	}).WithError(err).Warn("primary generator failed, using demo data")
}
