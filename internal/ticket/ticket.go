// Package ticket builds vendor job tickets from a product configuration and
// user-supplied field values. Building is a pure transformation: identical
// inputs always produce identical tickets.
package ticket

import (
	"fmt"
	"regexp"
	"strings"

	"server/internal/catalog"
	"server/internal/domain"
)

// Kind selects the rendering mode of a job.
type Kind string

const (
	// KindProof requests a fast low-resolution raster preview.
	KindProof Kind = "Proof"
	// KindPrint requests the full-fidelity print-ready document.
	KindPrint Kind = "Print"
)

// Customization substitutes one plan object with a formatted expression.
type Customization struct {
	ObjectName string `json:"object_name"`
	ObjectType string `json:"object_type"`
	Expression string `json:"expression"`
}

// FaultPolicy tells the composition engine which render problems to tolerate.
// Missing fonts, assets, styles and overflowing text are ignored for both job
// kinds; exceeding the size limit always fails the job.
type FaultPolicy struct {
	IgnoreMissingFonts  bool `json:"ignore_missing_fonts"`
	IgnoreMissingAssets bool `json:"ignore_missing_assets"`
	IgnoreMissingStyles bool `json:"ignore_missing_styles"`
	IgnoreTextOverflow  bool `json:"ignore_text_overflow"`
	FailOnSizeLimit     bool `json:"fail_on_size_limit"`
}

// OutputSpec describes the requested output format and quality.
type OutputSpec struct {
	Format        string      `json:"format"`
	Priority      string      `json:"priority"`
	ResolutionDPI int         `json:"resolution_dpi,omitempty"`
	Bleed         string      `json:"bleed"`
	Quality       string      `json:"quality,omitempty"`
	PDFXCompliant bool        `json:"pdfx_compliant,omitempty"`
	Faults        FaultPolicy `json:"faults"`
}

// RecipientSource names the recipient data the job renders against.
type RecipientSource struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// JobTicket is the wire format submitted to the composition service.
type JobTicket struct {
	Kind           Kind            `json:"kind"`
	CampaignRef    string          `json:"campaign"`
	PlanRef        string          `json:"plan"`
	DocumentRef    string          `json:"document"`
	Customizations []Customization `json:"customizations"`
	Output         OutputSpec      `json:"output"`
	Recipients     RecipientSource `json:"recipients"`
}

// DefaultRecipientList is the fixed recipient-list reference used by print
// jobs. Per-product recipient lists are deliberately unsupported.
const DefaultRecipientList = "DefaultRecipientList"

const (
	bleedNone            = "None"
	bleedDocumentDefault = "DocumentDefault"
	recipientsNoData     = "NoData"
	recipientsList       = "List"
	proofResolutionDPI   = 72
)

// Builder constructs job tickets. The zero value uses DefaultRecipientList.
type Builder struct {
	// RecipientList overrides the recipient-list reference for print jobs.
	RecipientList string
}

// dateValue matches a strict numeric D/M/YYYY value.
var dateValue = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)

// Build assembles the job ticket for one size of a product. Values fall back
// to the variable default, then to the empty string. Variables without a plan
// object binding are skipped.
func (b Builder) Build(p catalog.Product, sizeName string, values map[string]string, kind Kind) (*JobTicket, error) {
	var size *catalog.SizeOption
	for i := range p.Sizes {
		if p.Sizes[i].Name == sizeName {
			size = &p.Sizes[i]
			break
		}
	}
	if size == nil {
		return nil, fmt.Errorf("%w: %q for product %q", domain.ErrSizeNotFound, sizeName, p.ID)
	}

	customizations := make([]Customization, 0, len(p.Variables))
	for _, v := range p.Variables {
		if v.PlanObject == nil || v.PlanObject.Name == "" || v.PlanObject.Type == "" {
			continue
		}
		value, ok := values[v.Name]
		if !ok {
			value = v.Default
		}
		customizations = append(customizations, Customization{
			ObjectName: v.PlanObject.Name,
			ObjectType: string(v.PlanObject.Type),
			Expression: formatExpression(v.Name, value),
		})
	}

	t := &JobTicket{
		Kind:           kind,
		CampaignRef:    p.CampaignRef,
		PlanRef:        p.PlanRef,
		DocumentRef:    size.DocumentRef,
		Customizations: customizations,
	}

	faults := FaultPolicy{
		IgnoreMissingFonts:  true,
		IgnoreMissingAssets: true,
		IgnoreMissingStyles: true,
		IgnoreTextOverflow:  true,
		FailOnSizeLimit:     true,
	}

	switch kind {
	case KindPrint:
		t.Output = OutputSpec{
			Format:        "PDF",
			Priority:      "Normal",
			Bleed:         bleedDocumentDefault,
			Quality:       "HighQualityPrint",
			PDFXCompliant: true,
			Faults:        faults,
		}
		list := b.RecipientList
		if list == "" {
			list = DefaultRecipientList
		}
		t.Recipients = RecipientSource{Type: recipientsList, Name: list}
	default:
		t.Output = OutputSpec{
			Format:        "JPG",
			Priority:      "Immediate",
			ResolutionDPI: proofResolutionDPI,
			Bleed:         bleedNone,
			Faults:        faults,
		}
		t.Recipients = RecipientSource{Type: recipientsNoData}
	}

	return t, nil
}

// formatExpression renders a resolved value in the vendor's expression
// grammar. Date-like values are wrapped in #...#, everything else in double
// quotes. Values pass through unescaped; the grammar expects the raw text.
func formatExpression(name, value string) string {
	if strings.Contains(strings.ToLower(name), "date") || dateValue.MatchString(value) {
		return "#" + value + "#"
	}
	return `"` + value + `"`
}
