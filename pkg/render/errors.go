package render

import "github.com/goliatone/go-formengine/pkg/model"

// FindError returns the first finding that targets field, matching either
// the field id or its explicit data source. Findings are searched in the
// order supplied; later findings for the same field are ignored.
func FindError(findings []model.Finding, field model.Field) (model.Finding, bool) {
	for _, finding := range findings {
		if appliesTo(finding, field) {
			return finding, true
		}
	}
	return model.Finding{}, false
}

// UnboundFindings returns the findings that no field in layout claims, in
// input order. Presentation layers typically list these in a generic block.
func UnboundFindings(layout model.Layout, findings []model.Finding) []model.Finding {
	if len(findings) == 0 {
		return nil
	}
	var out []model.Finding
	for _, finding := range findings {
		bound := false
		for _, field := range layout.Fields {
			if appliesTo(finding, field) {
				bound = true
				break
			}
		}
		if !bound {
			out = append(out, finding)
		}
	}
	return out
}

func appliesTo(finding model.Finding, field model.Field) bool {
	if finding.Field == field.ID {
		return true
	}
	return field.DataSource != "" && finding.Field == field.DataSource
}
