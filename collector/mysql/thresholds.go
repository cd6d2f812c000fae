// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

type threshold struct {
	warning  float64
	critical float64
}

var resourceThresholds = map[string]threshold{
	"cpu":         {warning: 80, critical: 95},
	"memory":      {warning: 85, critical: 95},
	"disk":        {warning: 80, critical: 90},
	"connections": {warning: 80, critical: 95},
}

// ClassifyResource maps a resource usage percentage to a severity.
// Unknown resources are always ok.
func ClassifyResource(resource string, pct float64) Severity {
	t, ok := resourceThresholds[resource]
	if !ok {
		return SeverityOK
	}
	switch {
	case pct >= t.critical:
		return SeverityCritical
	case pct >= t.warning:
		return SeverityWarning
	default:
		return SeverityOK
	}
}
