// Copyright 2025 Costbeacon Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package notify

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/costbeacon/costbeacon/internal/report"
)

var htmlTemplate = htmltemplate.Must(htmltemplate.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #f8f9fa; padding: 20px; border-radius: 5px; margin-bottom: 20px; }
        .cost-summary { background-color: #e8f5e9; padding: 15px; border-radius: 5px; margin-bottom: 20px; }
        table { border-collapse: collapse; width: 100%; margin-bottom: 20px; }
        th, td { border: 1px solid #ddd; padding: 12px; text-align: left; }
        th { background-color: #f2f2f2; font-weight: bold; }
        .service-header { background-color: #e3f2fd; font-weight: bold; }
        .usage-type-row { background-color: #f8f9fa; }
        .region-header { background-color: #f3e5f5; font-weight: bold; }
        .cost-high { color: #d32f2f; font-weight: bold; }
        .cost-medium { color: #f57c00; font-weight: bold; }
        .cost-low { color: #388e3c; }
        .indent { padding-left: 20px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>AWS Detailed Cost &amp; Resource Report</h1>
        <p><strong>Generated:</strong> {{.Timestamp}}</p>
        <p><strong>Scan Period:</strong> Last 30 days</p>
    </div>

    <div class="cost-summary">
        <h2>Total Cost Summary</h2>
        <p><strong>Total Cost (Last 30 days):</strong>
            <span class="{{.TotalCostClass}}">${{.TotalCost}}</span>
        </p>
    </div>
{{if .Services}}
    <h2>Detailed Cost Breakdown by Service &amp; Resource Type</h2>
    <table>
        <tr>
            <th>Service / Resource Type</th>
            <th>Cost (Last 30 days)</th>
            <th>Usage Details</th>
            <th>Percentage of Total</th>
        </tr>
{{range .Services}}        <tr class="service-header">
            <td><strong>{{.Name}}</strong></td>
            <td class="{{.CostClass}}"><strong>${{.Cost}}</strong></td>
            <td><strong>Service Total</strong></td>
            <td><strong>{{.Percent}}%</strong></td>
        </tr>
{{range .Lines}}        <tr class="usage-type-row">
            <td class="indent">{{.Label}}</td>
            <td class="{{.CostClass}}">${{.Cost}}</td>
            <td>{{.Details}}</td>
            <td>{{.Percent}}% of service</td>
        </tr>
{{end}}{{end}}    </table>
{{end}}{{if .Regions}}
    <h2>Resources by Region</h2>
    <table>
        <tr><th>Region</th><th>Service</th><th>Resource Type</th><th>Resource ID</th><th>State</th><th>Details</th></tr>
{{range .Regions}}        <tr class="region-header"><td colspan="6">{{.Name}} ({{.Count}} resources)</td></tr>
{{range .Services}}        <tr class="service-header"><td></td><td colspan="5">{{.Name}} ({{.Count}} resources)</td></tr>
{{range .Resources}}        <tr>
            <td></td>
            <td></td>
            <td>{{.Type}}</td>
            <td>{{.ID}}</td>
            <td>{{.State}}</td>
            <td>{{.Details}}</td>
        </tr>
{{end}}{{end}}{{end}}    </table>
{{end}}
    <div class="cost-summary">
        <h2>Summary</h2>
        <ul>
            <li><strong>Total Resources Found:</strong> {{.TotalResources}}</li>
            <li><strong>Regions Scanned:</strong> {{.RegionsScanned}}</li>
            <li><strong>Services with Charges:</strong> {{.ServicesWithCharges}}</li>
            <li><strong>Detailed Usage Types:</strong> {{.UsageTypeCount}}</li>
        </ul>
    </div>

    <hr>
    <p><small>This detailed report was generated automatically.
    For even more granular cost analysis, please check your Cost Explorer dashboard.</small></p>
</body>
</html>
`))

var textTemplate = texttemplate.Must(texttemplate.New("report").Parse(`AWS DETAILED COST & RESOURCE REPORT
Generated: {{.Timestamp}}
Scan Period: Last 30 days

TOTAL COST SUMMARY
Total Cost (Last 30 days): ${{.TotalCost}}

DETAILED COST BREAKDOWN BY SERVICE & RESOURCE TYPE
============================================================
{{range .Services}}
{{.Name}}: ${{.Cost}} ({{.Percent}}%)
--------------------------------------------------
{{range .Lines}}  - {{.Label}}: ${{.Cost}} ({{.Percent}}% of service)
{{end}}{{end}}{{if .Regions}}
RESOURCES BY REGION
========================================
{{range .Regions}}
{{.Name}} ({{.Count}} resources)
{{range .Services}}  {{.Name}}: {{.Count}} resources
{{range $i, $r := .Resources}}{{if lt $i 3}}    - {{$r.Type}}: {{$r.ID}} ({{$r.State}})
{{end}}{{end}}{{if .Overflow}}    ... and {{.Overflow}} more
{{end}}{{end}}{{end}}{{end}}
SUMMARY
========================================
Total Resources Found: {{.TotalResources}}
Regions Scanned: {{.RegionsScanned}}
Services with Charges: {{.ServicesWithCharges}}
Detailed Usage Types: {{.UsageTypeCount}}

This detailed report was generated automatically.
For even more granular cost analysis, please check your Cost Explorer dashboard.
`))

// RenderHTML renders the HTML email body for a report.
func RenderHTML(rep *report.Report) (string, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, buildView(rep)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderText renders the plain-text email body for a report.
func RenderText(rep *report.Report) (string, error) {
	var buf bytes.Buffer
	if err := textTemplate.Execute(&buf, buildView(rep)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
