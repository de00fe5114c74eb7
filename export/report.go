package export

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/pylontech-tools/pylonhist/alerts"
	"github.com/pylontech-tools/pylonhist/history"
)

type reportData struct {
	GeneratedAt  string
	DisplayName  string
	SystemInfo   map[string]string
	Statistics   map[string]string
	TotalEntries int
	TotalAlerts  int
	Critical     int
	Warning      int
	From         string
	To           string
	TempAvg      string
	TempMax      string
	TempMin      string
	VoltAvg      string
	VoltMax      string
	VoltMin      string
}

var reportTemplate = template.Must(template.New("report").Parse(`<html>
  <head>
    <meta charset="utf-8">
    <title>Battery report - {{.DisplayName}}</title>
    <style>
      body { font-family: Arial, sans-serif; margin: 20px; }
      h1 { color: #2c3e50; }
      .section { margin: 20px 0; padding: 15px; border: 1px solid #ddd; }
      .stat-grid { display: grid; grid-template-columns: repeat(2, 1fr); gap: 10px; }
      .stat-item { padding: 10px; background: #f5f5f5; }
      .critical { color: red; }
      .warning { color: orange; }
    </style>
  </head>
  <body>
    <h1>Battery analysis report - {{.DisplayName}}</h1>
    <p>Generated: {{.GeneratedAt}}</p>

    <div class="section">
      <h2>System information</h2>
      {{range $key, $value := .SystemInfo}}<p><strong>{{$key}}:</strong> {{$value}}</p>
      {{end}}
    </div>

    <div class="section">
      <h2>Statistics</h2>
      {{range $key, $value := .Statistics}}<p><strong>{{$key}}:</strong> {{$value}}</p>
      {{end}}
    </div>

    <div class="section">
      <h2>Alert summary</h2>
      <div class="stat-grid">
        <div class="stat-item">Total: {{.TotalAlerts}}</div>
        <div class="stat-item critical">Critical: {{.Critical}}</div>
        <div class="stat-item warning">Warnings: {{.Warning}}</div>
      </div>
    </div>

    <div class="section">
      <h2>Temperature</h2>
      <div class="stat-grid">
        <div class="stat-item">Average: {{.TempAvg}}°C</div>
        <div class="stat-item">Maximum: {{.TempMax}}°C</div>
        <div class="stat-item">Minimum: {{.TempMin}}°C</div>
      </div>
    </div>

    <div class="section">
      <h2>Voltage</h2>
      <div class="stat-grid">
        <div class="stat-item">Average: {{.VoltAvg}}V</div>
        <div class="stat-item">Maximum: {{.VoltMax}}V</div>
        <div class="stat-item">Minimum: {{.VoltMin}}V</div>
      </div>
    </div>

    <div class="section">
      <h2>Data range</h2>
      <p>From: {{.From}}</p>
      <p>To: {{.To}}</p>
      <p>Total entries: {{.TotalEntries}}</p>
    </div>
  </body>
</html>
`))

// WriteReport renders a printable HTML summary of one battery.
func WriteReport(w io.Writer, doc *history.Document, alertList []alerts.Alert) error {
	critical, warning := alerts.Count(alertList)
	data := reportData{
		GeneratedAt:  time.Now().Format("02/01/2006 15:04:05"),
		DisplayName:  doc.DisplayName,
		SystemInfo:   doc.Info,
		Statistics:   doc.Stats,
		TotalEntries: len(doc.History),
		TotalAlerts:  len(alertList),
		Critical:     critical,
		Warning:      warning,
	}

	if len(doc.History) > 0 {
		first := &doc.History[0]
		last := &doc.History[len(doc.History)-1]
		data.From = first.Day + " " + first.Time
		data.To = last.Day + " " + last.Time

		tempMin, tempMax, tempSum := doc.History[0].Temperature, doc.History[0].Temperature, 0
		voltMin, voltMax, voltSum := doc.History[0].Voltage, doc.History[0].Voltage, 0
		for _, entry := range doc.History {
			tempSum += entry.Temperature
			voltSum += entry.Voltage
			if entry.Temperature < tempMin {
				tempMin = entry.Temperature
			}
			if entry.Temperature > tempMax {
				tempMax = entry.Temperature
			}
			if entry.Voltage < voltMin {
				voltMin = entry.Voltage
			}
			if entry.Voltage > voltMax {
				voltMax = entry.Voltage
			}
		}
		n := float64(len(doc.History))
		data.TempAvg = fmt.Sprintf("%.1f", float64(tempSum)/n/1000)
		data.TempMax = fmt.Sprintf("%.1f", float64(tempMax)/1000)
		data.TempMin = fmt.Sprintf("%.1f", float64(tempMin)/1000)
		data.VoltAvg = fmt.Sprintf("%.2f", float64(voltSum)/n/1000)
		data.VoltMax = fmt.Sprintf("%.2f", float64(voltMax)/1000)
		data.VoltMin = fmt.Sprintf("%.2f", float64(voltMin)/1000)
	}

	return reportTemplate.Execute(w, data)
}
