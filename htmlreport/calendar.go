package htmlreport

import (
	"html/template"

	"bannerwatch/snapshot"
)

type calendarData struct {
	Title       string
	Days        []Day
	Unscheduled []Entry
}

var calendarTemplate = template.Must(template.New("calendar").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 20px; background-color: #f5f5f5; color: #333; }
.container { max-width: 1400px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
h1 { text-align: center; color: #2c3e50; }
.week { display: grid; grid-template-columns: repeat(7, 1fr); gap: 10px; }
.day { background: #ecf0f1; border-radius: 6px; padding: 8px; min-height: 200px; }
.day h2 { font-size: 1em; text-align: center; color: #2c3e50; }
.entry { border-left: 4px solid; border-radius: 4px; background: white; margin: 6px 0; padding: 6px; font-size: 0.8em; box-shadow: 0 1px 3px rgba(0,0,0,0.15); }
.entry .time { font-weight: bold; }
.entry .room { color: #7f8c8d; }
.unscheduled { margin-top: 30px; }
.unscheduled h2 { color: #2c3e50; }
.unscheduled ul { columns: 3; font-size: 0.85em; }
</style>
</head>
<body>
<div class="container">
<h1>{{.Title}}</h1>
<div class="week">
{{range .Days}}<div class="day">
<h2>{{.Name}}</h2>
{{range .Entries}}<div class="entry" style="border-color: {{.Color}}">
<div class="time">{{.Start}} &ndash; {{.End}}</div>
<div>{{.Course}} ({{.Section}})</div>
<div>{{.Title}}</div>
<div class="room">{{.Classroom}}</div>
</div>
{{end}}</div>
{{end}}</div>
{{if .Unscheduled}}<div class="unscheduled">
<h2>No scheduled meeting time</h2>
<ul>
{{range .Unscheduled}}<li>{{.Course}} ({{.Section}}) &mdash; {{.Title}}</li>
{{end}}</ul>
</div>
{{end}}</div>
</body>
</html>
`))

// WriteCalendar renders the weekly calendar view of a snapshot to a
// standalone HTML file.
func WriteCalendar(path string, rows []snapshot.Row) error {
	byDay, unscheduled := entriesByDay(rows)
	data := calendarData{
		Title:       "Course Calendar",
		Days:        orderedDays(byDay),
		Unscheduled: unscheduled,
	}
	return writeTemplate(path, calendarTemplate, data)
}
