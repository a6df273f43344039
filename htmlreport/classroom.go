package htmlreport

import (
	"html/template"
	"sort"

	"bannerwatch/snapshot"
)

type classroomData struct {
	Title      string
	Classrooms []classroomSchedule
}

type classroomSchedule struct {
	Name     string
	AnchorID string
	Days     []Day
}

var classroomTemplate = template.Must(template.New("classrooms").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 20px; background-color: #f5f5f5; color: #333; }
.container { max-width: 1400px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
h1 { text-align: center; color: #2c3e50; }
.navigation { text-align: center; margin-bottom: 30px; padding: 15px; background: #ecf0f1; border-radius: 8px; }
.navigation a { margin: 0 8px; color: #2980b9; text-decoration: none; }
.classroom-title { background: linear-gradient(135deg, #3498db, #2980b9); color: white; padding: 12px; margin: 20px 0 10px 0; border-radius: 8px; font-size: 1.3em; text-align: center; }
table { width: 100%; border-collapse: collapse; margin-bottom: 30px; }
th, td { border: 1px solid #bdc3c7; padding: 6px; font-size: 0.85em; vertical-align: top; }
th { background: #ecf0f1; color: #2c3e50; }
.slot { border-left: 4px solid; padding-left: 6px; margin: 4px 0; }
.slot .time { font-weight: bold; }
</style>
</head>
<body>
<div class="container">
<h1>{{.Title}}</h1>
<div class="navigation">
{{range .Classrooms}}<a href="#{{.AnchorID}}">{{.Name}}</a>
{{end}}</div>
{{range .Classrooms}}<div class="classroom-section" id="{{.AnchorID}}">
<div class="classroom-title">{{.Name}}</div>
<table>
<tr>{{range .Days}}<th>{{.Name}}</th>{{end}}</tr>
<tr>
{{range .Days}}<td>
{{range .Entries}}<div class="slot" style="border-color: {{.Color}}">
<div class="time">{{.Start}} &ndash; {{.End}}</div>
<div>{{.Course}} ({{.Section}})</div>
<div>{{.Instructor}}</div>
</div>
{{end}}</td>
{{end}}</tr>
</table>
</div>
{{end}}</div>
</body>
</html>
`))

// WriteClassroomSchedules renders a per-classroom weekly grid of a
// snapshot to a standalone HTML file. Sections without a concrete
// classroom are omitted.
func WriteClassroomSchedules(path string, rows []snapshot.Row) error {
	byClassroom := make(map[string][]snapshot.Row)
	for _, row := range rows {
		classroom := row.Get("Classroom")
		if classroom == "TBA" || classroom == "N/A" {
			continue
		}
		byClassroom[classroom] = append(byClassroom[classroom], row)
	}

	names := make([]string, 0, len(byClassroom))
	for name := range byClassroom {
		names = append(names, name)
	}
	sort.Strings(names)

	classrooms := make([]classroomSchedule, 0, len(names))
	for _, name := range names {
		byDay, _ := entriesByDay(byClassroom[name])
		classrooms = append(classrooms, classroomSchedule{
			Name:     name,
			AnchorID: anchorID(name),
			Days:     orderedDays(byDay),
		})
	}

	data := classroomData{
		Title:      "Classroom Schedules",
		Classrooms: classrooms,
	}
	return writeTemplate(path, classroomTemplate, data)
}
