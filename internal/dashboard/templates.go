package dashboard

import (
	"bytes"
	"html/template"
	"net/http"
)

var funcMap = template.FuncMap{
	"active": func(snapshotIndex, slot int, valid bool) bool {
		return valid && snapshotIndex == slot
	},
}

var pageTmpls = map[string]*template.Template{
	"overview": template.Must(template.New("overview").Funcs(funcMap).Parse(overviewHTML)),
}

func renderPage(w http.ResponseWriter, name string, data map[string]any) {
	tmpl, ok := pageTmpls[name]
	if !ok {
		http.Error(w, "unknown page: "+name, http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

const headHTML = `<!DOCTYPE html>
<html lang="en" class="dark">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>pipefilter</title>
    <script src="https://cdn.tailwindcss.com"></script>
    <style>body { background-color: #0f172a; color: #e2e8f0; }</style>
</head>
<body class="min-h-screen">
<nav class="bg-gray-900 border-b border-gray-700 px-6 py-4">
    <span class="text-xl font-bold text-white">pipefilter</span>
</nav>
<main class="max-w-7xl mx-auto px-6 py-8">`

const footHTML = `</main>
</body>
</html>`

const overviewHTML = headHTML + `
<h1 class="text-2xl font-bold mb-6">Nodes</h1>
<div class="grid grid-cols-1 md:grid-cols-3 gap-6 mb-8">
    <div class="bg-gray-900 border border-gray-700 rounded-lg p-6">
        <div class="text-gray-400 text-sm mb-1">Attempts</div>
        <div class="text-3xl font-bold text-white">{{.Stats.Attempts}}</div>
    </div>
    <div class="bg-gray-900 border border-green-900 rounded-lg p-6">
        <div class="text-green-400 text-sm mb-1">Successful</div>
        <div class="text-3xl font-bold text-green-300">{{.Stats.Successes}}</div>
    </div>
    <div class="bg-gray-900 border border-blue-900 rounded-lg p-6">
        <div class="text-blue-400 text-sm mb-1">Units Moved</div>
        <div class="text-3xl font-bold text-blue-300">{{.Stats.Moved}}</div>
    </div>
</div>
<div class="bg-gray-900 border border-gray-700 rounded-lg overflow-hidden">
    <table class="w-full text-sm text-left">
        <thead class="bg-gray-800 text-gray-400 uppercase text-xs">
            <tr>
                <th class="px-4 py-3">Node</th>
                <th class="px-4 py-3">Face</th>
                <th class="px-4 py-3">Mode</th>
                <th class="px-4 py-3">Slots</th>
            </tr>
        </thead>
        <tbody>
            {{range $n := .Nodes}}
            <tr class="border-b border-gray-700 hover:bg-gray-800">
                <td class="px-4 py-2 font-mono text-xs">{{$n.ID}}</td>
                <td class="px-4 py-2">{{$n.Direction}}</td>
                <td class="px-4 py-2">{{$n.Mode}}</td>
                <td class="px-4 py-2 font-mono text-xs">
                    {{range $i, $slot := $n.Slots}}
                    <span class="px-2 py-1 rounded {{if active $n.CursorIndex $i $n.CursorValid}}bg-yellow-900 text-yellow-300{{else}}bg-gray-800 text-gray-300{{end}}">{{if $slot}}{{$slot}}{{else}}&middot;{{end}}</span>
                    {{end}}
                </td>
            </tr>
            {{else}}
            <tr><td colspan="4" class="px-4 py-8 text-center text-gray-500">No nodes</td></tr>
            {{end}}
        </tbody>
    </table>
</div>
` + footHTML
