package web

import (
	"html/template"

	"bioassist/internal/domain"
)

type pageData struct {
	Info  Info
	Turns []domain.Turn
}

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Bioinformatics Assistant</title>
<style>
  body { font-family: sans-serif; margin: 0; display: flex; height: 100vh; }
  aside { width: 260px; background: #f4f4f4; padding: 1rem; border-right: 1px solid #ddd; }
  aside h2 { font-size: 1rem; margin-top: 0; }
  aside dt { font-weight: bold; font-size: 0.8rem; margin-top: 0.6rem; }
  aside dd { margin: 0; font-family: monospace; font-size: 0.8rem; word-break: break-all; }
  main { flex: 1; display: flex; flex-direction: column; padding: 1rem; }
  #transcript { flex: 1; overflow-y: auto; }
  .turn { margin: 0.5rem 0; padding: 0.6rem 0.8rem; border-radius: 8px; white-space: pre-wrap; }
  .user { background: #e3f0ff; }
  .assistant { background: #eef7ee; }
  .role { font-weight: bold; font-size: 0.8rem; display: block; margin-bottom: 0.2rem; }
  form { display: flex; gap: 0.5rem; margin-top: 0.5rem; }
  input[type=text] { flex: 1; padding: 0.5rem; }
</style>
</head>
<body>
<aside>
  <h2>Configuration</h2>
  <dl>
    <dt>LLM model</dt><dd>{{.Info.LLMModel}}</dd>
    <dt>Context mode</dt><dd>{{.Info.ContextMode}}</dd>
    <dt>Knowledge base</dt><dd>{{.Info.StorePath}}</dd>
    <dt>Data directory</dt><dd>{{.Info.DataDir}}</dd>
  </dl>
</aside>
<main>
  <h1>Bioinformatics Assistant</h1>
  <div id="transcript">
    {{if not .Turns}}<p>Ask the assistant about the loaded documents.</p>{{end}}
    {{range .Turns}}
    <div class="turn {{.Role}}"><span class="role">{{if eq .Role "user"}}You{{else}}Assistant{{end}}</span>{{.Content}}</div>
    {{end}}
  </div>
  <form method="post" action="/chat">
    <input type="text" name="question" placeholder="Ask the assistant for help" autofocus>
    <button type="submit">Send</button>
  </form>
</main>
</body>
</html>
`))
