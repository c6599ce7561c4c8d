package viz

import (
	"bytes"
	"fmt"
	"html/template"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
}

const visNetworkURL = "https://unpkg.com/vis-network/standalone/umd/vis-network.min.js"

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Layout string // "force" or "hierarchical"
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{Layout: "force"}
}

// ValidLayouts lists the supported layout names.
var ValidLayouts = []string{"force", "hierarchical"}

// GenerateHTML generates a standalone HTML page for the graph.
func GenerateHTML(graph *GraphData, opts HTMLOptions) (string, error) {
	if graph == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}
	if err := validateLayout(opts.Layout); err != nil {
		return "", err
	}

	if graph.IsEmpty() {
		return generateEmptyHTML(graph.Project)
	}

	graphJSON, err := graph.ToJSON()
	if err != nil {
		return "", err
	}

	data := templateData{
		Project:      graph.Project,
		ScriptURL:    visNetworkURL,
		GraphJSON:    template.JS(graphJSON),
		Hierarchical: opts.Layout == "hierarchical",
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func validateLayout(layout string) error {
	switch layout {
	case "", "force", "hierarchical":
		return nil
	default:
		return fmt.Errorf("invalid layout %q: must be force or hierarchical", layout)
	}
}

type templateData struct {
	Project      string
	ScriptURL    string
	GraphJSON    template.JS
	Hierarchical bool
}

var emptyTemplate = template.Must(template.New("empty").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.}} - empty</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
      background: #f5f5f5;
    }
    .empty-state { text-align: center; color: #666; }
    .empty-state code { background: #e0e0e0; padding: 2px 6px; border-radius: 3px; }
  </style>
</head>
<body>
  <div class="empty-state">
    <h2>No papers in {{.}}</h2>
    <p>Add one using <code>zg add {{.}} PAPER_ID</code></p>
  </div>
</body>
</html>`))

func generateEmptyHTML(project string) (string, error) {
	var buf bytes.Buffer
	if err := emptyTemplate.Execute(&buf, project); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Project}}</title>
  <script src="{{.ScriptURL}}"></script>
  <style>
    * { box-sizing: border-box; }
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      display: flex;
      height: 100vh;
    }
    #graph { flex: 3; background: white; }
    #info {
      flex: 1;
      overflow-y: auto;
      padding: 12px;
      border-left: 1px solid #ccc;
      background: #fafafa;
      font-size: 13px;
    }
    #info h2 { font-size: 15px; }
    #paperref { margin-left: 2px; font-size: 10px; }
  </style>
</head>
<body>
  <div id="graph"></div>
  <div id="info"><p>Select a paper.</p></div>
  <script>
    (function() {
      const data = {{.GraphJSON}};
      const nodes = new vis.DataSet(data.nodes);
      const edges = new vis.DataSet(data.edges);
      const info = document.getElementById('info');

      const options = {
        nodes: { font: { size: 12 }, margin: 8 },
        edges: { smooth: false },
        {{if .Hierarchical}}layout: { hierarchical: { direction: 'UD', sortMethod: 'directed' } },
        {{end}}physics: { stabilization: { iterations: 200 } }
      };
      const network = new vis.Network(document.getElementById('graph'), { nodes: nodes, edges: edges }, options);

      function showInfo(id) {
        const n = nodes.get(id);
        info.innerHTML = (n && n.info) ? n.info : '<p>No information.</p>';
      }

      // Called from annotation links of the form javascript:highlight_edge(from, to).
      window.highlight_edge = function(from, to) {
        const e = edges.get(from + '->' + to) || edges.get(to + '->' + from);
        if (!e) return;
        network.selectEdges([e.id]);
        network.focus(to, { scale: 1.0, animation: true });
      };

      network.on('selectNode', function(params) {
        if (params.nodes.length > 0) showInfo(params.nodes[0]);
      });
    })();
  </script>
</body>
</html>`
