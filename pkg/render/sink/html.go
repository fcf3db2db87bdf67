package sink

import (
	"bytes"
	"fmt"
	"html/template"

	json "github.com/goccy/go-json"

	"github.com/matzehuels/chatstack/pkg/render/styles"
)

// Page is the live chart page served by `chatstack serve`.
type Page struct {
	Title string
	Chart Chart

	// APIBase prefixes the API routes the page script calls. Empty means "".
	APIBase string

	Width  float64
	Height float64
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { margin: 24px; font: 13px sans-serif; color: #333; }
  #tooltip { position: absolute; pointer-events: none; background: rgba(255,255,255,0.95);
    border: 1px solid #ccc; border-radius: 4px; padding: 6px 8px; opacity: 0;
    transition: opacity {{.FadeMS}}ms ease; white-space: nowrap; }
  #tooltip.visible { opacity: 1; }
  #tooltip .words { color: #777; }
  #error { color: #d62728; }
</style>
</head>
<body>
<div id="container">{{.SVG}}</div>
<div id="tooltip"></div>
<div id="error"></div>
<script>
(function() {
  const api = {{.APIBase}};
  let frame = {{.Frame}};
  const svgNS = "http://www.w3.org/2000/svg";
  const svg = document.getElementById("chart");
  const tooltip = document.getElementById("tooltip");

  function post(path) {
    return fetch(api + path, {method: "POST", credentials: "same-origin"}).then(r => {
      if (!r.ok) { return r.json().then(e => { throw new Error(e.message || r.statusText); }); }
      return r.json();
    });
  }

  function redraw(doc) {
    frame = doc.frame;
    frame.paths.forEach(p => {
      const g = document.getElementById("band-" + p.series);
      if (!g) { return; }
      g.querySelector("path").setAttribute("d", p.d);
      let title = g.querySelector("title");
      if (p.hidden && title) { title.remove(); }
      if (!p.hidden) {
        if (!title) { title = document.createElementNS(svgNS, "title"); g.prepend(title); }
        title.textContent = p.name + ": " + p.total;
      }
    });
    const panel = document.getElementById("reselect");
    while (panel.firstChild) { panel.firstChild.remove(); }
    frame.hidden.forEach(h => {
      const g = document.createElementNS(svgNS, "g");
      g.setAttribute("class", "reselect");
      g.dataset.series = h.series;
      const rect = document.createElementNS(svgNS, "rect");
      rect.setAttribute("x", frame.panel.x);
      rect.setAttribute("y", h.y);
      rect.setAttribute("width", {{.ControlSize}});
      rect.setAttribute("height", {{.ControlSize}});
      rect.setAttribute("rx", 4);
      rect.setAttribute("style", "fill:" + h.color + ";stroke:#777;stroke-width:1");
      const text = document.createElementNS(svgNS, "text");
      text.setAttribute("x", frame.panel.x + {{.ControlSize}} + 8);
      text.setAttribute("y", h.y + {{.ControlSize}} / 2 + 4);
      text.textContent = h.name;
      g.appendChild(rect);
      g.appendChild(text);
      panel.appendChild(g);
    });
  }

  function fail(err) { document.getElementById("error").textContent = err.message; }

  svg.addEventListener("click", ev => {
    const band = ev.target.closest(".band");
    if (band && !frame.paths.find(p => p.series == band.dataset.series).hidden) {
      post("/api/series/" + band.dataset.series + "/toggle").then(redraw).catch(fail);
      return;
    }
    const reselect = ev.target.closest(".reselect");
    if (reselect) {
      post("/api/series/" + reselect.dataset.series + "/show").then(redraw).catch(fail);
    }
  });

  let pending = null;
  svg.addEventListener("mousemove", ev => {
    const pt = svg.createSVGPoint();
    pt.x = ev.clientX; pt.y = ev.clientY;
    const local = pt.matrixTransform(svg.getScreenCTM().inverse());
    const plot = frame.plot;
    if (local.x < plot.x || local.x > plot.x + plot.w || local.y < plot.y || local.y > plot.y + plot.h) {
      tooltip.classList.remove("visible");
      return;
    }
    const dom = frame.scales.x;
    const x = Math.floor((local.x - plot.x) / plot.w * (dom[1] - dom[0]) + dom[0]);
    tooltip.style.left = (ev.pageX + 14) + "px";
    tooltip.style.top = (ev.pageY + 14) + "px";
    if (pending === x) { return; }
    pending = x;
    fetch(api + "/api/hover?x=" + x, {credentials: "same-origin"}).then(r => r.json()).then(infos => {
      if (pending !== x) { return; }
      tooltip.replaceChildren();
      infos.slice().reverse().forEach(info => {
        const line = document.createElement("div");
        line.textContent = info.text;
        if (info.words && info.words.length) {
          const w = document.createElement("span");
          w.className = "words";
          w.textContent = " (" + info.words.map(w => w.word).join(", ") + ")";
          line.appendChild(w);
        }
        tooltip.appendChild(line);
      });
      tooltip.classList.add("visible");
    }).catch(fail);
  });
  svg.addEventListener("mouseleave", () => { pending = null; tooltip.classList.remove("visible"); });
})();
</script>
</body>
</html>
`))

type pageData struct {
	Title       string
	SVG         template.HTML
	Frame       template.JS
	APIBase     string
	FadeMS      int
	ControlSize float64
}

// RenderHTML renders the live page with an interactive SVG.
func RenderHTML(p Page) ([]byte, error) {
	svgDoc := RenderSVG(p.Chart, WithSize(p.Width, p.Height), WithInteractive())
	doc, err := RenderJSON(p.Chart, WithJSONFrame(p.Width, p.Height))
	if err != nil {
		return nil, err
	}
	var wrapper struct {
		Frame json.RawMessage `json:"frame"`
	}
	if err := json.Unmarshal(doc, &wrapper); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	title := p.Title
	if title == "" {
		title = "chatstack"
	}
	data := pageData{
		Title:       title,
		SVG:         template.HTML(stripXMLHeader(svgDoc)),
		Frame:       template.JS(wrapper.Frame),
		APIBase:     p.APIBase,
		FadeMS:      styles.TooltipFadeMS,
		ControlSize: styles.ControlSize,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}

// stripXMLHeader drops the <?xml ...?> prolog, which is invalid inside HTML.
func stripXMLHeader(doc []byte) []byte {
	if !bytes.HasPrefix(doc, []byte("<?xml")) {
		return doc
	}
	if i := bytes.Index(doc, []byte("?>")); i >= 0 {
		return bytes.TrimLeft(doc[i+2:], "\r\n")
	}
	return doc
}
