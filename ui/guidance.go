package ui

import (
	"fmt"
	"html/template"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"utitriage/domain/assessment"
)

// guidanceNotes holds the markdown shown under each recommendation, keyed by Level()
var guidanceNotes = map[string]string{
	"high": `**Seek care today.** Typical next steps:

- urinalysis and urine culture before antibiotics are started
- tell the clinician about fever, flank pain or vomiting, which can mean the kidneys are involved
- keep drinking fluids`,

	"moderate": `**Arrange an appointment within 24 hours.**

- a urine dipstick or culture will confirm or rule out infection
- go sooner if fever, back pain or blood in the urine appear`,

	"possible": `**Watch the symptoms closely.**

- drink plenty of water and avoid holding urine
- book a consultation if symptoms last more than two days or get worse`,

	"low": `**Infection is unlikely from the answers given.**

- keep monitoring; new burning, urgency or fever changes the picture
- a clinician can run a urine test if you are unsure`,

	"unlikely": `**No strong sign of infection, but symptoms still matter.**

- other conditions can cause similar complaints
- see a healthcare provider if symptoms persist`,
}

func renderMarkdown(md string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return template.HTML(markdown.ToHTML([]byte(md), p, r))
}

// renderGuidance converts every note once at startup. Every recommendation
// level must have a note.
func renderGuidance() (map[string]template.HTML, error) {
	out := make(map[string]template.HTML, len(guidanceNotes))
	for _, rec := range assessment.Recommendations() {
		md, ok := guidanceNotes[rec.Level()]
		if !ok {
			return nil, fmt.Errorf("no guidance note for level %q", rec.Level())
		}
		out[rec.Level()] = renderMarkdown(md)
	}
	return out, nil
}
