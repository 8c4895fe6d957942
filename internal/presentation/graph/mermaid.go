package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
)

// Overlay contains playthrough data to visualize on the graph.
type Overlay struct {
	Visited []string
	Current string
}

// endNode is the mermaid id of the terminal destination.
const endNode = "lattice_END"

// GenerateMermaid produces a Mermaid flowchart of an exploration.
// Shapes:
// - Initial state: ((Circle))
// - Prompted state: [/Parallelogram/]
// - Pass-through state: [Rectangle]
// - END: (((Double circle)))
// Edges are labeled with the rule identity, prefixed by the handler when it is not submit.
func GenerateMermaid(exp *domain.Exploration, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	usesEnd := false
	for _, s := range exp.States {
		safeID := sanitizeMermaidID(s.ID)

		opener, closer := "[", "]"
		switch {
		case s.ID == exp.InitStateID:
			opener, closer = "((", "))"
		case s.Widget != nil:
			opener, closer = "[/", "/]"
		}

		label := s.ID
		if s.Name != "" {
			label = s.Name
		}
		if s.Widget != nil && s.Widget.WidgetID != "" {
			label = fmt.Sprintf("%s <br/> %s", label, s.Widget.WidgetID)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer)

		if s.Widget == nil {
			continue
		}
		for _, h := range s.Widget.Handlers {
			for _, rule := range h.Rules {
				to := sanitizeMermaidID(rule.Dest)
				if rule.IsTerminal() {
					to = endNode
					usesEnd = true
				}
				text := rule.ID()
				if h.Name != domain.DefaultHandler {
					text = h.Name + ": " + text
				}

				arrow := fmt.Sprintf("-- \"%s\" -->", escapeLabel(text))
				if rule.Predicate.IsDefault() && h.Name == domain.DefaultHandler {
					arrow = "-->"
				}
				fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, to)
			}
		}
	}

	if usesEnd {
		fmt.Fprintf(&sb, "    %s(((\"%s\")))\n", endNode, domain.EndDest)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high contrast regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.Visited {
			safeID := nodeID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", nodeID(overlay.Current))
		}
	}

	return sb.String()
}

func nodeID(id string) string {
	if id == domain.EndDest {
		return endNode
	}
	return sanitizeMermaidID(id)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
