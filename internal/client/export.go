package client

import (
	"fmt"
	"strings"

	"github.com/devpatel/shabd-ramat/internal/engine"
)

// RenderResults formats a finished (or in-progress) game as plain text:
// per-team score and word history with validity marks, then the verdict.
func RenderResults(s engine.State) string {
	var b strings.Builder
	b.WriteString("ગુજરાતી શબ્દ રમત - પરિણામ\n")

	for _, id := range []engine.TeamID{engine.TeamA, engine.TeamB} {
		t := s.Teams[id]
		fmt.Fprintf(&b, "\n%s (%s) - સ્કોર: %d\n", t.Name, t.Letter, t.Score)
		for _, w := range t.Words {
			status := "માન્ય ✓"
			if !w.IsValid {
				if w.IsDuplicate {
					status = "પુનરાવર્તિત ✗"
				} else {
					status = "અમાન્ય ✗"
				}
			}
			fmt.Fprintf(&b, "  %-20s %s\n", w.Text, status)
		}
	}

	switch s.Winner {
	case engine.WinnerTie:
		b.WriteString("\nરમત ટાઈ! 🤝\n")
	case "":
	default:
		fmt.Fprintf(&b, "\nTeam %s જીત્યું! 🎉\n", s.Winner)
	}

	return b.String()
}
