package engine

// Fallback letters when a setup leaves them unset.
const (
	DefaultLetterA = "ક"
	DefaultLetterB = "ખ"
)

// NewState builds the initial game state for a setup. Passing nil uses the
// default letters for both teams.
func NewState(setup *Setup) State {
	letterA, letterB := DefaultLetterA, DefaultLetterB
	if setup != nil {
		if setup.LetterA != "" {
			letterA = setup.LetterA
		}
		if setup.LetterB != "" {
			letterB = setup.LetterB
		}
	}

	return State{
		Teams: map[TeamID]Team{
			TeamA: {ID: TeamA, Name: "Team A", Letter: letterA, Words: []Word{}},
			TeamB: {ID: TeamB, Name: "Team B", Letter: letterB, Words: []Word{}},
		},
	}
}

// clone copies a state deeply enough that appending words or bumping scores
// on the copy cannot alias the original.
func clone(s State) State {
	out := s
	out.Teams = make(map[TeamID]Team, len(s.Teams))
	for id, team := range s.Teams {
		words := make([]Word, len(team.Words))
		copy(words, team.Words)
		team.Words = words
		out.Teams[id] = team
	}
	return out
}

// Clone returns a copy safe to hand across goroutine boundaries.
func (s State) Clone() State {
	return clone(s)
}

// WordTexts lists every word played so far by either team, in team A then
// team B insertion order. This is the history snapshot Validate expects.
func WordTexts(s State) []string {
	return allWordTexts(s)
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
