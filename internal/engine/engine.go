package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrUnknownTeam = errors.New("unknown team")
var ErrUnsupportedCommand = errors.New("unsupported command")

type TeamID string

const (
	TeamA TeamID = "A"
	TeamB TeamID = "B"
)

// Other returns the opposing team. Turn order alternates every submission,
// valid or not.
func Other(t TeamID) TeamID {
	if t == TeamA {
		return TeamB
	}
	return TeamA
}

type Winner string

const (
	WinnerA   Winner = "A"
	WinnerB   Winner = "B"
	WinnerTie Winner = "tie"
)

// Word records one submission exactly as it happened. Validity and duplicate
// flags are computed once at submission and never re-evaluated.
type Word struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Team        TeamID `json:"team"`
	IsValid     bool   `json:"isValid"`
	IsDuplicate bool   `json:"isDuplicate"`
	Timestamp   int64  `json:"timestamp"`
}

type Team struct {
	ID     TeamID `json:"id"`
	Name   string `json:"name"`
	Letter string `json:"letter"`
	Score  int    `json:"score"`
	Words  []Word `json:"words"`
}

type Setup struct {
	LetterA string `json:"letterA"`
	LetterB string `json:"letterB"`
}

type State struct {
	IsPlaying    bool            `json:"isPlaying"`
	CurrentTeam  TeamID          `json:"currentTeam,omitempty"`
	Teams        map[TeamID]Team `json:"teams"`
	Winner       Winner          `json:"winner,omitempty"`
	IsListening  bool            `json:"isListening"`
	SpeakingTeam TeamID          `json:"speakingTeam,omitempty"`
}

type CommandType string

const (
	CmdStartGame   CommandType = "StartGame"
	CmdSubmitWord  CommandType = "SubmitWord"
	CmdSetSpeaking CommandType = "SetSpeaking"
	CmdEndGame     CommandType = "EndGame"
	CmdRestart     CommandType = "Restart"
)

type Command struct {
	Type  CommandType
	Team  TeamID // SubmitWord, SetSpeaking ("" clears the speaker)
	Word  string // SubmitWord
	Setup *Setup // Restart; nil resets letters to defaults
}

type EventType string

const (
	EvtGameStarted   EventType = "GameStarted"
	EvtWordSubmitted EventType = "WordSubmitted"
	EvtTurnAdvanced  EventType = "TurnAdvanced"
	EvtGameEnded     EventType = "GameEnded"
)

type Event struct {
	Type     EventType
	Team     TeamID
	Word     *Word
	NewScore int
	Winner   Winner
}

// Apply runs one command against a state and returns the events it caused
// plus the successor state. The input state is never mutated, so the same
// function serves the server-side store and a local-mode client identically.
func Apply(s State, cmd Command) ([]Event, State, error) {
	switch cmd.Type {
	case CmdStartGame:
		newState := clone(s)
		newState.IsPlaying = true
		newState.CurrentTeam = TeamA // A always opens
		newState.Winner = ""
		return []Event{{Type: EvtGameStarted}}, newState, nil

	case CmdSubmitWord:
		team, ok := s.Teams[cmd.Team]
		if !ok {
			return nil, s, fmt.Errorf("%w: %q", ErrUnknownTeam, cmd.Team)
		}

		result := Validate(cmd.Word, team.Letter, allWordTexts(s))

		word := Word{
			ID:          newWordID(),
			Text:        cmd.Word,
			Team:        cmd.Team,
			IsValid:     result.IsValid,
			IsDuplicate: result.IsDuplicate,
			Timestamp:   time.Now().UnixMilli(),
		}

		newState := clone(s)
		updated := newState.Teams[cmd.Team]
		updated.Words = append(updated.Words, word)
		if word.IsValid {
			updated.Score++
		}
		newState.Teams[cmd.Team] = updated
		newState.CurrentTeam = Other(cmd.Team)
		newState.SpeakingTeam = ""
		newState.IsListening = false

		events := []Event{
			{Type: EvtWordSubmitted, Team: cmd.Team, Word: &word, NewScore: updated.Score},
			{Type: EvtTurnAdvanced, Team: newState.CurrentTeam},
		}
		return events, newState, nil

	case CmdSetSpeaking:
		newState := clone(s)
		newState.SpeakingTeam = cmd.Team
		newState.IsListening = cmd.Team != ""
		return nil, newState, nil

	case CmdEndGame:
		newState := clone(s)
		newState.IsPlaying = false
		newState.Winner = winnerOf(s)
		newState.SpeakingTeam = ""
		newState.IsListening = false
		return []Event{{Type: EvtGameEnded, Winner: newState.Winner}}, newState, nil

	case CmdRestart:
		return nil, NewState(cmd.Setup), nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

// winnerOf compares scores strictly: higher wins, equal is a tie.
func winnerOf(s State) Winner {
	scoreA := s.Teams[TeamA].Score
	scoreB := s.Teams[TeamB].Score
	switch {
	case scoreA > scoreB:
		return WinnerA
	case scoreB > scoreA:
		return WinnerB
	default:
		return WinnerTie
	}
}

// allWordTexts flattens both teams' histories; duplicates are checked across
// the whole game, not per team.
func allWordTexts(s State) []string {
	texts := make([]string, 0, len(s.Teams[TeamA].Words)+len(s.Teams[TeamB].Words))
	for _, w := range s.Teams[TeamA].Words {
		texts = append(texts, w.Text)
	}
	for _, w := range s.Teams[TeamB].Words {
		texts = append(texts, w.Text)
	}
	return texts
}

func newWordID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
