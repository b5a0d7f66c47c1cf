package main

import (
	"action-relay/domain"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// describe renders an envelope as one readable line.
func describe(e domain.ActionEnvelope) string {
	var text string
	switch p := e.Payload.(type) {
	case domain.UserJoin:
		text = fmt.Sprintf("Joined... Logged in users: %d", p.UserCount)
	case domain.UserLeave:
		text = fmt.Sprintf("Left... Logged in users: %d", p.UserCount)
	case domain.OrderPizza:
		text = fmt.Sprintf("Ordered %d %s pizza(s)", p.Count, p.PizzaName)
		if p.Size != "" {
			text += " (" + p.Size + ")"
		}
		text += "."
	case domain.PlayVideoGame:
		text = fmt.Sprintf("Playing %s with %d player(s).", p.VideoGameName, p.Players)
	case domain.DrinkTea:
		text = fmt.Sprintf("Drinking tea from %s at %d degree(s) Celsius.", p.Region, p.Temperature)
	default:
		text = fmt.Sprintf("Unknown action with type %s.", e.Type())
	}
	return fmt.Sprintf("%s @ %s: %s", e.UserName, e.At.Local().Format(time.TimeOnly), text)
}

// colorize picks green for joins, red for leaves and blue for actions.
func colorize(e domain.ActionEnvelope) string {
	line := describe(e)
	switch e.Type() {
	case domain.ActionUserJoin:
		return color.Green.Sprint(line)
	case domain.ActionUserLeave:
		return color.Red.Sprint(line)
	default:
		return color.Blue.Sprint(line)
	}
}

type tally struct {
	pizzas int32
	games  int
	teas   int
	left   bool
}

// summary counts what every participant did while the client was connected.
type summary struct {
	mu    sync.Mutex
	users map[string]*tally
	order []string
}

func newSummary() *summary {
	return &summary{users: make(map[string]*tally)}
}

func (s *summary) record(e domain.ActionEnvelope) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.users[e.UserName]
	if !ok {
		t = &tally{}
		s.users[e.UserName] = t
		s.order = append(s.order, e.UserName)
	}
	switch p := e.Payload.(type) {
	case domain.UserJoin:
		t.left = false
	case domain.UserLeave:
		t.left = true
	case domain.OrderPizza:
		t.pizzas += p.Count
	case domain.PlayVideoGame:
		t.games++
	case domain.DrinkTea:
		t.teas++
	}
}

func (s *summary) render(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"User", "Pizzas", "Games", "Teas", "Status"})
	for _, name := range s.order {
		t := s.users[name]
		status := "online"
		if t.left {
			status = "left"
		}
		table.Append([]string{
			name,
			strconv.Itoa(int(t.pizzas)),
			strconv.Itoa(t.games),
			strconv.Itoa(t.teas),
			status,
		})
	}
	table.Render()
}
