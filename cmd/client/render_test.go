package main

import (
	"action-relay/domain"
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)
	testCases := []struct {
		name     string
		envelope domain.ActionEnvelope
		expected string
	}{
		{
			name:     "join",
			envelope: domain.ActionEnvelope{At: at, UserName: "User #0", Payload: domain.UserJoin{UserCount: 1}},
			expected: "User #0 @ 03:04:05: Joined... Logged in users: 1",
		},
		{
			name:     "leave",
			envelope: domain.ActionEnvelope{At: at, UserName: "User #1", Payload: domain.UserLeave{}},
			expected: "User #1 @ 03:04:05: Left... Logged in users: 0",
		},
		{
			name: "pizza with size",
			envelope: domain.ActionEnvelope{At: at, UserName: "User #0",
				Payload: domain.OrderPizza{PizzaName: "Funghi", Count: 2, Size: "large"}},
			expected: "User #0 @ 03:04:05: Ordered 2 Funghi pizza(s) (large).",
		},
		{
			name: "video game",
			envelope: domain.ActionEnvelope{At: at, UserName: "User #2",
				Payload: domain.PlayVideoGame{VideoGameName: "WOW", Players: 4}},
			expected: "User #2 @ 03:04:05: Playing WOW with 4 player(s).",
		},
		{
			name: "tea",
			envelope: domain.ActionEnvelope{At: at, UserName: "User #2",
				Payload: domain.DrinkTea{Region: "India", Temperature: 70}},
			expected: "User #2 @ 03:04:05: Drinking tea from India at 70 degree(s) Celsius.",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, describe(tc.envelope))
		})
	}
}

func TestColorize_Keeps_The_Text(t *testing.T) {
	req := require.New(t)
	envelope := domain.ActionEnvelope{UserName: "User #0", Payload: domain.UserJoin{UserCount: 1}}

	req.Contains(colorize(envelope), "Joined... Logged in users: 1")
}

func TestSummary_Render(t *testing.T) {
	req := require.New(t)
	s := newSummary()

	// Given two participants acting, one of them leaving
	s.record(domain.ActionEnvelope{UserName: "User #0", Payload: domain.UserJoin{UserCount: 1}})
	s.record(domain.ActionEnvelope{UserName: "User #1", Payload: domain.UserJoin{UserCount: 2}})
	s.record(domain.ActionEnvelope{UserName: "User #0", Payload: domain.OrderPizza{Count: 3}})
	s.record(domain.ActionEnvelope{UserName: "User #0", Payload: domain.OrderPizza{Count: 2}})
	s.record(domain.ActionEnvelope{UserName: "User #1", Payload: domain.DrinkTea{Region: "Africa"}})
	s.record(domain.ActionEnvelope{UserName: "User #1", Payload: domain.UserLeave{UserCount: 1}})

	var out bytes.Buffer
	s.render(&out)

	// Then each participant has a row in arrival order
	table := out.String()
	req.Contains(table, "PIZZAS")
	req.Regexp(`User #0\s*\|\s*5\s*\|\s*0\s*\|\s*0\s*\|\s*online`, table)
	req.Regexp(`User #1\s*\|\s*0\s*\|\s*0\s*\|\s*1\s*\|\s*left`, table)
	req.Less(bytes.Index(out.Bytes(), []byte("User #0")), bytes.Index(out.Bytes(), []byte("User #1")))
}

func TestRandomRequest_Uses_The_Value_Pools(t *testing.T) {
	req := require.New(t)
	for i := 0; i < 200; i++ {
		switch p := randomRequest().Payload.(type) {
		case domain.OrderPizza:
			req.Contains(pizzas, p.PizzaName)
			req.Contains(pizzaSizes, p.Size)
			req.True(p.Count >= 1 && p.Count <= 10)
		case domain.PlayVideoGame:
			req.Contains(videoGames, p.VideoGameName)
			req.True(p.Players >= 1 && p.Players <= 10)
		case domain.DrinkTea:
			req.Contains(teaRegions, p.Region)
			req.True(p.Temperature >= 1 && p.Temperature <= 80)
		default:
			req.Failf("unexpected payload", "%T", p)
		}
	}
}
