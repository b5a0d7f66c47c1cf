package main

import (
	"action-relay/domain"
	"math/rand/v2"

	"github.com/samber/lo"
)

var (
	pizzas     = []string{"Vegetariana", "Margherita", "Funghi"}
	pizzaSizes = []string{"small", "medium", "large"}
	videoGames = []string{"WOW", "AOE II: AOK", "Candy Crap"}
	teaRegions = []string{"Turkish Black Sea", "India", "Africa"}
)

// randomRequest picks one of the three client actions with random values.
func randomRequest() domain.ActionRequest {
	switch rand.IntN(3) {
	case 0:
		return domain.ActionRequest{Payload: domain.OrderPizza{
			PizzaName: lo.Sample(pizzas),
			Count:     between(1, 10),
			Size:      lo.Sample(pizzaSizes),
		}}
	case 1:
		return domain.ActionRequest{Payload: domain.PlayVideoGame{
			VideoGameName: lo.Sample(videoGames),
			Players:       between(1, 10),
		}}
	default:
		return domain.ActionRequest{Payload: domain.DrinkTea{
			Region:      lo.Sample(teaRegions),
			Temperature: between(1, 80),
		}}
	}
}

func between(low, high int32) int32 {
	return low + rand.Int32N(high-low+1)
}
