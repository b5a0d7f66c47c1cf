package e2e

import (
	"action-relay/domain"
	"testing"

	"github.com/stretchr/testify/suite"
)

type testRelaySuite struct {
	BaseRelaySuite
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, &testRelaySuite{})
}

// The relay may serve other clients while the suite runs:
// assertions are relative to the counts observed on join.
func (s *testRelaySuite) TestWebsocketJoinActLeave() {
	alice := s.ConnectWebsocket("alice")
	aliceJoin := alice.AwaitOwnJoin()
	aliceCount := aliceJoin.Payload.(domain.UserJoin).UserCount
	s.Require().GreaterOrEqual(aliceCount, int32(1))

	bob := s.ConnectWebsocket("bob")
	bobJoin := bob.AwaitOwnJoin()
	s.Require().NotEqual(aliceJoin.UserName, bobJoin.UserName)

	s.Run("Step 1: alice is told bob joined", func() {
		seen := alice.AwaitFrom(bobJoin.UserName, domain.ActionUserJoin)
		s.Require().Equal(bobJoin.Payload, seen.Payload)
	})

	s.Run("Step 2: alice's order reaches both, attributed to alice", func() {
		alice.Send(domain.OrderPizza{PizzaName: "Margherita", Count: 2, Size: "large"})
		for _, p := range []*Participant{alice, bob} {
			envelope := p.AwaitFrom(aliceJoin.UserName, domain.ActionOrderPizza)
			s.Require().Equal(domain.OrderPizza{PizzaName: "Margherita", Count: 2, Size: "large"}, envelope.Payload)
			s.Require().False(envelope.At.IsZero())
		}
	})

	s.Run("Step 3: bob leaves and alice is told", func() {
		bob.Close()
		leave := alice.AwaitFrom(bobJoin.UserName, domain.ActionUserLeave)
		s.Require().Less(leave.Payload.(domain.UserLeave).UserCount, bobJoin.Payload.(domain.UserJoin).UserCount)
	})
}

func (s *testRelaySuite) TestCorruptFrameIsDropped() {
	alice := s.ConnectWebsocket("alice")
	join := alice.AwaitOwnJoin()

	alice.SendRaw([]byte{0xff, 0xff, 0xff})
	alice.SendRaw([]byte{0x08, 0x01})
	alice.Send(domain.DrinkTea{Region: "Turkish Black Sea", Temperature: 65})

	// The next action from alice is the tea: the garbage and the USER_JOIN request produced nothing
	envelope := alice.Await(func(e domain.ActionEnvelope) bool {
		return e.UserName == join.UserName && e.Type() != domain.ActionUserJoin
	})
	s.Require().Equal(domain.DrinkTea{Region: "Turkish Black Sea", Temperature: 65}, envelope.Payload)
}

func (s *testRelaySuite) TestGrpcJoinActLeave() {
	alice := s.ConnectGrpc("alice")
	aliceJoin := alice.AwaitOwnJoin()
	bob := s.ConnectGrpc("bob")
	bobJoin := bob.AwaitOwnJoin()

	alice.AwaitFrom(bobJoin.UserName, domain.ActionUserJoin)

	bob.Send(domain.PlayVideoGame{VideoGameName: "AOE II: AOK", Players: 8})
	for _, p := range []*Participant{alice, bob} {
		envelope := p.AwaitFrom(bobJoin.UserName, domain.ActionPlayVideoGame)
		s.Require().Equal(domain.PlayVideoGame{VideoGameName: "AOE II: AOK", Players: 8}, envelope.Payload)
	}

	alice.Close()
	bob.AwaitFrom(aliceJoin.UserName, domain.ActionUserLeave)
}

func (s *testRelaySuite) TestMixedTransportsShareOneRoom() {
	web := s.ConnectWebsocket("web")
	webJoin := web.AwaitOwnJoin()
	stream := s.ConnectGrpc("stream")
	streamJoin := stream.AwaitOwnJoin()

	web.AwaitFrom(streamJoin.UserName, domain.ActionUserJoin)

	web.Send(domain.DrinkTea{Region: "India", Temperature: 80})
	envelope := stream.AwaitFrom(webJoin.UserName, domain.ActionDrinkTea)
	s.Require().Equal(domain.DrinkTea{Region: "India", Temperature: 80}, envelope.Payload)

	stream.Send(domain.OrderPizza{PizzaName: "Funghi", Count: 1})
	envelope = web.AwaitFrom(streamJoin.UserName, domain.ActionOrderPizza)
	s.Require().Equal(domain.OrderPizza{PizzaName: "Funghi", Count: 1}, envelope.Payload)
}
