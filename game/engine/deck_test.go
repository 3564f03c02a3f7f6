package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classicDeck() []Card {
	return DefaultBoardConfig().Deck()
}

func TestNewDeck_Order(t *testing.T) {
	deck := NewDeck([]string{"Mr Green"}, []string{"Rope", "Dagger"}, []string{"Hall"})

	want := []Card{
		{Kind: CharacterCard, Name: "Mr Green"},
		{Kind: WeaponCard, Name: "Rope"},
		{Kind: WeaponCard, Name: "Dagger"},
		{Kind: RoomCard, Name: "Hall"},
	}
	assert.Equal(t, want, deck)
}

func TestDrawSolution_OneOfEachKind(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed))
		sol, rest, err := DrawSolution(classicDeck(), rng)
		require.NoError(t, err)

		assert.Equal(t, RoomCard, sol.Room.Kind)
		assert.Equal(t, CharacterCard, sol.Character.Kind)
		assert.Equal(t, WeaponCard, sol.Weapon.Kind)
		assert.Len(t, rest, 21-3)
		for _, c := range sol.Cards() {
			assert.NotContains(t, rest, c)
		}
	}
}

func TestDrawSolution_SeedIsDeterministic(t *testing.T) {
	a, _, err := DrawSolution(classicDeck(), rand.New(rand.NewPCG(7, 7)))
	require.NoError(t, err)
	b, _, err := DrawSolution(classicDeck(), rand.New(rand.NewPCG(7, 7)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDrawSolution_MissingKind(t *testing.T) {
	deck := NewDeck([]string{"Mr Green"}, nil, []string{"Hall"})
	_, _, err := DrawSolution(deck, rand.New(rand.NewPCG(1, 1)))
	assert.Error(t, err)
}

func TestDeal_RoundRobin(t *testing.T) {
	players := []*Player{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}
	deck := classicDeck()[:18]

	require.NoError(t, Deal(players, deck))

	total := 0
	for i, p := range players {
		total += len(p.Inventory)
		if i < 2 {
			assert.Len(t, p.Inventory, 5, p.Name)
		} else {
			assert.Len(t, p.Inventory, 4, p.Name)
		}
	}
	assert.Equal(t, len(deck), total)
	assert.Equal(t, deck[0], players[0].Inventory[0])
	assert.Equal(t, deck[1], players[1].Inventory[0])
	assert.Equal(t, deck[4], players[0].Inventory[1])
}

func TestDeal_NoPlayers(t *testing.T) {
	assert.ErrorIs(t, Deal(nil, classicDeck()), ErrNoPlayers)
}

func TestFindCard(t *testing.T) {
	card, err := FindCard(classicDeck(), "lead pipe")
	require.NoError(t, err)
	assert.Equal(t, Card{Kind: WeaponCard, Name: "Lead Pipe"}, card)

	_, err = FindCard(classicDeck(), "Axe")
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestSolution_Matches(t *testing.T) {
	sol := &Solution{
		Room:      Card{Kind: RoomCard, Name: "Hall"},
		Character: Card{Kind: CharacterCard, Name: "Mrs White"},
		Weapon:    Card{Kind: WeaponCard, Name: "Rope"},
	}
	assert.True(t, sol.Matches("hall", "mrs white", "ROPE"))
	assert.False(t, sol.Matches("Hall", "Mrs White", "Dagger"))
}

func TestStandardDice_Range(t *testing.T) {
	dice := NewStandardDice(rand.New(rand.NewPCG(3, 4)))
	seen := make(map[int]bool)
	for i := 0; i < 2000; i++ {
		roll := dice.Roll()
		require.GreaterOrEqual(t, roll, 2)
		require.LessOrEqual(t, roll, 12)
		seen[roll] = true
	}
	assert.Len(t, seen, 11)
	assert.Equal(t, 4, FixedDice(4).Roll())
}
